package leaverequest

import (
	"time"

	"go-leave/internal/directory"
	"go-leave/internal/leavetype"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	StatusPending   = "PENDING"
	StatusApproved  = "APPROVED"
	StatusRejected  = "REJECTED"
	StatusCancelled = "CANCELLED"
)

const AggregateType = "leave_request"

type LeaveRequest struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`

	EmployeeID uuid.UUID           `gorm:"type:uuid;not null;index:idx_leave_requests_employee"`
	Employee   *directory.Employee `gorm:"foreignKey:EmployeeID"`

	LeaveTypeID uuid.UUID            `gorm:"type:uuid;not null"`
	LeaveType   *leavetype.LeaveType `gorm:"foreignKey:LeaveTypeID"`

	StartDate time.Time `gorm:"type:date;not null"`
	EndDate   time.Time `gorm:"type:date;not null"`
	IsHalfDay bool      `gorm:"not null;default:false"`

	// Working days only. Half-day requests carry 0.5.
	TotalDays decimal.Decimal `gorm:"type:decimal(5,2);not null"`

	Reason  string  `gorm:"type:text;not null"`
	Status  string  `gorm:"type:varchar(20);not null;default:'PENDING';index:idx_leave_requests_status"`
	Remarks *string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
