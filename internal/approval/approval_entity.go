package approval

import (
	"time"

	"go-leave/internal/directory"
	"go-leave/internal/leaverequest"

	"github.com/google/uuid"
)

const (
	StatusPending   = "PENDING"
	StatusApproved  = "APPROVED"
	StatusRejected  = "REJECTED"
	StatusCancelled = "CANCELLED"
)

// SystemRoleName marks approvals the engine records on its own behalf.
const SystemRoleName = "System Auto Approval"

type LeaveApproval struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`

	LeaveRequestID uuid.UUID                  `gorm:"type:uuid;not null;index:idx_leave_approvals_request"`
	LeaveRequest   *leaverequest.LeaveRequest `gorm:"foreignKey:LeaveRequestID"`

	Level int `gorm:"not null"`

	// RoleID is nil on the synthetic system level.
	RoleID *uuid.UUID      `gorm:"type:uuid"`
	Role   *directory.Role `gorm:"foreignKey:RoleID"`

	// ApproverID stays nil while the seat for the role is vacant; whoever
	// resolves the level claims it.
	ApproverID *uuid.UUID          `gorm:"type:uuid"`
	Approver   *directory.Employee `gorm:"foreignKey:ApproverID"`

	Status     string     `gorm:"type:varchar(20);not null;default:'PENDING';index:idx_leave_approvals_status"`
	Remarks    *string    `gorm:"type:text"`
	ApprovedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
