package balance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LeaveBalance is the authoritative per (employee, leave type, year) tally.
// The triple is unique; all mutation goes through the Ledger.
type LeaveBalance struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_balance_employee_type_year"`
	LeaveTypeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_balance_employee_type_year"`
	Year        int       `gorm:"not null;uniqueIndex:uq_balance_employee_type_year"`

	TotalDays     decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	UsedDays      decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	RemainingDays decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// BalanceWithType carries the leave type name for read endpoints without
// importing the leavetype package.
type BalanceWithType struct {
	LeaveBalance
	LeaveTypeName string
}
