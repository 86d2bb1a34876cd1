package allocation

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FrequencyCarryForward marks year-boundary carry-over credits in the log,
// next to the periodic frequencies defined on leave types.
const FrequencyCarryForward = "CARRY_FORWARD"

// AllocationLog records one credit per employee, type, frequency and run
// date. The unique index is what makes re-running a day a no-op.
type AllocationLog struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`

	EmployeeID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_allocation_logs_run"`
	LeaveTypeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_allocation_logs_run"`
	Frequency   string    `gorm:"type:varchar(20);not null;uniqueIndex:uq_allocation_logs_run"`

	AllocationDate time.Time       `gorm:"type:date;not null;uniqueIndex:uq_allocation_logs_run"`
	Days           decimal.Decimal `gorm:"type:decimal(5,2);not null"`

	CreatedAt time.Time
}
