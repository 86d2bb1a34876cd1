package leavetype

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	FrequencyYearly    = "YEARLY"
	FrequencyMonthly   = "MONTHLY"
	FrequencyQuarterly = "QUARTERLY"
)

type LeaveType struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string    `gorm:"type:varchar(100);not null;uniqueIndex:uq_leave_types_name"`
	Description *string   `gorm:"type:text"`

	TotalDays      decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	ApprovalLevels int             `gorm:"not null;default:1"`
	AutoApprove    bool            `gorm:"not null;default:false"`

	AllocationFrequency     string          `gorm:"type:varchar(20);not null;default:'YEARLY'"`
	IsAutoAllocatable       bool            `gorm:"not null;default:false"`
	DefaultAnnualAllocation decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`

	IsCarryForwardAllowed bool             `gorm:"not null;default:false"`
	CarryForwardLimit     *decimal.Decimal `gorm:"type:decimal(5,2)"`

	// nil means the type applies to everyone.
	ApplicableGender *string `gorm:"type:varchar(10)"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
