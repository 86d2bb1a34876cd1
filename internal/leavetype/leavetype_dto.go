package leavetype

type CreateLeaveTypeRequest struct {
	Name                    string   `json:"name" binding:"required"`
	Description             *string  `json:"description"`
	TotalDays               float64  `json:"total_days" binding:"gte=0"`
	ApprovalLevels          int      `json:"approval_levels" binding:"gte=0"`
	AutoApprove             bool     `json:"auto_approve"`
	AllocationFrequency     string   `json:"allocation_frequency" binding:"omitempty,oneof=YEARLY MONTHLY QUARTERLY"`
	IsAutoAllocatable       bool     `json:"is_auto_allocatable"`
	DefaultAnnualAllocation float64  `json:"default_annual_allocation" binding:"gte=0"`
	IsCarryForwardAllowed   bool     `json:"is_carry_forward_allowed"`
	CarryForwardLimit       *float64 `json:"carry_forward_limit"`
	ApplicableGender        string   `json:"applicable_gender" binding:"omitempty,oneof=male female all"`
}

type UpdateLeaveTypeRequest struct {
	Name                    *string  `json:"name"`
	Description             *string  `json:"description"`
	TotalDays               *float64 `json:"total_days"`
	ApprovalLevels          *int     `json:"approval_levels"`
	AutoApprove             *bool    `json:"auto_approve"`
	AllocationFrequency     *string  `json:"allocation_frequency" binding:"omitempty,oneof=YEARLY MONTHLY QUARTERLY"`
	IsAutoAllocatable       *bool    `json:"is_auto_allocatable"`
	DefaultAnnualAllocation *float64 `json:"default_annual_allocation"`
	IsCarryForwardAllowed   *bool    `json:"is_carry_forward_allowed"`
	CarryForwardLimit       *float64 `json:"carry_forward_limit"`
	ApplicableGender        *string  `json:"applicable_gender" binding:"omitempty,oneof=male female all"`
}

type LeaveTypeResponse struct {
	ID                      string   `json:"id"`
	Name                    string   `json:"name"`
	Description             *string  `json:"description,omitempty"`
	TotalDays               float64  `json:"total_days"`
	ApprovalLevels          int      `json:"approval_levels"`
	AutoApprove             bool     `json:"auto_approve"`
	AllocationFrequency     string   `json:"allocation_frequency"`
	IsAutoAllocatable       bool     `json:"is_auto_allocatable"`
	DefaultAnnualAllocation float64  `json:"default_annual_allocation"`
	IsCarryForwardAllowed   bool     `json:"is_carry_forward_allowed"`
	CarryForwardLimit       *float64 `json:"carry_forward_limit,omitempty"`
	ApplicableGender        *string  `json:"applicable_gender,omitempty"`
}
