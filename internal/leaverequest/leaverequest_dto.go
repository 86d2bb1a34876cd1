package leaverequest

type CreateLeaveRequestRequest struct {
	LeaveTypeID string `json:"leave_type_id" binding:"required,uuid"`
	StartDate   string `json:"start_date" binding:"required"`
	EndDate     string `json:"end_date" binding:"required"`
	LastDayHalf bool   `json:"last_day_half"`
	Reason      string `json:"reason" binding:"required"`
}

type LeaveRequestResponse struct {
	ID            string  `json:"id"`
	EmployeeID    string  `json:"employee_id"`
	EmployeeName  string  `json:"employee_name,omitempty"`
	LeaveTypeID   string  `json:"leave_type_id"`
	LeaveTypeName string  `json:"leave_type_name,omitempty"`
	StartDate     string  `json:"start_date"`
	EndDate       string  `json:"end_date"`
	IsHalfDay     bool    `json:"is_half_day"`
	TotalDays     float64 `json:"total_days"`
	Reason        string  `json:"reason"`
	Status        string  `json:"status"`
	Remarks       *string `json:"remarks,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

type BalanceSummary struct {
	LeaveTypeID   string  `json:"leave_type_id"`
	LeaveTypeName string  `json:"leave_type_name"`
	Year          int     `json:"year"`
	TotalDays     float64 `json:"total_days"`
	UsedDays      float64 `json:"used_days"`
	RemainingDays float64 `json:"remaining_days"`
}

type DashboardResponse struct {
	History  []LeaveRequestResponse `json:"history"`
	Balances []BalanceSummary       `json:"balances"`
}
