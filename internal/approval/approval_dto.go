package approval

const (
	ActionApprove = "APPROVE"
	ActionReject  = "REJECT"
)

type ResolveApprovalRequest struct {
	Action  string  `json:"action" binding:"required,oneof=APPROVE REJECT"`
	Remarks *string `json:"remarks"`
}

type ApprovalResponse struct {
	ID             string  `json:"id"`
	LeaveRequestID string  `json:"leave_request_id"`
	Level          int     `json:"level"`
	RoleName       *string `json:"role_name,omitempty"`
	ApproverID     *string `json:"approver_id,omitempty"`
	ApproverName   *string `json:"approver_name,omitempty"`
	Status         string  `json:"status"`
	Remarks        *string `json:"remarks,omitempty"`
	ApprovedAt     *string `json:"approved_at,omitempty"`

	Request *ApprovalRequestSummary `json:"request,omitempty"`
}

// ApprovalRequestSummary carries enough of the parent request for an
// approver to act without a second lookup.
type ApprovalRequestSummary struct {
	EmployeeID    string  `json:"employee_id"`
	EmployeeName  string  `json:"employee_name,omitempty"`
	LeaveTypeName string  `json:"leave_type_name,omitempty"`
	StartDate     string  `json:"start_date"`
	EndDate       string  `json:"end_date"`
	IsHalfDay     bool    `json:"is_half_day"`
	TotalDays     float64 `json:"total_days"`
	Reason        string  `json:"reason"`
	Status        string  `json:"status"`
}
