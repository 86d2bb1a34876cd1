package events

import "time"

const LeaveRequestLifecycleTopic = "leave.request.lifecycle.v1"

const (
	EventLeaveRequestCreated   = "leave.request.created"
	EventLeaveRequestApproved  = "leave.request.approved"
	EventLeaveRequestRejected  = "leave.request.rejected"
	EventLeaveRequestCancelled = "leave.request.cancelled"
)

type LeaveRequestLifecycleEvent struct {
	EventType   string    `json:"event_type"`
	RequestID   string    `json:"request_id"`
	EmployeeID  string    `json:"employee_id"`
	LeaveTypeID string    `json:"leave_type_id"`
	Status      string    `json:"status"`
	TotalDays   string    `json:"total_days"`
	OccurredAt  time.Time `json:"occurred_at"`
}
