package events

import "time"

const AllocationCompletedTopic = "leave.allocation.lifecycle.v1"

const (
	EventAllocationCompleted   = "leave.allocation.completed"
	EventCarryForwardCompleted = "leave.carry_forward.completed"
)

type AllocationCompletedEvent struct {
	EventType     string    `json:"event_type"`
	RunDate       string    `json:"run_date"`
	CreditedCount int       `json:"credited_count"`
	SkippedCount  int       `json:"skipped_count"`
	OccurredAt    time.Time `json:"occurred_at"`
}
