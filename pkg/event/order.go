package event

import "time"

const (
	OrderStateTopic     = "orders.state"
	EventOrderSubmitted = "order.submitted"
	EventOrderStarted   = "order.started"
	EventOrderFinished  = "order.finished"
	EventOrderCancelled = "order.cancelled"
	EventOrderPaid      = "order.paid"
	EventOrderStashed   = "order.stashed"
	EventOrderUnstashed = "order.unstashed"
)

// OrderStateEvent is published by the order backend whenever the state of an
// order changes. The console consumes it to refresh the kitchen board and to
// notify connected terminals.
type OrderStateEvent struct {
	EventType     string    `json:"event_type"`
	OccurredAt    time.Time `json:"occurred_at"`
	OrderID       string    `json:"order_id"`
	DisplayID     string    `json:"display_id"`
	State         string    `json:"state"`
	PreviousState string    `json:"previous_state,omitempty"`
	ItemCount     int       `json:"item_count,omitempty"`
	Comment       string    `json:"comment,omitempty"`
	SubmittedAt   time.Time `json:"submitted_at,omitempty"`
	StartedAt     time.Time `json:"started_at,omitempty"`
}
