package events

import "time"

const (
	TypeBookingCreated        = "BOOKING_CREATED"
	TypeBookingWithdrawn      = "BOOKING_WITHDRAWN"
	TypeInvoiceGenerated      = "INVOICE_GENERATED"
	TypeInvoiceOverdue        = "INVOICE_OVERDUE"
	TypePaymentSubmitted      = "PAYMENT_SUBMITTED"
	TypePaymentConfirmed      = "PAYMENT_CONFIRMED"
	TypePaymentRejected       = "PAYMENT_REJECTED"
	TypeSubscriptionActivated = "SUBSCRIPTION_ACTIVATED"
	TypeSubscriptionCancelled = "SUBSCRIPTION_CANCELLED"
	TypeSessionsGenerated     = "SESSIONS_GENERATED"
)

// Event defines the contract for all portal events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "PAYMENT_CONFIRMED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}
