package dto

import (
	"github.com/google/uuid"
)

type GenerateBillingRequest struct {
	Month int `json:"month" validate:"required,min=1,max=12"`
	Year  int `json:"year" validate:"required,min=2000"`
}

type ExpandSessionsResponse struct {
	SubscriptionId  uuid.UUID `json:"subscription_id"`
	SessionsCreated int       `json:"sessions_created"`
}

type CancelSubscriptionResponse struct {
	SubscriptionId    uuid.UUID `json:"subscription_id"`
	Status            string    `json:"status"`
	SessionsCancelled int       `json:"sessions_cancelled"`
	BookingsCancelled int       `json:"bookings_cancelled"`
	InvoicesCancelled int       `json:"invoices_cancelled"`
}

// ItineraryRequestMessage is queued when a subscription gets its first
// sessions through the bulk generation path.
type ItineraryRequestMessage struct {
	SubscriptionId uuid.UUID `json:"subscription_id"`
}
