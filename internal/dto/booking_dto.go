package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateBookingRequest reserves a service for a child. A weekly schedule
// with at least one assigned slot turns the booking into a subscription.
type CreateBookingRequest struct {
	ServiceId      uuid.UUID             `json:"service_id" validate:"required"`
	ChildName      string                `json:"child_name" validate:"required,max=100"`
	ChildAge       int                   `json:"child_age" validate:"min=0,max=216"`
	TotalSessions  int                   `json:"total_sessions" validate:"required,min=4"`
	PromoCode      string                `json:"promo_code,omitempty" validate:"omitempty,max=50"`
	WeeklySchedule map[string]*uuid.UUID `json:"weekly_schedule,omitempty"`
	StartMonth     int                   `json:"start_month,omitempty" validate:"omitempty,min=1,max=12"`
	StartYear      int                   `json:"start_year,omitempty" validate:"omitempty,min=2000"`
	Notes          string                `json:"notes,omitempty" validate:"max=500"`
}

type BookingResponse struct {
	Id             uuid.UUID       `json:"id"`
	ServiceId      uuid.UUID       `json:"service_id"`
	SubscriptionId *uuid.UUID      `json:"subscription_id,omitempty"`
	PromotionId    *uuid.UUID      `json:"promotion_id,omitempty"`
	ChildName      string          `json:"child_name"`
	ChildAge       int             `json:"child_age"`
	TotalSessions  int             `json:"total_sessions"`
	OriginalPrice  decimal.Decimal `json:"original_price"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	FinalPrice     decimal.Decimal `json:"final_price"`
	Status         string          `json:"status"`
	PaymentStatus  string          `json:"payment_status"`
	InvoiceId      *uuid.UUID      `json:"invoice_id,omitempty"`
	InvoiceNumber  string          `json:"invoice_number,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}
