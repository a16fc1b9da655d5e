package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

type BookingPaymentStatus string

const (
	BookingPaymentStatusUnpaid BookingPaymentStatus = "unpaid"
	BookingPaymentStatusPaid   BookingPaymentStatus = "paid"
)

type Booking struct {
	Id             uuid.UUID
	UserId         uuid.UUID
	ServiceId      uuid.UUID
	SubscriptionId *uuid.UUID
	PromotionId    *uuid.UUID
	ChildName      string
	ChildAge       int // months
	OriginalPrice  decimal.Decimal
	DiscountAmount decimal.Decimal
	FinalPrice     decimal.Decimal
	TotalSessions  int
	Status         BookingStatus
	PaymentStatus  BookingPaymentStatus
	Notes          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsWithdrawable reports whether the parent may still delete the booking.
func (b *Booking) IsWithdrawable() bool {
	return b.Status == BookingStatusPending && b.PaymentStatus == BookingPaymentStatusUnpaid
}
