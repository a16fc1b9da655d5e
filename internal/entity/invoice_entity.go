package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type InvoiceType string

const (
	InvoiceTypeRegistration InvoiceType = "registration"
	InvoiceTypeMonthly      InvoiceType = "monthly"
	InvoiceTypeAdditional   InvoiceType = "additional"
)

type InvoicePaymentStatus string

const (
	InvoicePaymentStatusUnpaid    InvoicePaymentStatus = "unpaid"
	InvoicePaymentStatusPaid      InvoicePaymentStatus = "paid"
	InvoicePaymentStatusOverdue   InvoicePaymentStatus = "overdue"
	InvoicePaymentStatusCancelled InvoicePaymentStatus = "cancelled"
)

type Invoice struct {
	Id               uuid.UUID
	InvoiceNumber    string
	SubscriptionId   *uuid.UUID
	UserId           uuid.UUID
	InvoiceType      InvoiceType
	BillingMonth     int
	BillingYear      int
	DueDate          time.Time
	Subtotal         decimal.Decimal
	TaxAmount        decimal.Decimal
	TotalAmount      decimal.Decimal
	PaymentStatus    InvoicePaymentStatus
	PaidAmount       decimal.Decimal
	PaidAt           *time.Time
	PaymentMethod    *string
	PaymentReference *string
	AdminNotes       string
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Items []InvoiceItem
}

type InvoiceItem struct {
	Id          uuid.UUID
	InvoiceId   uuid.UUID
	ServiceId   *uuid.UUID
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
	TotalPrice  decimal.Decimal
	CreatedAt   time.Time
}
