package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Invoice periods are unique per subscription regardless of invoice type,
// so a registration invoice for a month also blocks the monthly one.
type Invoice struct {
	Id               uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	InvoiceNumber    string          `gorm:"type:varchar(50);uniqueIndex;not null"`
	SubscriptionId   *uuid.UUID      `gorm:"type:uuid;uniqueIndex:idx_invoices_subscription_period,priority:1"`
	UserId           uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvoiceType      string          `gorm:"type:invoice_type;not null"`
	BillingMonth     int             `gorm:"not null;uniqueIndex:idx_invoices_subscription_period,priority:2"`
	BillingYear      int             `gorm:"not null;uniqueIndex:idx_invoices_subscription_period,priority:3"`
	DueDate          time.Time       `gorm:"type:date;not null"`
	Subtotal         decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	TaxAmount        decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	TotalAmount      decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	PaymentStatus    string          `gorm:"type:invoice_payment_status;not null;default:'unpaid';index"`
	PaidAmount       decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	PaidAt           *time.Time
	PaymentMethod    *string   `gorm:"type:varchar(50)"`
	PaymentReference *string   `gorm:"type:varchar(255)"`
	AdminNotes       string    `gorm:"type:text"`
	CreatedAt        time.Time `gorm:"autoCreateTime"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime"`

	Items []InvoiceItem `gorm:"foreignKey:InvoiceId"`
}

func (Invoice) TableName() string {
	return "invoices"
}

type InvoiceItem struct {
	Id          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	InvoiceId   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ServiceId   *uuid.UUID      `gorm:"type:uuid"`
	Description string          `gorm:"type:text;not null"`
	Quantity    int             `gorm:"not null;default:1"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	TotalPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CreatedAt   time.Time       `gorm:"autoCreateTime"`
}

func (InvoiceItem) TableName() string {
	return "invoice_items"
}
