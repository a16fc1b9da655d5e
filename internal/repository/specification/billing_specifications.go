package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BySubscriptionID struct {
	SubscriptionID uuid.UUID
}

func (s BySubscriptionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("subscription_id = ?", s.SubscriptionID)
}

type ByInvoiceID struct {
	InvoiceID uuid.UUID
}

func (s ByInvoiceID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("invoice_id = ?", s.InvoiceID)
}

type ByPromoCode struct {
	Code string
}

func (s ByPromoCode) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("promo_code = ?", s.Code)
}

type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

// ForPeriod matches invoices of a billing month.
type ForPeriod struct {
	Month int
	Year  int
}

func (s ForPeriod) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("billing_month = ? AND billing_year = ?", s.Month, s.Year)
}
