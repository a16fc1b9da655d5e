package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentRecord: the "one pending record per invoice" rule is a partial
// unique index created by cmd/migrate.
type PaymentRecord struct {
	Id               uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	InvoiceId        uuid.UUID       `gorm:"type:uuid;not null;index"`
	UserId           uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount           decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	PaymentMethod    string          `gorm:"type:varchar(50);not null"`
	PaymentReference string          `gorm:"type:varchar(255)"`
	ProofPath        string          `gorm:"type:text"`
	Status           string          `gorm:"type:payment_record_status;not null;default:'pending'"`
	AdminNotes       string          `gorm:"type:text"`
	ConfirmedBy      *uuid.UUID      `gorm:"type:uuid"`
	ConfirmedAt      *time.Time
	CreatedAt        time.Time `gorm:"autoCreateTime"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime"`

	Invoice *Invoice `gorm:"foreignKey:InvoiceId"`
}

func (PaymentRecord) TableName() string {
	return "payment_records"
}
