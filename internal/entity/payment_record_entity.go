package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentRecordStatus string

const (
	PaymentRecordStatusPending   PaymentRecordStatus = "pending"
	PaymentRecordStatusConfirmed PaymentRecordStatus = "confirmed"
	PaymentRecordStatusRejected  PaymentRecordStatus = "rejected"
)

// PaymentRecord is a user-submitted proof of payment awaiting admin review.
type PaymentRecord struct {
	Id               uuid.UUID
	InvoiceId        uuid.UUID
	UserId           uuid.UUID
	Amount           decimal.Decimal
	PaymentMethod    string
	PaymentReference string
	ProofPath        string
	Status           PaymentRecordStatus
	AdminNotes       string
	ConfirmedBy      *uuid.UUID
	ConfirmedAt      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
