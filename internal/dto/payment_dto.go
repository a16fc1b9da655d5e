package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SubmitPaymentRequest struct {
	InvoiceId        uuid.UUID       `json:"invoice_id" validate:"required"`
	Amount           decimal.Decimal `json:"amount"`
	PaymentMethod    string          `json:"payment_method" validate:"required,max=50"`
	PaymentReference string          `json:"payment_reference" validate:"max=100"`
	ProofPath        string          `json:"proof_path" validate:"required,max=500"`
}

type PaymentResponse struct {
	Id               uuid.UUID       `json:"id"`
	InvoiceId        uuid.UUID       `json:"invoice_id"`
	Amount           decimal.Decimal `json:"amount"`
	PaymentMethod    string          `json:"payment_method"`
	PaymentReference string          `json:"payment_reference,omitempty"`
	ProofPath        string          `json:"proof_path"`
	Status           string          `json:"status"`
	CreatedAt        time.Time       `json:"created_at"`
}

type ReviewPaymentRequest struct {
	AdminNotes string `json:"admin_notes" validate:"max=1000"`
}
