package dto

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type QuoteRequest struct {
	ServiceId     uuid.UUID `json:"service_id" validate:"required"`
	TotalSessions int       `json:"total_sessions" validate:"required,min=4"`
}

type QuoteResponse struct {
	ServiceId          uuid.UUID       `json:"service_id"`
	ServiceName        string          `json:"service_name"`
	BaseSessions       int             `json:"base_sessions"`
	AdditionalSessions int             `json:"additional_sessions"`
	BasePrice          decimal.Decimal `json:"base_price"`
	AdditionalPrice    decimal.Decimal `json:"additional_price"`
	TotalPrice         decimal.Decimal `json:"total_price"`
	TotalSessions      int             `json:"total_sessions"`
}
