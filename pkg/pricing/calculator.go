// Package pricing turns a monthly session count into a price.
//
// Eight sessions a month is the base tier and costs the service's base
// price. Every started block of four sessions above that adds 20% of the
// base price. Below the base tier the price is proportional.
package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	BaseTierSessions = 8
	BlockSize        = 4
)

var (
	ErrInvalidSessionCount = errors.New("total sessions must be a multiple of 4 and at least 4")
	ErrInvalidBasePrice    = errors.New("base price must not be negative")
)

var blockSurcharge = decimal.RequireFromString("0.20")

type Result struct {
	BaseSessions       int             `json:"base_sessions"`
	AdditionalSessions int             `json:"additional_sessions"`
	BasePrice          decimal.Decimal `json:"base_price"`
	AdditionalPrice    decimal.Decimal `json:"additional_price"`
	TotalPrice         decimal.Decimal `json:"total_price"`
	TotalSessions      int             `json:"total_sessions"`
}

func ValidateSessionCount(totalSessions int) error {
	if totalSessions < BlockSize || totalSessions%BlockSize != 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidSessionCount, totalSessions)
	}
	return nil
}

// CalculateSessionPrice prices totalSessions per month against basePrice.
// Amounts are rounded to cents.
func CalculateSessionPrice(basePrice decimal.Decimal, totalSessions int) (*Result, error) {
	if err := ValidateSessionCount(totalSessions); err != nil {
		return nil, err
	}
	if basePrice.IsNegative() {
		return nil, ErrInvalidBasePrice
	}

	if totalSessions < BaseTierSessions {
		price := basePrice.
			Mul(decimal.NewFromInt(int64(totalSessions))).
			Div(decimal.NewFromInt(BaseTierSessions)).
			Round(2)
		return &Result{
			BaseSessions:       totalSessions,
			AdditionalSessions: 0,
			BasePrice:          price,
			AdditionalPrice:    decimal.Zero,
			TotalPrice:         price,
			TotalSessions:      totalSessions,
		}, nil
	}

	additional := totalSessions - BaseTierSessions
	blocks := (additional + BlockSize - 1) / BlockSize
	additionalPrice := basePrice.Mul(blockSurcharge).Mul(decimal.NewFromInt(int64(blocks))).Round(2)
	base := basePrice.Round(2)

	return &Result{
		BaseSessions:       BaseTierSessions,
		AdditionalSessions: additional,
		BasePrice:          base,
		AdditionalPrice:    additionalPrice,
		TotalPrice:         base.Add(additionalPrice),
		TotalSessions:      totalSessions,
	}, nil
}
