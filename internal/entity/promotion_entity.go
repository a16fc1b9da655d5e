package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type DiscountType string

const (
	DiscountTypePercentage  DiscountType = "percentage"
	DiscountTypeFixedAmount DiscountType = "fixed_amount"
	DiscountTypeFreeService DiscountType = "free_service"
)

func (d DiscountType) IsValid() bool {
	switch d {
	case DiscountTypePercentage, DiscountTypeFixedAmount, DiscountTypeFreeService:
		return true
	}
	return false
}

type Promotion struct {
	Id                   uuid.UUID
	Name                 string
	Description          string
	DiscountType         DiscountType
	DiscountValue        decimal.Decimal
	MinAge               *int // months, inclusive
	MaxAge               *int // months, inclusive
	ApplicableServiceIds []uuid.UUID
	PromoCode            *string
	StartDate            time.Time
	EndDate              time.Time
	MaxUses              *int
	UsedCount            int
	IsActive             bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// AppliesTo reports whether the promotion covers the service. An empty
// list covers every service.
func (p *Promotion) AppliesTo(serviceId uuid.UUID) bool {
	if len(p.ApplicableServiceIds) == 0 {
		return true
	}
	return lo.Contains(p.ApplicableServiceIds, serviceId)
}

func (p *Promotion) IsExhausted() bool {
	return p.MaxUses != nil && p.UsedCount >= *p.MaxUses
}
