package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CheckPromotionRequest previews a promo code against a prospective booking.
type CheckPromotionRequest struct {
	PromoCode     string    `json:"promo_code" validate:"required,max=50"`
	ServiceId     uuid.UUID `json:"service_id" validate:"required"`
	ChildAge      int       `json:"child_age" validate:"min=0,max=216"`
	TotalSessions int       `json:"total_sessions" validate:"required,min=4"`
}

type CheckPromotionResponse struct {
	Valid          bool            `json:"valid"`
	Reason         string          `json:"reason,omitempty"`
	PromotionId    *uuid.UUID      `json:"promotion_id,omitempty"`
	PromotionName  string          `json:"promotion_name,omitempty"`
	OriginalPrice  decimal.Decimal `json:"original_price"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	FinalPrice     decimal.Decimal `json:"final_price"`
	IsFreeService  bool            `json:"is_free_service"`
}

type CreatePromotionRequest struct {
	Name                 string          `json:"name" validate:"required,max=100"`
	Description          string          `json:"description"`
	DiscountType         string          `json:"discount_type" validate:"required,oneof=percentage fixed_amount free_service"`
	DiscountValue        decimal.Decimal `json:"discount_value"`
	MinAge               *int            `json:"min_age,omitempty" validate:"omitempty,min=0"`
	MaxAge               *int            `json:"max_age,omitempty" validate:"omitempty,min=0"`
	ApplicableServiceIds []uuid.UUID     `json:"applicable_service_ids"`
	PromoCode            *string         `json:"promo_code,omitempty" validate:"omitempty,max=50"`
	StartDate            time.Time       `json:"start_date" validate:"required"`
	EndDate              time.Time       `json:"end_date" validate:"required"`
	MaxUses              *int            `json:"max_uses,omitempty" validate:"omitempty,min=0"`
	IsActive             *bool           `json:"is_active,omitempty"`
}

type PromotionResponse struct {
	Id                   uuid.UUID       `json:"id"`
	Name                 string          `json:"name"`
	Description          string          `json:"description,omitempty"`
	DiscountType         string          `json:"discount_type"`
	DiscountValue        decimal.Decimal `json:"discount_value"`
	MinAge               *int            `json:"min_age,omitempty"`
	MaxAge               *int            `json:"max_age,omitempty"`
	ApplicableServiceIds []uuid.UUID     `json:"applicable_service_ids"`
	PromoCode            *string         `json:"promo_code,omitempty"`
	StartDate            time.Time       `json:"start_date"`
	EndDate              time.Time       `json:"end_date"`
	MaxUses              *int            `json:"max_uses,omitempty"`
	UsedCount            int             `json:"used_count"`
	IsActive             bool            `json:"is_active"`
	CreatedAt            time.Time       `json:"created_at"`
}
