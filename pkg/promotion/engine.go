// Package promotion decides whether a promotion applies to a booking and
// what it takes off the price. Redemption (the used_count increment) lives
// in the store, see contract.PromotionRepository.Redeem.
package promotion

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SpacksD/dulmar1-sub001/internal/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInactive             = errors.New("promotion is not active")
	ErrNotStarted           = errors.New("promotion has not started yet")
	ErrExpired              = errors.New("promotion has expired")
	ErrPromotionExhausted   = errors.New("promotion has reached its maximum uses")
	ErrServiceNotApplicable = errors.New("promotion does not apply to this service")
	ErrChildTooYoung        = errors.New("child is below the promotion's minimum age")
	ErrChildTooOld          = errors.New("child is above the promotion's maximum age")

	ErrInvalidPromotion = errors.New("invalid promotion")
	ErrInvalidDateRange = errors.New("promotion end date is before its start date")
)

// IneligibleError reports the first failed eligibility check. Reason is one
// of the sentinel errors above.
type IneligibleError struct {
	Reason error
	Detail string
}

func (e *IneligibleError) Error() string {
	if e.Detail == "" {
		return e.Reason.Error()
	}
	return fmt.Sprintf("%s: %s", e.Reason.Error(), e.Detail)
}

func (e *IneligibleError) Unwrap() error {
	return e.Reason
}

func ineligible(reason error, format string, args ...interface{}) error {
	return &IneligibleError{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

// CheckEligibility runs the checks in a fixed order and returns the first
// failure: active flag, date window, remaining uses, service, age.
func CheckEligibility(p *entity.Promotion, serviceId uuid.UUID, childAgeMonths int, now time.Time) error {
	if p == nil {
		return fmt.Errorf("%w: nil promotion", ErrInvalidPromotion)
	}
	if !p.IsActive {
		return &IneligibleError{Reason: ErrInactive}
	}

	start, end := window(p.StartDate, p.EndDate)
	if now.Before(start) {
		return ineligible(ErrNotStarted, "starts %s", start.Format(time.DateOnly))
	}
	if now.After(end) {
		return ineligible(ErrExpired, "ended %s", end.Format(time.DateOnly))
	}

	if p.IsExhausted() {
		return ineligible(ErrPromotionExhausted, "%d of %d uses taken", p.UsedCount, *p.MaxUses)
	}

	if !p.AppliesTo(serviceId) {
		return &IneligibleError{Reason: ErrServiceNotApplicable}
	}

	if p.MinAge != nil && childAgeMonths < *p.MinAge {
		return ineligible(ErrChildTooYoung, "minimum %d months", *p.MinAge)
	}
	if p.MaxAge != nil && childAgeMonths > *p.MaxAge {
		return ineligible(ErrChildTooOld, "maximum %d months", *p.MaxAge)
	}

	return nil
}

// window expands the promotion dates to whole days: the start day from
// midnight and the end day through its last millisecond.
func window(startDate, endDate time.Time) (time.Time, time.Time) {
	start := time.Date(startDate.Year(), startDate.Month(), startDate.Day(), 0, 0, 0, 0, startDate.Location())
	end := time.Date(endDate.Year(), endDate.Month(), endDate.Day(), 23, 59, 59, int(999*time.Millisecond), endDate.Location())
	return start, end
}

type DiscountResult struct {
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	FinalPrice     decimal.Decimal `json:"final_price"`
	IsFreeService  bool            `json:"is_free_service"`
}

var hundred = decimal.NewFromInt(100)

// CalculateDiscount applies the promotion to originalPrice. The final price
// stays within [0, originalPrice] and DiscountAmount is always
// originalPrice - FinalPrice.
func CalculateDiscount(p *entity.Promotion, originalPrice decimal.Decimal) DiscountResult {
	if originalPrice.IsNegative() {
		originalPrice = decimal.Zero
	}

	var discount decimal.Decimal
	isFree := false
	switch p.DiscountType {
	case entity.DiscountTypePercentage:
		discount = originalPrice.Mul(p.DiscountValue).Div(hundred).Round(2)
	case entity.DiscountTypeFixedAmount:
		discount = p.DiscountValue.Round(2)
	case entity.DiscountTypeFreeService:
		discount = originalPrice
		isFree = true
	default:
		discount = decimal.Zero
	}

	final := originalPrice.Sub(discount)
	if final.IsNegative() {
		final = decimal.Zero
	}
	if final.GreaterThan(originalPrice) {
		final = originalPrice
	}

	return DiscountResult{
		DiscountAmount: originalPrice.Sub(final),
		FinalPrice:     final,
		IsFreeService:  isFree,
	}
}

func ValidateDates(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", ErrInvalidPromotion)
	}
	if end.Before(start) {
		return ErrInvalidDateRange
	}
	return nil
}

// ValidatePromotion checks a promotion before it is stored.
func ValidatePromotion(p *entity.Promotion) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidPromotion)
	}
	if !p.DiscountType.IsValid() {
		return fmt.Errorf("%w: unknown discount type %q", ErrInvalidPromotion, p.DiscountType)
	}
	if p.DiscountValue.IsNegative() {
		return fmt.Errorf("%w: discount value must not be negative", ErrInvalidPromotion)
	}
	if p.DiscountType == entity.DiscountTypePercentage && p.DiscountValue.GreaterThan(hundred) {
		return fmt.Errorf("%w: percentage above 100", ErrInvalidPromotion)
	}
	if p.MinAge != nil && p.MaxAge != nil && *p.MinAge > *p.MaxAge {
		return fmt.Errorf("%w: min age above max age", ErrInvalidPromotion)
	}
	if p.MaxUses != nil && *p.MaxUses < 0 {
		return fmt.Errorf("%w: max uses must not be negative", ErrInvalidPromotion)
	}
	if p.PromoCode != nil && strings.TrimSpace(*p.PromoCode) == "" {
		return fmt.Errorf("%w: promo code must not be blank", ErrInvalidPromotion)
	}
	return ValidateDates(p.StartDate, p.EndDate)
}

// NormalizeCode is the canonical form promo codes are stored and looked up in.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
