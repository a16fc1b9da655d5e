package promotion

import (
	"errors"
	"testing"
	"time"

	"github.com/SpacksD/dulmar1-sub001/internal/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func basePromotion() *entity.Promotion {
	return &entity.Promotion{
		Id:            uuid.New(),
		Name:          "Back to school",
		DiscountType:  entity.DiscountTypePercentage,
		DiscountValue: d("20"),
		StartDate:     time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
		IsActive:      true,
	}
}

var march15 = time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)

func TestCheckEligibility_Eligible(t *testing.T) {
	assert.NoError(t, CheckEligibility(basePromotion(), uuid.New(), 24, march15))
}

func TestCheckEligibility_Failures(t *testing.T) {
	serviceA := uuid.New()

	tests := []struct {
		name   string
		mutate func(p *entity.Promotion)
		now    time.Time
		age    int
		want   error
	}{
		{"inactive", func(p *entity.Promotion) { p.IsActive = false }, march15, 24, ErrInactive},
		{"before start", func(p *entity.Promotion) {}, time.Date(2025, 2, 28, 23, 59, 0, 0, time.UTC), 24, ErrNotStarted},
		{"after end", func(p *entity.Promotion) {}, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), 24, ErrExpired},
		{"exhausted", func(p *entity.Promotion) { p.MaxUses = intPtr(3); p.UsedCount = 3 }, march15, 24, ErrPromotionExhausted},
		{"service not listed", func(p *entity.Promotion) { p.ApplicableServiceIds = []uuid.UUID{serviceA} }, march15, 24, ErrServiceNotApplicable},
		{"too young", func(p *entity.Promotion) { p.MinAge = intPtr(12) }, march15, 11, ErrChildTooYoung},
		{"too old", func(p *entity.Promotion) { p.MaxAge = intPtr(36) }, march15, 37, ErrChildTooOld},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := basePromotion()
			tt.mutate(p)
			err := CheckEligibility(p, uuid.New(), tt.age, tt.now)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)

			var ie *IneligibleError
			assert.True(t, errors.As(err, &ie))
		})
	}
}

func TestCheckEligibility_FirstFailureWins(t *testing.T) {
	p := basePromotion()
	p.IsActive = false
	p.MaxUses = intPtr(1)
	p.UsedCount = 1
	err := CheckEligibility(p, uuid.New(), 24, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, ErrInactive)
}

func TestCheckEligibility_EndDateIsInclusive(t *testing.T) {
	p := basePromotion()
	lastMoment := time.Date(2025, 3, 31, 23, 59, 59, 0, time.UTC)
	assert.NoError(t, CheckEligibility(p, uuid.New(), 24, lastMoment))
	firstMoment := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	assert.NoError(t, CheckEligibility(p, uuid.New(), 24, firstMoment))
}

func TestCheckEligibility_AgeBoundsInclusive(t *testing.T) {
	p := basePromotion()
	p.MinAge = intPtr(12)
	p.MaxAge = intPtr(36)
	assert.NoError(t, CheckEligibility(p, uuid.New(), 12, march15))
	assert.NoError(t, CheckEligibility(p, uuid.New(), 36, march15))
}

func TestCheckEligibility_ServiceList(t *testing.T) {
	listed := uuid.New()

	open := basePromotion()
	for i := 0; i < 5; i++ {
		assert.NoError(t, CheckEligibility(open, uuid.New(), 24, march15), "empty list covers every service")
	}

	restricted := basePromotion()
	restricted.ApplicableServiceIds = []uuid.UUID{listed}
	assert.NoError(t, CheckEligibility(restricted, listed, 24, march15))
	for i := 0; i < 5; i++ {
		assert.ErrorIs(t, CheckEligibility(restricted, uuid.New(), 24, march15), ErrServiceNotApplicable)
	}
}

func TestCalculateDiscount(t *testing.T) {
	tests := []struct {
		name     string
		kind     entity.DiscountType
		value    string
		original string
		discount string
		final    string
		free     bool
	}{
		{"percentage", entity.DiscountTypePercentage, "20", "200", "40", "160", false},
		{"percentage rounds to cents", entity.DiscountTypePercentage, "15", "99.99", "15", "84.99", false},
		{"fixed", entity.DiscountTypeFixedAmount, "50", "200", "50", "150", false},
		{"fixed above price clamps to zero", entity.DiscountTypeFixedAmount, "500", "200", "200", "0", false},
		{"free service", entity.DiscountTypeFreeService, "0", "450", "450", "0", true},
		{"zero price", entity.DiscountTypePercentage, "20", "0", "0", "0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := basePromotion()
			p.DiscountType = tt.kind
			p.DiscountValue = d(tt.value)

			res := CalculateDiscount(p, d(tt.original))
			assert.True(t, res.DiscountAmount.Equal(d(tt.discount)), "discount got %s", res.DiscountAmount)
			assert.True(t, res.FinalPrice.Equal(d(tt.final)), "final got %s", res.FinalPrice)
			assert.Equal(t, tt.free, res.IsFreeService)
		})
	}
}

func TestCalculateDiscount_Invariants(t *testing.T) {
	kinds := []entity.DiscountType{entity.DiscountTypePercentage, entity.DiscountTypeFixedAmount, entity.DiscountTypeFreeService}
	values := []string{"0", "5", "33.33", "100", "250", "-10"}
	originals := []string{"0", "0.01", "10", "199.99", "450", "10000"}

	for _, k := range kinds {
		for _, v := range values {
			for _, o := range originals {
				p := basePromotion()
				p.DiscountType = k
				p.DiscountValue = d(v)
				original := d(o)

				res := CalculateDiscount(p, original)
				assert.False(t, res.FinalPrice.IsNegative(), "%s %s %s", k, v, o)
				assert.False(t, res.FinalPrice.GreaterThan(original), "%s %s %s", k, v, o)
				assert.True(t, res.DiscountAmount.Add(res.FinalPrice).Equal(original), "%s %s %s", k, v, o)
			}
		}
	}
}

func TestValidateDates(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	assert.NoError(t, ValidateDates(start, start))
	assert.NoError(t, ValidateDates(start, start.AddDate(0, 1, 0)))
	assert.ErrorIs(t, ValidateDates(start, start.AddDate(0, 0, -1)), ErrInvalidDateRange)
	assert.ErrorIs(t, ValidateDates(time.Time{}, start), ErrInvalidPromotion)
}

func TestValidatePromotion(t *testing.T) {
	assert.NoError(t, ValidatePromotion(basePromotion()))

	p := basePromotion()
	p.DiscountValue = d("120")
	assert.ErrorIs(t, ValidatePromotion(p), ErrInvalidPromotion)

	p = basePromotion()
	p.DiscountType = "bogus"
	assert.ErrorIs(t, ValidatePromotion(p), ErrInvalidPromotion)

	p = basePromotion()
	p.MinAge, p.MaxAge = intPtr(40), intPtr(12)
	assert.ErrorIs(t, ValidatePromotion(p), ErrInvalidPromotion)
}
