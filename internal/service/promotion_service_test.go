package service

import (
	"context"
	"testing"
	"time"

	"github.com/SpacksD/dulmar1-sub001/internal/dto"
	"github.com/SpacksD/dulmar1-sub001/internal/entity"
	"github.com/SpacksD/dulmar1-sub001/internal/pkg/clock"
	"github.com/SpacksD/dulmar1-sub001/internal/pkg/logger"
	"github.com/SpacksD/dulmar1-sub001/internal/testutil"
	"github.com/SpacksD/dulmar1-sub001/pkg/promotion"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type PromotionServiceSuite struct {
	suite.Suite
	ctx     context.Context
	store   *testutil.Store
	service IPromotionService
	svc     *entity.Service
}

func TestPromotionServiceSuite(t *testing.T) {
	suite.Run(t, new(PromotionServiceSuite))
}

func (s *PromotionServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = testutil.NewStore()
	clk := clock.NewFixed(time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC))
	s.service = NewPromotionService(testutil.NewFactory(s.store), clk, logger.NewNop())

	price := testutil.Money("450")
	s.svc = s.store.SeedService("Early stimulation", &price, 45)
}

func (s *PromotionServiceSuite) createRequest(code string) *dto.CreatePromotionRequest {
	maxUses := 10
	return &dto.CreatePromotionRequest{
		Name:          "Spring",
		DiscountType:  "fixed_amount",
		DiscountValue: testutil.Money("100"),
		PromoCode:     &code,
		StartDate:     time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
		MaxUses:       &maxUses,
	}
}

func (s *PromotionServiceSuite) TestCreateThenCheck() {
	created, err := s.service.CreatePromotion(s.ctx, s.createRequest(" spring100 "))
	s.Require().NoError(err)
	s.Equal("SPRING100", *created.PromoCode)
	s.True(created.IsActive)
	s.Zero(created.UsedCount)

	res, err := s.service.CheckPromotion(s.ctx, &dto.CheckPromotionRequest{
		PromoCode:     "Spring100",
		ServiceId:     s.svc.Id,
		ChildAge:      20,
		TotalSessions: 16,
	})
	s.Require().NoError(err)
	s.True(res.Valid)
	s.Empty(res.Reason)
	s.Equal(created.Id, *res.PromotionId)
	s.Equal("630.00", res.OriginalPrice.StringFixed(2))
	s.Equal("100.00", res.DiscountAmount.StringFixed(2))
	s.Equal("530.00", res.FinalPrice.StringFixed(2))
	s.False(res.IsFreeService)

	// checking never redeems
	stored, _ := s.store.Promotion(created.Id)
	s.Zero(stored.UsedCount)
}

func (s *PromotionServiceSuite) TestCheckPromotion_IneligibleCarriesReason() {
	req := s.createRequest("OTHER")
	req.ApplicableServiceIds = []uuid.UUID{uuid.New()}
	_, err := s.service.CreatePromotion(s.ctx, req)
	s.Require().NoError(err)

	res, err := s.service.CheckPromotion(s.ctx, &dto.CheckPromotionRequest{
		PromoCode:     "other",
		ServiceId:     s.svc.Id,
		TotalSessions: 8,
	})
	s.Require().NoError(err)
	s.False(res.Valid)
	s.Contains(res.Reason, promotion.ErrServiceNotApplicable.Error())
	s.Equal("450.00", res.FinalPrice.StringFixed(2))
	s.True(res.DiscountAmount.IsZero())
}

func (s *PromotionServiceSuite) TestCheckPromotion_Errors() {
	_, err := s.service.CheckPromotion(s.ctx, &dto.CheckPromotionRequest{
		PromoCode: "NOPE", ServiceId: s.svc.Id, TotalSessions: 8,
	})
	s.ErrorIs(err, ErrPromotionNotFound)

	_, err = s.service.CheckPromotion(s.ctx, &dto.CheckPromotionRequest{
		PromoCode: "NOPE", ServiceId: uuid.New(), TotalSessions: 8,
	})
	s.ErrorIs(err, ErrServiceNotFound)
}

func (s *PromotionServiceSuite) TestCreatePromotion_Validation() {
	_, err := s.service.CreatePromotion(s.ctx, s.createRequest("TAKEN"))
	s.Require().NoError(err)

	_, err = s.service.CreatePromotion(s.ctx, s.createRequest("taken"))
	s.ErrorIs(err, ErrPromoCodeTaken)

	bad := s.createRequest("BACKWARDS")
	bad.EndDate = bad.StartDate.AddDate(0, 0, -1)
	_, err = s.service.CreatePromotion(s.ctx, bad)
	s.ErrorIs(err, promotion.ErrInvalidDateRange)

	pct := s.createRequest("TOOMUCH")
	pct.DiscountType = "percentage"
	pct.DiscountValue = testutil.Money("120")
	_, err = s.service.CreatePromotion(s.ctx, pct)
	s.ErrorIs(err, promotion.ErrInvalidPromotion)
}
