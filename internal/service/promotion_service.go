package service

import (
	"context"
	"errors"

	"github.com/SpacksD/dulmar1-sub001/internal/dto"
	"github.com/SpacksD/dulmar1-sub001/internal/entity"
	"github.com/SpacksD/dulmar1-sub001/internal/pkg/clock"
	"github.com/SpacksD/dulmar1-sub001/internal/pkg/logger"
	"github.com/SpacksD/dulmar1-sub001/internal/repository/contract"
	"github.com/SpacksD/dulmar1-sub001/internal/repository/specification"
	"github.com/SpacksD/dulmar1-sub001/internal/repository/unitofwork"
	"github.com/SpacksD/dulmar1-sub001/pkg/promotion"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type IPromotionService interface {
	CheckPromotion(ctx context.Context, req *dto.CheckPromotionRequest) (*dto.CheckPromotionResponse, error)
	CreatePromotion(ctx context.Context, req *dto.CreatePromotionRequest) (*dto.PromotionResponse, error)
}

type promotionService struct {
	uowFactory unitofwork.RepositoryFactory
	clock      clock.Clock
	logger     logger.ILogger
}

func NewPromotionService(uowFactory unitofwork.RepositoryFactory, clk clock.Clock, logger logger.ILogger) IPromotionService {
	return &promotionService{
		uowFactory: uowFactory,
		clock:      clk,
		logger:     logger,
	}
}

// CheckPromotion previews the discount without redeeming. An ineligible
// promotion is a normal response carrying the reason, not an error.
func (s *promotionService) CheckPromotion(ctx context.Context, req *dto.CheckPromotionRequest) (*dto.CheckPromotionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	_, quote, err := quoteService(ctx, uow, req.ServiceId, req.TotalSessions)
	if err != nil {
		return nil, err
	}

	promo, err := uow.PromotionRepository().FindOne(ctx, specification.ByPromoCode{Code: promotion.NormalizeCode(req.PromoCode)})
	if err != nil {
		return nil, err
	}
	if promo == nil {
		return nil, ErrPromotionNotFound
	}

	res := &dto.CheckPromotionResponse{
		PromotionId:    &promo.Id,
		PromotionName:  promo.Name,
		OriginalPrice:  quote.TotalPrice,
		DiscountAmount: decimal.Zero,
		FinalPrice:     quote.TotalPrice,
	}

	if err := promotion.CheckEligibility(promo, req.ServiceId, req.ChildAge, s.clock.Now()); err != nil {
		var ineligible *promotion.IneligibleError
		if !errors.As(err, &ineligible) {
			return nil, err
		}
		res.Reason = ineligible.Error()
		return res, nil
	}

	discount := promotion.CalculateDiscount(promo, quote.TotalPrice)
	res.Valid = true
	res.DiscountAmount = discount.DiscountAmount
	res.FinalPrice = discount.FinalPrice
	res.IsFreeService = discount.IsFreeService
	return res, nil
}

func (s *promotionService) CreatePromotion(ctx context.Context, req *dto.CreatePromotionRequest) (*dto.PromotionResponse, error) {
	p := &entity.Promotion{
		Id:                   uuid.New(),
		Name:                 req.Name,
		Description:          req.Description,
		DiscountType:         entity.DiscountType(req.DiscountType),
		DiscountValue:        req.DiscountValue,
		MinAge:               req.MinAge,
		MaxAge:               req.MaxAge,
		ApplicableServiceIds: req.ApplicableServiceIds,
		StartDate:            req.StartDate,
		EndDate:              req.EndDate,
		MaxUses:              req.MaxUses,
		IsActive:             true,
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	if req.PromoCode != nil {
		code := promotion.NormalizeCode(*req.PromoCode)
		p.PromoCode = &code
	}

	if err := promotion.ValidatePromotion(p); err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.PromotionRepository().Create(ctx, p); err != nil {
		if errors.Is(err, contract.ErrDuplicate) {
			return nil, ErrPromoCodeTaken
		}
		return nil, err
	}

	s.logger.Info("PROMOTION", "Promotion created", map[string]interface{}{
		"promotionId":  p.Id.String(),
		"discountType": string(p.DiscountType),
	})

	return &dto.PromotionResponse{
		Id:                   p.Id,
		Name:                 p.Name,
		Description:          p.Description,
		DiscountType:         string(p.DiscountType),
		DiscountValue:        p.DiscountValue,
		MinAge:               p.MinAge,
		MaxAge:               p.MaxAge,
		ApplicableServiceIds: p.ApplicableServiceIds,
		PromoCode:            p.PromoCode,
		StartDate:            p.StartDate,
		EndDate:              p.EndDate,
		MaxUses:              p.MaxUses,
		UsedCount:            p.UsedCount,
		IsActive:             p.IsActive,
		CreatedAt:            p.CreatedAt,
	}, nil
}
