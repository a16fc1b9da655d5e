package service

import (
	"context"

	"github.com/SpacksD/dulmar1-sub001/internal/dto"
	"github.com/SpacksD/dulmar1-sub001/internal/entity"
	"github.com/SpacksD/dulmar1-sub001/internal/repository/specification"
	"github.com/SpacksD/dulmar1-sub001/internal/repository/unitofwork"
	"github.com/SpacksD/dulmar1-sub001/pkg/pricing"

	"github.com/google/uuid"
)

type IPricingService interface {
	Quote(ctx context.Context, req *dto.QuoteRequest) (*dto.QuoteResponse, error)
}

type pricingService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewPricingService(uowFactory unitofwork.RepositoryFactory) IPricingService {
	return &pricingService{uowFactory: uowFactory}
}

func (s *pricingService) Quote(ctx context.Context, req *dto.QuoteRequest) (*dto.QuoteResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	svc, result, err := quoteService(ctx, uow, req.ServiceId, req.TotalSessions)
	if err != nil {
		return nil, err
	}

	return &dto.QuoteResponse{
		ServiceId:          svc.Id,
		ServiceName:        svc.Name,
		BaseSessions:       result.BaseSessions,
		AdditionalSessions: result.AdditionalSessions,
		BasePrice:          result.BasePrice,
		AdditionalPrice:    result.AdditionalPrice,
		TotalPrice:         result.TotalPrice,
		TotalSessions:      result.TotalSessions,
	}, nil
}

// quoteService loads the service and prices the session count against it.
func quoteService(ctx context.Context, uow unitofwork.UnitOfWork, serviceId uuid.UUID, totalSessions int) (*entity.Service, *pricing.Result, error) {
	if err := pricing.ValidateSessionCount(totalSessions); err != nil {
		return nil, nil, err
	}

	svc, err := uow.ServiceRepository().FindOne(ctx, specification.ByID{ID: serviceId})
	if err != nil {
		return nil, nil, err
	}
	if svc == nil {
		return nil, nil, ErrServiceNotFound
	}
	if !svc.IsActive {
		return nil, nil, ErrServiceInactive
	}
	if !svc.HasPrice() {
		return nil, nil, ErrQuoteOnRequest
	}

	result, err := pricing.CalculateSessionPrice(*svc.BasePrice, totalSessions)
	if err != nil {
		return nil, nil, err
	}
	return svc, result, nil
}
