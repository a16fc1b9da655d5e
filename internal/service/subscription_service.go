package service

import (
	"context"
	"time"

	"github.com/SpacksD/dulmar1-sub001/internal/dto"
	"github.com/SpacksD/dulmar1-sub001/internal/entity"
	"github.com/SpacksD/dulmar1-sub001/internal/pkg/clock"
	"github.com/SpacksD/dulmar1-sub001/internal/pkg/logger"
	"github.com/SpacksD/dulmar1-sub001/internal/repository/specification"
	"github.com/SpacksD/dulmar1-sub001/internal/repository/unitofwork"
	"github.com/SpacksD/dulmar1-sub001/pkg/events"
	"github.com/SpacksD/dulmar1-sub001/pkg/schedule"

	"github.com/google/uuid"
)

type ISubscriptionService interface {
	ExpandSessions(ctx context.Context, subscriptionId uuid.UUID) (*dto.ExpandSessionsResponse, error)
	ExpandAll(ctx context.Context) (*schedule.BulkResult, error)
	CancelSubscription(ctx context.Context, subscriptionId uuid.UUID) (*dto.CancelSubscriptionResponse, error)
}

type subscriptionService struct {
	uowFactory unitofwork.RepositoryFactory
	clock      clock.Clock
	logger     logger.ILogger
	publisher  events.Publisher
	expander   SessionExpander
}

func NewSubscriptionService(
	uowFactory unitofwork.RepositoryFactory,
	clk clock.Clock,
	logger logger.ILogger,
	publisher events.Publisher,
	expander SessionExpander,
) ISubscriptionService {
	return &subscriptionService{
		uowFactory: uowFactory,
		clock:      clk,
		logger:     logger,
		publisher:  publisher,
		expander:   expander,
	}
}

func (s *subscriptionService) ExpandSessions(ctx context.Context, subscriptionId uuid.UUID) (*dto.ExpandSessionsResponse, error) {
	created, err := s.expander.Expand(ctx, subscriptionId)
	if err != nil {
		return nil, err
	}
	return &dto.ExpandSessionsResponse{
		SubscriptionId:  subscriptionId,
		SessionsCreated: created,
	}, nil
}

func (s *subscriptionService) ExpandAll(ctx context.Context) (*schedule.BulkResult, error) {
	return s.expander.ExpandAll(ctx)
}

// CancelSubscription ends the subscription and cancels its scheduled
// sessions from today on, its pending bookings and its open invoices. Past
// sessions and paid invoices keep their status.
func (s *subscriptionService) CancelSubscription(ctx context.Context, subscriptionId uuid.UUID) (*dto.CancelSubscriptionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	sub, err := uow.SubscriptionRepository().FindOne(ctx, specification.ByID{ID: subscriptionId}, specification.ForUpdate{})
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, ErrSubscriptionNotFound
	}
	if sub.Status == entity.SubscriptionStatusCancelled {
		return nil, ErrAlreadyCancelled
	}

	if err := entity.TransitionSubscription(sub, entity.SubscriptionStatusCancelled); err != nil {
		return nil, err
	}
	if err := uow.SubscriptionRepository().Update(ctx, sub); err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	sessions, err := uow.SessionRepository().FindAll(ctx,
		specification.BySubscriptionID{SubscriptionID: sub.Id},
		specification.ByStatus{Status: string(entity.SessionStatusScheduled)},
		specification.OnOrAfter{Field: "session_date", At: today},
	)
	if err != nil {
		return nil, err
	}
	for _, session := range sessions {
		if err := entity.TransitionSession(session, entity.SessionStatusCancelled); err != nil {
			return nil, err
		}
		session.Notes = "subscription cancelled"
		if err := uow.SessionRepository().Update(ctx, session); err != nil {
			return nil, err
		}
	}

	bookings, err := uow.BookingRepository().FindAll(ctx,
		specification.BySubscriptionID{SubscriptionID: sub.Id},
		specification.ByStatus{Status: string(entity.BookingStatusPending)},
	)
	if err != nil {
		return nil, err
	}
	for _, booking := range bookings {
		if err := entity.TransitionBooking(booking, entity.BookingStatusCancelled); err != nil {
			return nil, err
		}
		booking.Notes = "subscription cancelled"
		if err := uow.BookingRepository().Update(ctx, booking); err != nil {
			return nil, err
		}
		if booking.PromotionId != nil && booking.PaymentStatus == entity.BookingPaymentStatusUnpaid {
			if err := uow.PromotionRepository().Release(ctx, *booking.PromotionId); err != nil {
				return nil, err
			}
		}
	}

	invoices, err := uow.InvoiceRepository().FindAll(ctx,
		specification.BySubscriptionID{SubscriptionID: sub.Id},
		specification.FilterIn{Field: "payment_status", Values: []interface{}{
			string(entity.InvoicePaymentStatusUnpaid),
			string(entity.InvoicePaymentStatusOverdue),
		}},
	)
	if err != nil {
		return nil, err
	}
	for _, invoice := range invoices {
		if err := entity.TransitionInvoice(invoice, entity.InvoicePaymentStatusCancelled); err != nil {
			return nil, err
		}
		invoice.AdminNotes = "subscription cancelled"
		if err := uow.InvoiceRepository().Update(ctx, invoice); err != nil {
			return nil, err
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("SCHEDULE", "Subscription cancelled", map[string]interface{}{
		"subscriptionId":    sub.Id.String(),
		"sessionsCancelled": len(sessions),
		"bookingsCancelled": len(bookings),
		"invoicesCancelled": len(invoices),
	})
	s.publisher.PublishSubscriptionCancelled(ctx, sub, len(sessions))

	return &dto.CancelSubscriptionResponse{
		SubscriptionId:    sub.Id,
		Status:            string(sub.Status),
		SessionsCancelled: len(sessions),
		BookingsCancelled: len(bookings),
		InvoicesCancelled: len(invoices),
	}, nil
}
