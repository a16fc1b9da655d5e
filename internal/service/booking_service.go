package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/SpacksD/dulmar1-sub001/internal/dto"
	"github.com/SpacksD/dulmar1-sub001/internal/entity"
	"github.com/SpacksD/dulmar1-sub001/internal/pkg/clock"
	"github.com/SpacksD/dulmar1-sub001/internal/pkg/logger"
	"github.com/SpacksD/dulmar1-sub001/internal/repository/contract"
	"github.com/SpacksD/dulmar1-sub001/internal/repository/specification"
	"github.com/SpacksD/dulmar1-sub001/internal/repository/unitofwork"
	"github.com/SpacksD/dulmar1-sub001/pkg/billing"
	"github.com/SpacksD/dulmar1-sub001/pkg/events"
	"github.com/SpacksD/dulmar1-sub001/pkg/promotion"
	"github.com/SpacksD/dulmar1-sub001/pkg/schedule"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

var weekdayKeys = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// SessionExpander is satisfied by *schedule.Expander.
type SessionExpander interface {
	Expand(ctx context.Context, subscriptionId uuid.UUID) (int, error)
	ExpandAll(ctx context.Context) (*schedule.BulkResult, error)
}

type IBookingService interface {
	CreateBooking(ctx context.Context, userId uuid.UUID, req *dto.CreateBookingRequest) (*dto.BookingResponse, error)
	DeleteBooking(ctx context.Context, userId uuid.UUID, bookingId uuid.UUID) error
}

type bookingService struct {
	uowFactory unitofwork.RepositoryFactory
	clock      clock.Clock
	logger     logger.ILogger
	publisher  events.Publisher
	expander   SessionExpander
	dueDays    int
}

func NewBookingService(
	uowFactory unitofwork.RepositoryFactory,
	clk clock.Clock,
	logger logger.ILogger,
	publisher events.Publisher,
	expander SessionExpander,
	dueDays int,
) IBookingService {
	if dueDays <= 0 {
		dueDays = billing.DefaultDueDays
	}
	return &bookingService{
		uowFactory: uowFactory,
		clock:      clk,
		logger:     logger,
		publisher:  publisher,
		expander:   expander,
		dueDays:    dueDays,
	}
}

// CreateBooking prices the booking, redeems the promotion and writes the
// booking with its registration invoice (and a pending subscription when
// the request carries a weekly schedule) in one transaction. A failure at
// any step leaves the promotion's used_count untouched.
func (s *bookingService) CreateBooking(ctx context.Context, userId uuid.UUID, req *dto.CreateBookingRequest) (*dto.BookingResponse, error) {
	weekly := entity.WeeklySchedule(req.WeeklySchedule)
	for day := range weekly {
		if !lo.Contains(weekdayKeys, day) {
			return nil, fmt.Errorf("%w: unknown weekday %q", ErrInvalidSchedule, day)
		}
	}

	now := s.clock.Now()
	startMonth, startYear := req.StartMonth, req.StartYear
	if startMonth == 0 || startYear == 0 {
		startMonth, startYear = int(now.Month()), now.Year()
	}
	if err := billing.ValidatePeriod(startMonth, startYear); err != nil {
		return nil, err
	}
	if startYear*12+startMonth < now.Year()*12+int(now.Month()) {
		return nil, fmt.Errorf("%w: start period is in the past", billing.ErrInvalidPeriod)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	svc, quote, err := quoteService(ctx, uow, req.ServiceId, req.TotalSessions)
	if err != nil {
		return nil, err
	}
	if (svc.AgeMinMonths != nil && req.ChildAge < *svc.AgeMinMonths) ||
		(svc.AgeMaxMonths != nil && req.ChildAge > *svc.AgeMaxMonths) {
		return nil, ErrChildAgeOutOfRange
	}

	recurring := weekly.HasAssignments()
	if recurring {
		slotIds := weekly.SlotIds()
		slots, err := uow.ServiceRepository().FindAllTimeSlots(ctx, specification.ByIDs{IDs: slotIds})
		if err != nil {
			return nil, err
		}
		if len(slots) != len(slotIds) {
			return nil, fmt.Errorf("%w: unknown time slot", ErrInvalidSchedule)
		}
	}

	booking := &entity.Booking{
		Id:             uuid.New(),
		UserId:         userId,
		ServiceId:      svc.Id,
		ChildName:      strings.TrimSpace(req.ChildName),
		ChildAge:       req.ChildAge,
		OriginalPrice:  quote.TotalPrice,
		DiscountAmount: decimal.Zero,
		FinalPrice:     quote.TotalPrice,
		TotalSessions:  req.TotalSessions,
		Status:         entity.BookingStatusPending,
		PaymentStatus:  entity.BookingPaymentStatusUnpaid,
		Notes:          req.Notes,
	}

	if code := strings.TrimSpace(req.PromoCode); code != "" {
		promo, err := uow.PromotionRepository().FindOne(ctx,
			specification.ByPromoCode{Code: promotion.NormalizeCode(code)},
			specification.ForUpdate{},
		)
		if err != nil {
			return nil, err
		}
		if promo == nil {
			return nil, ErrPromotionNotFound
		}
		if err := promotion.CheckEligibility(promo, svc.Id, req.ChildAge, now); err != nil {
			return nil, err
		}
		if err := uow.PromotionRepository().Redeem(ctx, promo.Id); err != nil {
			if errors.Is(err, contract.ErrConditionFailed) {
				return nil, promotion.ErrPromotionExhausted
			}
			return nil, err
		}

		discount := promotion.CalculateDiscount(promo, quote.TotalPrice)
		booking.PromotionId = &promo.Id
		booking.DiscountAmount = discount.DiscountAmount
		booking.FinalPrice = discount.FinalPrice
	}

	// Nothing to pay: the booking is settled on the spot.
	free := booking.FinalPrice.IsZero()
	if free {
		booking.Status = entity.BookingStatusConfirmed
		booking.PaymentStatus = entity.BookingPaymentStatusPaid
	}

	var sub *entity.Subscription
	if recurring {
		sub = &entity.Subscription{
			Id:                uuid.New(),
			UserId:            userId,
			ServiceId:         svc.Id,
			ChildName:         booking.ChildName,
			ChildAge:          req.ChildAge,
			WeeklySchedule:    weekly,
			TotalSessions:     req.TotalSessions,
			Status:            entity.SubscriptionStatusPending,
			FinalMonthlyPrice: quote.TotalPrice,
			StartMonth:        startMonth,
			StartYear:         startYear,
		}
		if free {
			sub.Status = entity.SubscriptionStatusActive
		}
		if err := uow.SubscriptionRepository().Create(ctx, sub); err != nil {
			return nil, err
		}
		booking.SubscriptionId = &sub.Id
	}

	invoice := &entity.Invoice{
		Id:             uuid.New(),
		SubscriptionId: booking.SubscriptionId,
		UserId:         userId,
		InvoiceType:    entity.InvoiceTypeRegistration,
		BillingMonth:   startMonth,
		BillingYear:    startYear,
		DueDate:        billing.DueDate(now, s.dueDays),
		Subtotal:       booking.FinalPrice,
		TaxAmount:      decimal.Zero,
		TotalAmount:    booking.FinalPrice,
		PaymentStatus:  entity.InvoicePaymentStatusUnpaid,
		PaidAmount:     decimal.Zero,
	}
	invoice.InvoiceNumber = billing.InvoiceNumber(invoice.Id, startMonth, startYear)
	if free {
		invoice.PaymentStatus = entity.InvoicePaymentStatusPaid
		invoice.PaidAt = &now
	}

	created, err := uow.InvoiceRepository().CreateIfPeriodFree(ctx, invoice)
	if err != nil {
		return nil, err
	}
	if !created {
		return nil, fmt.Errorf("registration invoice for %s already exists", billing.PeriodLabel(startMonth, startYear))
	}

	serviceId := svc.Id
	item := &entity.InvoiceItem{
		Id:          uuid.New(),
		InvoiceId:   invoice.Id,
		ServiceId:   &serviceId,
		Description: fmt.Sprintf("Registration — %s — %s", svc.Name, billing.PeriodLabel(startMonth, startYear)),
		Quantity:    1,
		UnitPrice:   booking.FinalPrice,
		TotalPrice:  booking.FinalPrice,
	}
	if err := uow.InvoiceRepository().CreateItem(ctx, item); err != nil {
		return nil, err
	}

	if err := uow.BookingRepository().Create(ctx, booking); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("BOOKING", "Booking created", map[string]interface{}{
		"bookingId":     booking.Id.String(),
		"userId":        userId.String(),
		"recurring":     recurring,
		"finalPrice":    booking.FinalPrice.StringFixed(2),
		"invoiceNumber": invoice.InvoiceNumber,
	})

	s.publisher.PublishBookingCreated(ctx, booking)
	s.publisher.PublishInvoiceGenerated(ctx, invoice)

	if free && sub != nil {
		s.publisher.PublishSubscriptionActivated(ctx, sub)
		if _, err := s.expander.Expand(ctx, sub.Id); err != nil {
			s.logger.Warn("BOOKING", "Session generation for free booking failed", map[string]interface{}{
				"subscriptionId": sub.Id.String(),
				"error":          err.Error(),
			})
		}
	}

	return &dto.BookingResponse{
		Id:             booking.Id,
		ServiceId:      booking.ServiceId,
		SubscriptionId: booking.SubscriptionId,
		PromotionId:    booking.PromotionId,
		ChildName:      booking.ChildName,
		ChildAge:       booking.ChildAge,
		TotalSessions:  booking.TotalSessions,
		OriginalPrice:  booking.OriginalPrice,
		DiscountAmount: booking.DiscountAmount,
		FinalPrice:     booking.FinalPrice,
		Status:         string(booking.Status),
		PaymentStatus:  string(booking.PaymentStatus),
		InvoiceId:      &invoice.Id,
		InvoiceNumber:  invoice.InvoiceNumber,
		CreatedAt:      booking.CreatedAt,
	}, nil
}

// DeleteBooking withdraws a pending unpaid booking. The promotion use is
// released and a pending subscription is cancelled together with its
// unpaid invoices.
func (s *bookingService) DeleteBooking(ctx context.Context, userId uuid.UUID, bookingId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	booking, err := uow.BookingRepository().FindOne(ctx, specification.ByID{ID: bookingId}, specification.ForUpdate{})
	if err != nil {
		return err
	}
	if booking == nil || booking.UserId != userId {
		return ErrBookingNotFound
	}
	if !booking.IsWithdrawable() {
		return ErrBookingNotWithdrawable
	}

	if err := uow.BookingRepository().Delete(ctx, booking.Id); err != nil {
		return err
	}

	if booking.PromotionId != nil {
		if err := uow.PromotionRepository().Release(ctx, *booking.PromotionId); err != nil {
			return err
		}
	}

	var cancelled *entity.Subscription
	if booking.SubscriptionId != nil {
		sub, err := uow.SubscriptionRepository().FindOne(ctx, specification.ByID{ID: *booking.SubscriptionId}, specification.ForUpdate{})
		if err != nil {
			return err
		}
		if sub != nil && sub.Status == entity.SubscriptionStatusPending {
			if err := entity.TransitionSubscription(sub, entity.SubscriptionStatusCancelled); err != nil {
				return err
			}
			if err := uow.SubscriptionRepository().Update(ctx, sub); err != nil {
				return err
			}
			cancelled = sub

			invoices, err := uow.InvoiceRepository().FindAll(ctx,
				specification.BySubscriptionID{SubscriptionID: sub.Id},
				specification.Filter("payment_status", string(entity.InvoicePaymentStatusUnpaid)),
			)
			if err != nil {
				return err
			}
			for _, inv := range invoices {
				if err := entity.TransitionInvoice(inv, entity.InvoicePaymentStatusCancelled); err != nil {
					return err
				}
				inv.AdminNotes = "booking withdrawn"
				if err := uow.InvoiceRepository().Update(ctx, inv); err != nil {
					return err
				}
			}
		}
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	s.logger.Info("BOOKING", "Booking withdrawn", map[string]interface{}{
		"bookingId":         booking.Id.String(),
		"promotionReleased": booking.PromotionId != nil,
	})

	s.publisher.PublishBookingWithdrawn(ctx, booking)
	if cancelled != nil {
		s.publisher.PublishSubscriptionCancelled(ctx, cancelled, 0)
	}
	return nil
}
