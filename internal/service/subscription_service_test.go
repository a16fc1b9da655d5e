package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SpacksD/dulmar1-sub001/internal/entity"
	"github.com/SpacksD/dulmar1-sub001/internal/pkg/clock"
	"github.com/SpacksD/dulmar1-sub001/internal/pkg/logger"
	"github.com/SpacksD/dulmar1-sub001/internal/testutil"
	"github.com/SpacksD/dulmar1-sub001/pkg/events"
	"github.com/SpacksD/dulmar1-sub001/pkg/schedule"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type SubscriptionServiceSuite struct {
	suite.Suite
	ctx       context.Context
	store     *testutil.Store
	publisher *testutil.Publisher
	service   ISubscriptionService
	sub       *entity.Subscription
}

func TestSubscriptionServiceSuite(t *testing.T) {
	suite.Run(t, new(SubscriptionServiceSuite))
}

func (s *SubscriptionServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = testutil.NewStore()
	s.publisher = &testutil.Publisher{}
	clk := clock.NewFixed(time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC))

	factory := testutil.NewFactory(s.store)
	expander := schedule.NewExpander(factory, clk, logger.NewNop(), s.publisher, &testutil.Notifier{}, schedule.DefaultHorizonMonths)
	s.service = NewSubscriptionService(factory, clk, logger.NewNop(), s.publisher, expander)

	user := s.store.SeedUser("ana@example.com", "Ana Ruiz")
	price := testutil.Money("300")
	svc := s.store.SeedService("Music for babies", &price, 30)
	slot := s.store.SeedTimeSlot("16:00")
	s.sub = s.store.SeedSubscription(entity.Subscription{
		UserId:    user.Id,
		ServiceId: svc.Id,
		ChildName: "Tomas",
		ChildAge:  14,
		WeeklySchedule: entity.WeeklySchedule{
			"tuesday":  &slot.Id,
			"thursday": &slot.Id,
		},
		TotalSessions:     8,
		Status:            entity.SubscriptionStatusActive,
		FinalMonthlyPrice: price,
		StartMonth:        3,
		StartYear:         2025,
	})
}

func (s *SubscriptionServiceSuite) seedSession(day int, status entity.SessionStatus) {
	s.store.SeedSession(entity.Session{
		SubscriptionId:  s.sub.Id,
		SessionDate:     time.Date(2025, 3, day, 0, 0, 0, 0, time.UTC),
		SessionTime:     "16:00",
		SessionNumber:   day,
		DurationMinutes: 30,
		Status:          status,
	})
}

func (s *SubscriptionServiceSuite) TestExpandSessions() {
	res, err := s.service.ExpandSessions(s.ctx, s.sub.Id)
	s.Require().NoError(err)
	s.Equal(s.sub.Id, res.SubscriptionId)
	s.Equal(30, res.SessionsCreated)

	again, err := s.service.ExpandSessions(s.ctx, s.sub.Id)
	s.Require().NoError(err)
	s.Zero(again.SessionsCreated)
	s.Len(s.store.Sessions(s.sub.Id), 30)
}

func (s *SubscriptionServiceSuite) TestCancelSubscription_CancelsUpcomingSessionsOnly() {
	s.seedSession(4, entity.SessionStatusCompleted)
	s.seedSession(11, entity.SessionStatusScheduled)
	s.seedSession(15, entity.SessionStatusScheduled)
	s.seedSession(18, entity.SessionStatusScheduled)

	res, err := s.service.CancelSubscription(s.ctx, s.sub.Id)
	s.Require().NoError(err)
	s.Equal("cancelled", res.Status)
	s.Equal(2, res.SessionsCancelled)

	sub, _ := s.store.Subscription(s.sub.Id)
	s.Equal(entity.SubscriptionStatusCancelled, sub.Status)

	byDay := map[int]entity.Session{}
	for _, session := range s.store.Sessions(s.sub.Id) {
		byDay[session.SessionDate.Day()] = session
	}
	s.Equal(entity.SessionStatusCompleted, byDay[4].Status)
	s.Equal(entity.SessionStatusScheduled, byDay[11].Status)
	s.Equal(entity.SessionStatusCancelled, byDay[15].Status)
	s.Equal("subscription cancelled", byDay[15].Notes)
	s.Equal(entity.SessionStatusCancelled, byDay[18].Status)

	s.Equal(1, s.publisher.Count(events.TypeSubscriptionCancelled))
}

func (s *SubscriptionServiceSuite) TestCancelSubscription_ClosesBookingsAndOpenInvoices() {
	promo := s.store.SeedPromotion(entity.Promotion{
		Name:          "Spring",
		DiscountType:  entity.DiscountTypePercentage,
		DiscountValue: testutil.Money("10"),
		StartDate:     time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC),
		UsedCount:     1,
		IsActive:      true,
	})
	booking := s.store.SeedBooking(entity.Booking{
		UserId:         s.sub.UserId,
		ServiceId:      s.sub.ServiceId,
		SubscriptionId: &s.sub.Id,
		PromotionId:    &promo.Id,
		ChildName:      "Tomas",
		ChildAge:       14,
		OriginalPrice:  testutil.Money("300"),
		DiscountAmount: testutil.Money("30"),
		FinalPrice:     testutil.Money("270"),
		TotalSessions:  8,
		Status:         entity.BookingStatusPending,
		PaymentStatus:  entity.BookingPaymentStatusUnpaid,
	})
	invoice := func(month int, status entity.InvoicePaymentStatus) *entity.Invoice {
		return s.store.SeedInvoice(entity.Invoice{
			SubscriptionId: &s.sub.Id,
			UserId:         s.sub.UserId,
			InvoiceType:    entity.InvoiceTypeMonthly,
			BillingMonth:   month,
			BillingYear:    2025,
			DueDate:        time.Date(2025, time.Month(month), 10, 0, 0, 0, 0, time.UTC),
			TotalAmount:    testutil.Money("300"),
			PaymentStatus:  status,
		})
	}
	paid := invoice(1, entity.InvoicePaymentStatusPaid)
	overdue := invoice(2, entity.InvoicePaymentStatusOverdue)
	unpaid := invoice(3, entity.InvoicePaymentStatusUnpaid)

	res, err := s.service.CancelSubscription(s.ctx, s.sub.Id)
	s.Require().NoError(err)
	s.Equal(1, res.BookingsCancelled)
	s.Equal(2, res.InvoicesCancelled)

	storedBooking, _ := s.store.Booking(booking.Id)
	s.Equal(entity.BookingStatusCancelled, storedBooking.Status)
	s.Equal(entity.BookingPaymentStatusUnpaid, storedBooking.PaymentStatus)

	storedPromo, _ := s.store.Promotion(promo.Id)
	s.Zero(storedPromo.UsedCount)

	for id, want := range map[uuid.UUID]entity.InvoicePaymentStatus{
		paid.Id:    entity.InvoicePaymentStatusPaid,
		overdue.Id: entity.InvoicePaymentStatusCancelled,
		unpaid.Id:  entity.InvoicePaymentStatusCancelled,
	} {
		stored, ok := s.store.Invoice(id)
		s.Require().True(ok)
		s.Equal(want, stored.PaymentStatus)
	}
}

func (s *SubscriptionServiceSuite) TestCancelSubscription_RollsBackOnBookingFailure() {
	booking := s.store.SeedBooking(entity.Booking{
		UserId:         s.sub.UserId,
		ServiceId:      s.sub.ServiceId,
		SubscriptionId: &s.sub.Id,
		ChildName:      "Tomas",
		TotalSessions:  8,
		Status:         entity.BookingStatusPending,
		PaymentStatus:  entity.BookingPaymentStatusUnpaid,
	})
	s.store.FailOn("BookingRepository.Update", errors.New("connection reset"))

	_, err := s.service.CancelSubscription(s.ctx, s.sub.Id)
	s.Error(err)

	sub, _ := s.store.Subscription(s.sub.Id)
	s.Equal(entity.SubscriptionStatusActive, sub.Status)
	storedBooking, _ := s.store.Booking(booking.Id)
	s.Equal(entity.BookingStatusPending, storedBooking.Status)
	s.Zero(s.publisher.Count(events.TypeSubscriptionCancelled))
}

func (s *SubscriptionServiceSuite) TestCancelSubscription_Guards() {
	_, err := s.service.CancelSubscription(s.ctx, uuid.New())
	s.ErrorIs(err, ErrSubscriptionNotFound)

	_, err = s.service.CancelSubscription(s.ctx, s.sub.Id)
	s.Require().NoError(err)

	_, err = s.service.CancelSubscription(s.ctx, s.sub.Id)
	s.ErrorIs(err, ErrAlreadyCancelled)
	s.Equal(1, s.publisher.Count(events.TypeSubscriptionCancelled))
}
