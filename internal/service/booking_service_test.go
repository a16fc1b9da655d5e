package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/SpacksD/dulmar1-sub001/internal/dto"
	"github.com/SpacksD/dulmar1-sub001/internal/entity"
	"github.com/SpacksD/dulmar1-sub001/internal/pkg/clock"
	"github.com/SpacksD/dulmar1-sub001/internal/pkg/logger"
	"github.com/SpacksD/dulmar1-sub001/internal/testutil"
	"github.com/SpacksD/dulmar1-sub001/pkg/events"
	"github.com/SpacksD/dulmar1-sub001/pkg/pricing"
	"github.com/SpacksD/dulmar1-sub001/pkg/promotion"
	"github.com/SpacksD/dulmar1-sub001/pkg/schedule"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type BookingServiceSuite struct {
	suite.Suite
	ctx       context.Context
	store     *testutil.Store
	clock     *clock.Fixed
	publisher *testutil.Publisher
	service   IBookingService

	user  *entity.User
	svc   *entity.Service
	slot  *entity.TimeSlot
	promo *entity.Promotion
}

func TestBookingServiceSuite(t *testing.T) {
	suite.Run(t, new(BookingServiceSuite))
}

func (s *BookingServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = testutil.NewStore()
	s.clock = clock.NewFixed(time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC))
	s.publisher = &testutil.Publisher{}

	factory := testutil.NewFactory(s.store)
	expander := schedule.NewExpander(factory, s.clock, logger.NewNop(), s.publisher, &testutil.Notifier{}, schedule.DefaultHorizonMonths)
	s.service = NewBookingService(factory, s.clock, logger.NewNop(), s.publisher, expander, 7)

	s.user = s.store.SeedUser("maria@example.com", "Maria Perez")
	price := testutil.Money("450")
	s.svc = s.store.SeedService("Early stimulation", &price, 45)
	s.slot = s.store.SeedTimeSlot("10:00")

	maxUses := 5
	code := "SPRING20"
	s.promo = s.store.SeedPromotion(entity.Promotion{
		Name:          "Spring",
		DiscountType:  entity.DiscountTypePercentage,
		DiscountValue: testutil.Money("20"),
		PromoCode:     &code,
		StartDate:     time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
		MaxUses:       &maxUses,
		IsActive:      true,
	})
}

func (s *BookingServiceSuite) request() *dto.CreateBookingRequest {
	return &dto.CreateBookingRequest{
		ServiceId:     s.svc.Id,
		ChildName:     "Lucia",
		ChildAge:      30,
		TotalSessions: 8,
		PromoCode:     " spring20 ",
		WeeklySchedule: map[string]*uuid.UUID{
			"tuesday":  &s.slot.Id,
			"thursday": &s.slot.Id,
			"friday":   nil,
		},
	}
}

func (s *BookingServiceSuite) usedCount() int {
	p, _ := s.store.Promotion(s.promo.Id)
	return p.UsedCount
}

func (s *BookingServiceSuite) TestCreateBooking_RecurringWithPromotion() {
	res, err := s.service.CreateBooking(s.ctx, s.user.Id, s.request())
	s.Require().NoError(err)

	s.Equal("450.00", res.OriginalPrice.StringFixed(2))
	s.Equal("90.00", res.DiscountAmount.StringFixed(2))
	s.Equal("360.00", res.FinalPrice.StringFixed(2))
	s.Equal("pending", res.Status)
	s.Equal("unpaid", res.PaymentStatus)
	s.Equal(s.promo.Id, *res.PromotionId)
	s.Equal(1, s.usedCount())

	s.Require().NotNil(res.SubscriptionId)
	sub, ok := s.store.Subscription(*res.SubscriptionId)
	s.Require().True(ok)
	s.Equal(entity.SubscriptionStatusPending, sub.Status)
	s.Equal("450.00", sub.FinalMonthlyPrice.StringFixed(2))
	s.Equal(3, sub.StartMonth)
	s.Equal(2025, sub.StartYear)
	// pending subscriptions get sessions only after payment
	s.Empty(s.store.Sessions(sub.Id))

	invoices := s.store.Invoices()
	s.Require().Len(invoices, 1)
	inv := invoices[0]
	s.Equal(entity.InvoiceTypeRegistration, inv.InvoiceType)
	s.Equal(sub.Id, *inv.SubscriptionId)
	s.Equal(3, inv.BillingMonth)
	s.Equal("360.00", inv.TotalAmount.StringFixed(2))
	s.Equal(entity.InvoicePaymentStatusUnpaid, inv.PaymentStatus)
	s.Equal("2025-03-22", inv.DueDate.Format("2006-01-02"))
	s.True(strings.HasPrefix(inv.InvoiceNumber, "INV-202503-"))
	s.Equal(inv.InvoiceNumber, res.InvoiceNumber)

	items := s.store.InvoiceItems(inv.Id)
	s.Require().Len(items, 1)
	s.Equal("Registration — Early stimulation — March 2025", items[0].Description)

	s.Equal(1, s.publisher.Count(events.TypeBookingCreated))
	s.Equal(1, s.publisher.Count(events.TypeInvoiceGenerated))
}

func (s *BookingServiceSuite) TestCreateBooking_WithoutScheduleHasNoSubscription() {
	req := s.request()
	req.WeeklySchedule = nil
	req.PromoCode = ""
	req.TotalSessions = 12

	res, err := s.service.CreateBooking(s.ctx, s.user.Id, req)
	s.Require().NoError(err)
	s.Nil(res.SubscriptionId)
	s.Equal("540.00", res.FinalPrice.StringFixed(2))

	invoices := s.store.Invoices()
	s.Require().Len(invoices, 1)
	s.Nil(invoices[0].SubscriptionId)
	s.Equal(0, s.usedCount())
}

func (s *BookingServiceSuite) TestCreateBooking_FailureReleasesRedemption() {
	s.store.FailWhen("BookingRepository.Create", s.user.Id, errors.New("disk full"))

	_, err := s.service.CreateBooking(s.ctx, s.user.Id, s.request())
	s.Require().Error(err)

	s.Equal(0, s.usedCount())
	s.Empty(s.store.Invoices())
	s.Equal(0, s.publisher.Count(events.TypeBookingCreated))
}

func (s *BookingServiceSuite) TestCreateBooking_Rejections() {
	exhausted := 1
	code := "ONCE"
	s.store.SeedPromotion(entity.Promotion{
		Name:          "Once",
		DiscountType:  entity.DiscountTypeFixedAmount,
		DiscountValue: testutil.Money("50"),
		PromoCode:     &code,
		StartDate:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
		MaxUses:       &exhausted,
		UsedCount:     1,
		IsActive:      true,
	})
	maxAge := 24
	toddlers := "TODDLER"
	s.store.SeedPromotion(entity.Promotion{
		Name:          "Toddlers",
		DiscountType:  entity.DiscountTypePercentage,
		DiscountValue: testutil.Money("10"),
		PromoCode:     &toddlers,
		StartDate:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
		MaxAge:        &maxAge,
		IsActive:      true,
	})
	unpriced := s.store.SeedService("Private therapy", nil, 60)
	unknownSlot := uuid.New()

	cases := []struct {
		name   string
		mutate func(r *dto.CreateBookingRequest)
		want   error
	}{
		{"bad session count", func(r *dto.CreateBookingRequest) { r.TotalSessions = 10 }, pricing.ErrInvalidSessionCount},
		{"unknown service", func(r *dto.CreateBookingRequest) { r.ServiceId = uuid.New() }, ErrServiceNotFound},
		{"quote on request", func(r *dto.CreateBookingRequest) { r.ServiceId = unpriced.Id }, ErrQuoteOnRequest},
		{"unknown code", func(r *dto.CreateBookingRequest) { r.PromoCode = "NOPE" }, ErrPromotionNotFound},
		{"exhausted code", func(r *dto.CreateBookingRequest) { r.PromoCode = "once" }, promotion.ErrPromotionExhausted},
		{"child too old", func(r *dto.CreateBookingRequest) { r.PromoCode = "toddler" }, promotion.ErrChildTooOld},
		{"bad weekday", func(r *dto.CreateBookingRequest) { r.WeeklySchedule["funday"] = &s.slot.Id }, ErrInvalidSchedule},
		{"unknown slot", func(r *dto.CreateBookingRequest) { r.WeeklySchedule["monday"] = &unknownSlot }, ErrInvalidSchedule},
		{"past start", func(r *dto.CreateBookingRequest) { r.StartMonth, r.StartYear = 2, 2025 }, nil},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			req := s.request()
			tc.mutate(req)
			_, err := s.service.CreateBooking(s.ctx, s.user.Id, req)
			s.Require().Error(err)
			if tc.want != nil {
				s.ErrorIs(err, tc.want)
			}
		})
	}

	s.Equal(0, s.usedCount())
	s.Empty(s.store.Invoices())
}

func (s *BookingServiceSuite) TestCreateBooking_FreeServiceActivatesImmediately() {
	code := "WELCOME"
	free := s.store.SeedPromotion(entity.Promotion{
		Name:         "Welcome",
		DiscountType: entity.DiscountTypeFreeService,
		PromoCode:    &code,
		StartDate:    time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
		IsActive:     true,
	})
	req := s.request()
	req.PromoCode = "welcome"

	res, err := s.service.CreateBooking(s.ctx, s.user.Id, req)
	s.Require().NoError(err)
	s.True(res.FinalPrice.IsZero())
	s.Equal("confirmed", res.Status)
	s.Equal("paid", res.PaymentStatus)
	s.Equal(free.Id, *res.PromotionId)

	sub, _ := s.store.Subscription(*res.SubscriptionId)
	s.Equal(entity.SubscriptionStatusActive, sub.Status)
	s.Len(s.store.Sessions(sub.Id), 30)

	inv, _ := s.store.Invoice(*res.InvoiceId)
	s.Equal(entity.InvoicePaymentStatusPaid, inv.PaymentStatus)
	s.Equal(1, s.publisher.Count(events.TypeSubscriptionActivated))
}

func (s *BookingServiceSuite) TestDeleteBooking_RestoresPromotionAndCancelsSubscription() {
	res, err := s.service.CreateBooking(s.ctx, s.user.Id, s.request())
	s.Require().NoError(err)
	s.Equal(1, s.usedCount())

	s.Require().NoError(s.service.DeleteBooking(s.ctx, s.user.Id, res.Id))

	_, ok := s.store.Booking(res.Id)
	s.False(ok)
	s.Equal(0, s.usedCount())

	sub, _ := s.store.Subscription(*res.SubscriptionId)
	s.Equal(entity.SubscriptionStatusCancelled, sub.Status)
	inv, _ := s.store.Invoice(*res.InvoiceId)
	s.Equal(entity.InvoicePaymentStatusCancelled, inv.PaymentStatus)

	s.Equal(1, s.publisher.Count(events.TypeBookingWithdrawn))
	s.Equal(1, s.publisher.Count(events.TypeSubscriptionCancelled))
}

func (s *BookingServiceSuite) TestDeleteBooking_Guards() {
	res, err := s.service.CreateBooking(s.ctx, s.user.Id, s.request())
	s.Require().NoError(err)

	s.ErrorIs(s.service.DeleteBooking(s.ctx, uuid.New(), res.Id), ErrBookingNotFound)
	s.ErrorIs(s.service.DeleteBooking(s.ctx, s.user.Id, uuid.New()), ErrBookingNotFound)

	booking, _ := s.store.Booking(res.Id)
	booking.Status = entity.BookingStatusConfirmed
	booking.PaymentStatus = entity.BookingPaymentStatusPaid
	s.store.SeedBooking(booking)

	s.ErrorIs(s.service.DeleteBooking(s.ctx, s.user.Id, res.Id), ErrBookingNotWithdrawable)
	s.Equal(1, s.usedCount())
}

func (s *BookingServiceSuite) TestDeleteBooking_ReleaseNeverGoesNegative() {
	res, err := s.service.CreateBooking(s.ctx, s.user.Id, s.request())
	s.Require().NoError(err)

	p, _ := s.store.Promotion(s.promo.Id)
	p.UsedCount = 0
	s.store.SeedPromotion(p)

	s.Require().NoError(s.service.DeleteBooking(s.ctx, s.user.Id, res.Id))
	s.Equal(0, s.usedCount())
}
