package payment

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

type ReconcilerSuite struct {
	suite.Suite
	ctx        context.Context
	store      *testutil.Store
	clock      *clock.Fixed
	publisher  *testutil.Publisher
	reconciler *Reconciler

	user    *entity.User
	admin   uuid.UUID
	service *entity.Service
	slot    *entity.TimeSlot
}

func TestReconcilerSuite(t *testing.T) {
	suite.Run(t, new(ReconcilerSuite))
}

func (s *ReconcilerSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = testutil.NewStore()
	s.clock = clock.NewFixed(time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC))
	s.publisher = &testutil.Publisher{}

	factory := testutil.NewFactory(s.store)
	expander := schedule.NewExpander(factory, s.clock, logger.NewNop(), s.publisher, &testutil.Notifier{}, schedule.DefaultHorizonMonths)
	s.reconciler = NewReconciler(factory, s.clock, logger.NewNop(), s.publisher, expander)

	s.user = s.store.SeedUser("maria@example.com", "Maria Perez")
	s.admin = uuid.New()
	price := testutil.Money("450")
	s.service = s.store.SeedService("Early stimulation", &price, 45)
	s.slot = s.store.SeedTimeSlot("10:00")
}

// registration seeds a pending subscription with its unpaid registration
// invoice, a pending booking, and a pending payment record.
func (s *ReconcilerSuite) registration() (*entity.Subscription, *entity.Invoice, *entity.Booking, *entity.PaymentRecord) {
	sub := s.store.SeedSubscription(entity.Subscription{
		UserId:    s.user.Id,
		ServiceId: s.service.Id,
		ChildName: "Lucia",
		ChildAge:  30,
		WeeklySchedule: entity.WeeklySchedule{
			"tuesday":  &s.slot.Id,
			"thursday": &s.slot.Id,
		},
		FinalMonthlyPrice: testutil.Money("360"),
		TotalSessions:     8,
		Status:            entity.SubscriptionStatusPending,
		StartMonth:        3,
		StartYear:         2025,
	})
	invoice := s.store.SeedInvoice(entity.Invoice{
		SubscriptionId: &sub.Id,
		UserId:         s.user.Id,
		InvoiceType:    entity.InvoiceTypeRegistration,
		BillingMonth:   3,
		BillingYear:    2025,
		DueDate:        time.Date(2025, 3, 22, 0, 0, 0, 0, time.UTC),
		Subtotal:       testutil.Money("360"),
		TotalAmount:    testutil.Money("360"),
		PaymentStatus:  entity.InvoicePaymentStatusUnpaid,
	})
	booking := s.store.SeedBooking(entity.Booking{
		UserId:         s.user.Id,
		ServiceId:      s.service.Id,
		SubscriptionId: &sub.Id,
		ChildName:      "Lucia",
		ChildAge:       30,
		OriginalPrice:  testutil.Money("450"),
		DiscountAmount: testutil.Money("90"),
		FinalPrice:     testutil.Money("360"),
		TotalSessions:  8,
		Status:         entity.BookingStatusPending,
		PaymentStatus:  entity.BookingPaymentStatusUnpaid,
	})
	payment := s.store.SeedPayment(entity.PaymentRecord{
		InvoiceId:        invoice.Id,
		UserId:           s.user.Id,
		Amount:           testutil.Money("360"),
		PaymentMethod:    "bank_transfer",
		PaymentReference: "TRX-0042",
		Status:           entity.PaymentRecordStatusPending,
	})
	return sub, invoice, booking, payment
}

func (s *ReconcilerSuite) TestConfirm_RunsFullCascade() {
	sub, invoice, booking, payment := s.registration()

	outcome, err := s.reconciler.Reconcile(s.ctx, payment.Id, DecisionConfirm, "matches bank statement", s.admin)
	s.Require().NoError(err)
	s.True(outcome.Complete())
	s.Empty(outcome.Warnings)
	s.Equal(entity.PaymentRecordStatusConfirmed, outcome.Status)
	s.True(outcome.SubscriptionActivated)
	s.Equal(30, outcome.SessionsCreated)
	s.Equal(1, outcome.BookingsConfirmed)
	s.Len(outcome.Steps, 4)

	storedPayment, _ := s.store.Payment(payment.Id)
	s.Equal(entity.PaymentRecordStatusConfirmed, storedPayment.Status)
	s.Equal(s.admin, *storedPayment.ConfirmedBy)
	s.Equal(s.clock.Now(), *storedPayment.ConfirmedAt)
	s.Equal("matches bank statement", storedPayment.AdminNotes)

	storedInvoice, _ := s.store.Invoice(invoice.Id)
	s.Equal(entity.InvoicePaymentStatusPaid, storedInvoice.PaymentStatus)
	s.Equal("360.00", storedInvoice.PaidAmount.StringFixed(2))
	s.Equal(s.clock.Now(), *storedInvoice.PaidAt)
	s.Equal("bank_transfer", *storedInvoice.PaymentMethod)
	s.Equal("TRX-0042", *storedInvoice.PaymentReference)

	storedSub, _ := s.store.Subscription(sub.Id)
	s.Equal(entity.SubscriptionStatusActive, storedSub.Status)
	s.Len(s.store.Sessions(sub.Id), 30)

	storedBooking, _ := s.store.Booking(booking.Id)
	s.Equal(entity.BookingStatusConfirmed, storedBooking.Status)
	s.Equal(entity.BookingPaymentStatusPaid, storedBooking.PaymentStatus)

	s.Equal(1, s.publisher.Count(events.TypePaymentConfirmed))
	s.Equal(1, s.publisher.Count(events.TypeSubscriptionActivated))
	s.Equal(1, s.publisher.Count(events.TypeSessionsGenerated))
}

func (s *ReconcilerSuite) TestConfirm_AlreadyProcessedChangesNothing() {
	_, invoice, _, payment := s.registration()
	_, err := s.reconciler.Reconcile(s.ctx, payment.Id, DecisionConfirm, "", s.admin)
	s.Require().NoError(err)

	paymentBefore, _ := s.store.Payment(payment.Id)
	invoiceBefore, _ := s.store.Invoice(invoice.Id)
	s.clock.Advance(time.Hour)

	for _, decision := range []Decision{DecisionConfirm, DecisionReject} {
		_, err = s.reconciler.Reconcile(s.ctx, payment.Id, decision, "second look", uuid.New())
		s.ErrorIs(err, ErrPaymentAlreadyProcessed)
	}

	paymentAfter, _ := s.store.Payment(payment.Id)
	invoiceAfter, _ := s.store.Invoice(invoice.Id)
	s.Equal(paymentBefore, paymentAfter)
	s.Equal(invoiceBefore, invoiceAfter)
	s.Equal(1, s.publisher.Count(events.TypePaymentConfirmed))
}

func (s *ReconcilerSuite) TestConfirm_AlreadyActiveSubscriptionIsNotReactivated() {
	sub, _, _, payment := s.registration()
	current, _ := s.store.Subscription(sub.Id)
	current.Status = entity.SubscriptionStatusActive
	s.store.SeedSubscription(current)

	outcome, err := s.reconciler.Reconcile(s.ctx, payment.Id, DecisionConfirm, "", s.admin)
	s.Require().NoError(err)
	s.False(outcome.SubscriptionActivated)
	s.Equal(StepSkipped, outcome.Steps[1].Status)
	s.Equal(0, s.publisher.Count(events.TypeSubscriptionActivated))
	s.Equal(30, outcome.SessionsCreated)
}

func (s *ReconcilerSuite) TestConfirm_InvoiceWithoutSubscriptionSkipsCascade() {
	invoice := s.store.SeedInvoice(entity.Invoice{
		UserId:        s.user.Id,
		InvoiceType:   entity.InvoiceTypeAdditional,
		BillingMonth:  3,
		BillingYear:   2025,
		TotalAmount:   testutil.Money("80"),
		PaymentStatus: entity.InvoicePaymentStatusOverdue,
	})
	payment := s.store.SeedPayment(entity.PaymentRecord{
		InvoiceId:     invoice.Id,
		UserId:        s.user.Id,
		Amount:        testutil.Money("80"),
		PaymentMethod: "cash",
		Status:        entity.PaymentRecordStatusPending,
	})

	outcome, err := s.reconciler.Reconcile(s.ctx, payment.Id, DecisionConfirm, "", s.admin)
	s.Require().NoError(err)
	s.True(outcome.Complete())
	for _, step := range outcome.Steps[1:] {
		s.Equal(StepSkipped, step.Status)
	}
	stored, _ := s.store.Invoice(invoice.Id)
	s.Equal(entity.InvoicePaymentStatusPaid, stored.PaymentStatus)
	s.Nil(stored.PaymentReference)
}

func (s *ReconcilerSuite) TestConfirm_AmountMismatchIsReported() {
	invoice := s.store.SeedInvoice(entity.Invoice{
		UserId:        s.user.Id,
		InvoiceType:   entity.InvoiceTypeAdditional,
		BillingMonth:  3,
		BillingYear:   2025,
		TotalAmount:   testutil.Money("120"),
		PaymentStatus: entity.InvoicePaymentStatusUnpaid,
	})
	payment := s.store.SeedPayment(entity.PaymentRecord{
		InvoiceId:     invoice.Id,
		UserId:        s.user.Id,
		Amount:        testutil.Money("100"),
		PaymentMethod: "cash",
		Status:        entity.PaymentRecordStatusPending,
	})

	outcome, err := s.reconciler.Reconcile(s.ctx, payment.Id, DecisionConfirm, "partial cash", s.admin)
	s.Require().NoError(err)
	s.True(outcome.Complete())
	s.Require().Len(outcome.Warnings, 1)
	s.Contains(outcome.Warnings[0], "100.00")
	s.Contains(outcome.Warnings[0], "120.00")

	stored, _ := s.store.Invoice(invoice.Id)
	s.Equal(entity.InvoicePaymentStatusPaid, stored.PaymentStatus)
	s.True(stored.PaidAmount.Equal(testutil.Money("120")))
}

func (s *ReconcilerSuite) TestConfirm_CancelledInvoiceRollsBack() {
	_, invoice, _, payment := s.registration()
	current, _ := s.store.Invoice(invoice.Id)
	current.PaymentStatus = entity.InvoicePaymentStatusCancelled
	s.store.SeedInvoice(current)

	_, err := s.reconciler.Reconcile(s.ctx, payment.Id, DecisionConfirm, "", s.admin)
	s.ErrorIs(err, ErrInvoiceNotPayable)

	stored, _ := s.store.Payment(payment.Id)
	s.Equal(entity.PaymentRecordStatusPending, stored.Status)
}

func (s *ReconcilerSuite) TestConfirm_ExpansionFailureIsRecoverable() {
	sub, _, booking, payment := s.registration()
	s.store.FailWhen("SessionRepository.ExistingDates", sub.Id, errors.New("connection reset"))

	outcome, err := s.reconciler.Reconcile(s.ctx, payment.Id, DecisionConfirm, "", s.admin)
	s.Require().NoError(err)
	s.False(outcome.Complete())
	s.True(outcome.SubscriptionActivated)
	s.Equal(StepFailed, outcome.Steps[2].Status)
	s.Require().Len(outcome.Warnings, 1)
	s.Contains(outcome.Warnings[0], "connection reset")
	// bookings still confirmed
	s.Equal(1, outcome.BookingsConfirmed)
	s.Empty(s.store.Sessions(sub.Id))

	storedSub, _ := s.store.Subscription(sub.Id)
	s.Equal(entity.SubscriptionStatusActive, storedSub.Status)
	storedBooking, _ := s.store.Booking(booking.Id)
	s.Equal(entity.BookingStatusConfirmed, storedBooking.Status)

	s.store.ClearFaults()
	resumed, err := s.reconciler.ResumeCascade(s.ctx, payment.Id)
	s.Require().NoError(err)
	s.True(resumed.Complete())
	s.False(resumed.SubscriptionActivated)
	s.Equal(30, resumed.SessionsCreated)
	s.Equal(0, resumed.BookingsConfirmed)
	s.Len(s.store.Sessions(sub.Id), 30)
	s.Equal(1, s.publisher.Count(events.TypeSubscriptionActivated))
}

func (s *ReconcilerSuite) TestConfirm_ActivationFailureStopsCascade() {
	sub, invoice, booking, payment := s.registration()
	s.store.FailWhen("SubscriptionRepository.FindOne", sub.Id, errors.New("lock timeout"))

	outcome, err := s.reconciler.Reconcile(s.ctx, payment.Id, DecisionConfirm, "", s.admin)
	s.Require().NoError(err)
	s.False(outcome.Complete())
	s.Equal(StepFailed, outcome.Steps[1].Status)
	s.Equal(StepSkipped, outcome.Steps[2].Status)
	s.Equal(StepSkipped, outcome.Steps[3].Status)

	// payment and invoice are already committed
	storedInvoice, _ := s.store.Invoice(invoice.Id)
	s.Equal(entity.InvoicePaymentStatusPaid, storedInvoice.PaymentStatus)
	storedBooking, _ := s.store.Booking(booking.Id)
	s.Equal(entity.BookingStatusPending, storedBooking.Status)

	s.store.ClearFaults()
	resumed, err := s.reconciler.ResumeCascade(s.ctx, payment.Id)
	s.Require().NoError(err)
	s.True(resumed.Complete())
	s.True(resumed.SubscriptionActivated)
	s.Equal(1, resumed.BookingsConfirmed)
}

func (s *ReconcilerSuite) TestConfirm_CancelledSubscriptionSkipsCascade() {
	sub, _, booking, payment := s.registration()
	current, _ := s.store.Subscription(sub.Id)
	current.Status = entity.SubscriptionStatusCancelled
	s.store.SeedSubscription(current)

	outcome, err := s.reconciler.Reconcile(s.ctx, payment.Id, DecisionConfirm, "", s.admin)
	s.Require().NoError(err)
	s.True(outcome.Complete())
	s.Require().Len(outcome.Steps, 4)
	s.Equal(StepSkipped, outcome.Steps[1].Status)
	s.Equal(StepSkipped, outcome.Steps[2].Status)
	s.Equal(StepBookingsConfirmed, outcome.Steps[3].Step)
	s.Equal(StepSkipped, outcome.Steps[3].Status)
	s.Zero(outcome.BookingsConfirmed)
	s.Empty(s.store.Sessions(sub.Id))

	storedSub, _ := s.store.Subscription(sub.Id)
	s.Equal(entity.SubscriptionStatusCancelled, storedSub.Status)
	storedBooking, _ := s.store.Booking(booking.Id)
	s.Equal(entity.BookingStatusPending, storedBooking.Status)
	s.Equal(entity.BookingPaymentStatusUnpaid, storedBooking.PaymentStatus)
}

func (s *ReconcilerSuite) TestResumeCascade_IsIdempotent() {
	sub, _, _, payment := s.registration()
	_, err := s.reconciler.Reconcile(s.ctx, payment.Id, DecisionConfirm, "", s.admin)
	s.Require().NoError(err)

	outcome, err := s.reconciler.ResumeCascade(s.ctx, payment.Id)
	s.Require().NoError(err)
	s.True(outcome.Complete())
	s.Equal(0, outcome.SessionsCreated)
	s.Equal(0, outcome.BookingsConfirmed)
	s.Len(s.store.Sessions(sub.Id), 30)
}

func (s *ReconcilerSuite) TestResumeCascade_RequiresConfirmedPayment() {
	_, _, _, payment := s.registration()

	_, err := s.reconciler.ResumeCascade(s.ctx, payment.Id)
	s.ErrorIs(err, ErrPaymentNotConfirmed)

	_, err = s.reconciler.ResumeCascade(s.ctx, uuid.New())
	s.ErrorIs(err, ErrPaymentNotFound)
}

func (s *ReconcilerSuite) TestReject_UpdatesPaymentAndInvoiceNotesOnly() {
	sub, invoice, booking, payment := s.registration()

	outcome, err := s.reconciler.Reconcile(s.ctx, payment.Id, DecisionReject, "reference not found", s.admin)
	s.Require().NoError(err)
	s.Equal(entity.PaymentRecordStatusRejected, outcome.Status)
	s.Require().Len(outcome.Steps, 1)
	s.Equal(StepPaymentRejected, outcome.Steps[0].Step)

	storedPayment, _ := s.store.Payment(payment.Id)
	s.Equal(entity.PaymentRecordStatusRejected, storedPayment.Status)
	s.Equal("reference not found", storedPayment.AdminNotes)
	s.Equal(s.admin, *storedPayment.ConfirmedBy)

	storedInvoice, _ := s.store.Invoice(invoice.Id)
	s.Equal(entity.InvoicePaymentStatusUnpaid, storedInvoice.PaymentStatus)
	s.Equal("reference not found", storedInvoice.AdminNotes)
	s.Nil(storedInvoice.PaidAt)

	storedSub, _ := s.store.Subscription(sub.Id)
	s.Equal(entity.SubscriptionStatusPending, storedSub.Status)
	storedBooking, _ := s.store.Booking(booking.Id)
	s.Equal(entity.BookingStatusPending, storedBooking.Status)
	s.Empty(s.store.Sessions(sub.Id))
	s.Equal(1, s.publisher.Count(events.TypePaymentRejected))
}

func (s *ReconcilerSuite) TestReconcile_Errors() {
	_, _, _, payment := s.registration()

	_, err := s.reconciler.Reconcile(s.ctx, payment.Id, Decision("approve"), "", s.admin)
	s.ErrorIs(err, ErrInvalidDecision)

	_, err = s.reconciler.Reconcile(s.ctx, uuid.New(), DecisionConfirm, "", s.admin)
	s.ErrorIs(err, ErrPaymentNotFound)

	_, err = s.reconciler.Reconcile(s.ctx, uuid.New(), DecisionReject, "", s.admin)
	s.ErrorIs(err, ErrPaymentNotFound)
}

func (s *ReconcilerSuite) TestSubmit_CreatesPendingRecord() {
	_, invoice, _, payment := s.registration()
	_, err := s.reconciler.Reconcile(s.ctx, payment.Id, DecisionReject, "unreadable proof", s.admin)
	s.Require().NoError(err)

	record, err := s.reconciler.Submit(s.ctx, SubmitInput{
		InvoiceId:        invoice.Id,
		UserId:           s.user.Id,
		Amount:           testutil.Money("360"),
		PaymentMethod:    " bank_transfer ",
		PaymentReference: "TRX-0043",
		ProofPath:        "uploads/proof/trx-0043.jpg",
	})
	s.Require().NoError(err)
	s.Equal(entity.PaymentRecordStatusPending, record.Status)
	s.Equal("bank_transfer", record.PaymentMethod)

	stored, ok := s.store.Payment(record.Id)
	s.Require().True(ok)
	s.Equal("uploads/proof/trx-0043.jpg", stored.ProofPath)
	s.Equal(1, s.publisher.Count(events.TypePaymentSubmitted))
}

func (s *ReconcilerSuite) TestSubmit_RejectsSecondPendingRecord() {
	_, invoice, _, _ := s.registration()

	_, err := s.reconciler.Submit(s.ctx, SubmitInput{
		InvoiceId:     invoice.Id,
		UserId:        s.user.Id,
		Amount:        testutil.Money("360"),
		PaymentMethod: "cash",
	})
	s.ErrorIs(err, ErrPaymentAlreadyPending)
	s.Len(s.store.Payments(), 1)
}

func (s *ReconcilerSuite) TestSubmit_Validation() {
	_, invoice, _, payment := s.registration()
	_, err := s.reconciler.Reconcile(s.ctx, payment.Id, DecisionReject, "", s.admin)
	s.Require().NoError(err)

	cases := []struct {
		name string
		in   SubmitInput
		want error
	}{
		{"zero amount", SubmitInput{InvoiceId: invoice.Id, UserId: s.user.Id, PaymentMethod: "cash"}, ErrInvalidAmount},
		{"blank method", SubmitInput{InvoiceId: invoice.Id, UserId: s.user.Id, Amount: testutil.Money("1"), PaymentMethod: "  "}, ErrMissingMethod},
		{"unknown invoice", SubmitInput{InvoiceId: uuid.New(), UserId: s.user.Id, Amount: testutil.Money("1"), PaymentMethod: "cash"}, ErrInvoiceNotFound},
		{"other user", SubmitInput{InvoiceId: invoice.Id, UserId: uuid.New(), Amount: testutil.Money("1"), PaymentMethod: "cash"}, ErrNotInvoiceOwner},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			_, err := s.reconciler.Submit(s.ctx, tc.in)
			s.ErrorIs(err, tc.want)
		})
	}

	current, _ := s.store.Invoice(invoice.Id)
	current.PaymentStatus = entity.InvoicePaymentStatusCancelled
	s.store.SeedInvoice(current)
	_, err = s.reconciler.Submit(s.ctx, SubmitInput{InvoiceId: invoice.Id, UserId: s.user.Id, Amount: testutil.Money("1"), PaymentMethod: "cash"})
	s.ErrorIs(err, ErrInvoiceNotPayable)
}
