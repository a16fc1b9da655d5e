// Package payment handles proof-of-payment submission and the admin
// confirm/reject decision, including the cascade a confirmation triggers.
package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/SpacksD/dulmar1-sub001/internal/entity"
	"github.com/SpacksD/dulmar1-sub001/internal/pkg/clock"
	"github.com/SpacksD/dulmar1-sub001/internal/pkg/logger"
	"github.com/SpacksD/dulmar1-sub001/internal/repository/contract"
	"github.com/SpacksD/dulmar1-sub001/internal/repository/specification"
	"github.com/SpacksD/dulmar1-sub001/internal/repository/unitofwork"
	"github.com/SpacksD/dulmar1-sub001/pkg/events"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrPaymentNotFound         = errors.New("payment record not found")
	ErrInvoiceNotFound         = errors.New("invoice not found")
	ErrSubscriptionNotFound    = errors.New("subscription not found")
	ErrPaymentAlreadyProcessed = errors.New("payment has already been processed")
	ErrPaymentAlreadyPending   = errors.New("invoice already has a pending payment")
	ErrPaymentNotConfirmed     = errors.New("payment is not confirmed")
	ErrInvoiceNotPayable       = errors.New("invoice cannot receive payments")
	ErrNotInvoiceOwner         = errors.New("invoice belongs to another user")
	ErrInvalidDecision         = errors.New("decision must be confirm or reject")
	ErrInvalidAmount           = errors.New("payment amount must be positive")
	ErrMissingMethod           = errors.New("payment method is required")
)

type Decision string

const (
	DecisionConfirm Decision = "confirm"
	DecisionReject  Decision = "reject"
)

// ScheduleExpander is the part of schedule.Expander the cascade needs.
type ScheduleExpander interface {
	Expand(ctx context.Context, subscriptionId uuid.UUID) (int, error)
}

type Step string

const (
	StepPaymentConfirmed      Step = "payment_confirmed"
	StepPaymentRejected       Step = "payment_rejected"
	StepSubscriptionActivated Step = "subscription_activated"
	StepSessionsGenerated     Step = "sessions_generated"
	StepBookingsConfirmed     Step = "bookings_confirmed"
)

type StepStatus string

const (
	StepDone    StepStatus = "done"
	StepSkipped StepStatus = "skipped"
	StepFailed  StepStatus = "failed"
)

type StepResult struct {
	Step   Step       `json:"step"`
	Status StepStatus `json:"status"`
	Detail string     `json:"detail,omitempty"`
}

// Outcome reports every cascade step so a partial failure is visible and
// can be retried with ResumeCascade.
type Outcome struct {
	PaymentId             uuid.UUID                  `json:"payment_id"`
	Status                entity.PaymentRecordStatus `json:"status"`
	InvoiceId             uuid.UUID                  `json:"invoice_id"`
	SubscriptionId        *uuid.UUID                 `json:"subscription_id,omitempty"`
	SubscriptionActivated bool                       `json:"subscription_activated"`
	SessionsCreated       int                        `json:"sessions_created"`
	BookingsConfirmed     int                        `json:"bookings_confirmed"`
	Steps                 []StepResult               `json:"steps"`
	Warnings              []string                   `json:"warnings"`
}

// Complete reports whether no step failed.
func (o *Outcome) Complete() bool {
	for _, s := range o.Steps {
		if s.Status == StepFailed {
			return false
		}
	}
	return true
}

func (o *Outcome) record(step Step, status StepStatus, detail string) {
	o.Steps = append(o.Steps, StepResult{Step: step, Status: status, Detail: detail})
	if status == StepFailed {
		o.Warnings = append(o.Warnings, fmt.Sprintf("%s: %s", step, detail))
	}
}

type SubmitInput struct {
	InvoiceId        uuid.UUID
	UserId           uuid.UUID
	Amount           decimal.Decimal
	PaymentMethod    string
	PaymentReference string
	ProofPath        string
}

type Reconciler struct {
	uowFactory unitofwork.RepositoryFactory
	clock      clock.Clock
	logger     logger.ILogger
	publisher  events.Publisher
	expander   ScheduleExpander
}

func NewReconciler(
	uowFactory unitofwork.RepositoryFactory,
	clk clock.Clock,
	logger logger.ILogger,
	publisher events.Publisher,
	expander ScheduleExpander,
) *Reconciler {
	return &Reconciler{
		uowFactory: uowFactory,
		clock:      clk,
		logger:     logger,
		publisher:  publisher,
		expander:   expander,
	}
}

// Submit records a proof of payment. An invoice carries at most one pending
// record; the check runs under the invoice row lock and the partial unique
// index backs it.
func (r *Reconciler) Submit(ctx context.Context, in SubmitInput) (*entity.PaymentRecord, error) {
	if !in.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if strings.TrimSpace(in.PaymentMethod) == "" {
		return nil, ErrMissingMethod
	}

	uow := r.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	invoice, err := uow.InvoiceRepository().FindOne(ctx, specification.ByID{ID: in.InvoiceId}, specification.ForUpdate{})
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, ErrInvoiceNotFound
	}
	if invoice.UserId != in.UserId {
		return nil, ErrNotInvoiceOwner
	}
	if invoice.PaymentStatus == entity.InvoicePaymentStatusCancelled {
		return nil, ErrInvoiceNotPayable
	}

	pending, err := uow.PaymentRecordRepository().FindOne(ctx,
		specification.ByInvoiceID{InvoiceID: invoice.Id},
		specification.ByStatus{Status: string(entity.PaymentRecordStatusPending)},
	)
	if err != nil {
		return nil, err
	}
	if pending != nil {
		return nil, ErrPaymentAlreadyPending
	}

	record := &entity.PaymentRecord{
		Id:               uuid.New(),
		InvoiceId:        invoice.Id,
		UserId:           in.UserId,
		Amount:           in.Amount.Round(2),
		PaymentMethod:    strings.TrimSpace(in.PaymentMethod),
		PaymentReference: strings.TrimSpace(in.PaymentReference),
		ProofPath:        in.ProofPath,
		Status:           entity.PaymentRecordStatusPending,
	}
	if err := uow.PaymentRecordRepository().Create(ctx, record); err != nil {
		if errors.Is(err, contract.ErrDuplicate) {
			return nil, ErrPaymentAlreadyPending
		}
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		if errors.Is(err, contract.ErrDuplicate) {
			return nil, ErrPaymentAlreadyPending
		}
		return nil, err
	}

	r.logger.Info("PAYMENT", "Payment proof submitted", map[string]interface{}{
		"paymentId": record.Id.String(),
		"invoiceId": invoice.Id.String(),
		"amount":    record.Amount.StringFixed(2),
	})
	r.publisher.PublishPaymentSubmitted(ctx, record)

	return record, nil
}

// Reconcile applies the admin decision to a pending payment. A payment
// that is no longer pending fails with ErrPaymentAlreadyProcessed and
// nothing is written.
func (r *Reconciler) Reconcile(ctx context.Context, paymentId uuid.UUID, decision Decision, adminNotes string, adminId uuid.UUID) (*Outcome, error) {
	switch decision {
	case DecisionConfirm:
		return r.confirm(ctx, paymentId, adminNotes, adminId)
	case DecisionReject:
		return r.reject(ctx, paymentId, adminNotes, adminId)
	default:
		return nil, ErrInvalidDecision
	}
}

func (r *Reconciler) confirm(ctx context.Context, paymentId uuid.UUID, adminNotes string, adminId uuid.UUID) (*Outcome, error) {
	uow := r.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	record, err := uow.PaymentRecordRepository().FindOne(ctx, specification.ByID{ID: paymentId}, specification.ForUpdate{})
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrPaymentNotFound
	}
	if record.Status != entity.PaymentRecordStatusPending {
		return nil, ErrPaymentAlreadyProcessed
	}

	invoice, err := uow.InvoiceRepository().FindOne(ctx, specification.ByID{ID: record.InvoiceId}, specification.ForUpdate{})
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, ErrInvoiceNotFound
	}

	now := r.clock.Now()
	if err := entity.TransitionPaymentRecord(record, entity.PaymentRecordStatusConfirmed, &adminId, now); err != nil {
		return nil, err
	}
	record.AdminNotes = adminNotes

	if invoice.PaymentStatus != entity.InvoicePaymentStatusPaid {
		if err := entity.TransitionInvoice(invoice, entity.InvoicePaymentStatusPaid); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvoiceNotPayable, err)
		}
		invoice.PaidAmount = invoice.TotalAmount
		invoice.PaidAt = &now
		method := record.PaymentMethod
		invoice.PaymentMethod = &method
		if record.PaymentReference != "" {
			reference := record.PaymentReference
			invoice.PaymentReference = &reference
		}
		if err := uow.InvoiceRepository().Update(ctx, invoice); err != nil {
			return nil, err
		}
	}

	if err := uow.PaymentRecordRepository().Update(ctx, record); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	r.logger.Info("PAYMENT", "Payment confirmed", map[string]interface{}{
		"paymentId": record.Id.String(),
		"invoiceId": invoice.Id.String(),
		"adminId":   adminId.String(),
	})
	r.publisher.PublishPaymentConfirmed(ctx, record, invoice)

	outcome := &Outcome{
		PaymentId:      record.Id,
		Status:         record.Status,
		InvoiceId:      invoice.Id,
		SubscriptionId: invoice.SubscriptionId,
		Warnings:       []string{},
	}
	outcome.record(StepPaymentConfirmed, StepDone, "")
	if !record.Amount.Equal(invoice.TotalAmount.Round(2)) {
		outcome.Warnings = append(outcome.Warnings, fmt.Sprintf("submitted amount %s differs from invoice total %s",
			record.Amount.StringFixed(2), invoice.TotalAmount.StringFixed(2)))
		r.logger.Warn("PAYMENT", "Confirmed amount differs from invoice total", map[string]interface{}{
			"paymentId": record.Id.String(),
			"invoiceId": invoice.Id.String(),
			"amount":    record.Amount.StringFixed(2),
			"total":     invoice.TotalAmount.StringFixed(2),
		})
	}

	r.cascade(ctx, invoice, outcome)
	return outcome, nil
}

func (r *Reconciler) reject(ctx context.Context, paymentId uuid.UUID, adminNotes string, adminId uuid.UUID) (*Outcome, error) {
	uow := r.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	record, err := uow.PaymentRecordRepository().FindOne(ctx, specification.ByID{ID: paymentId}, specification.ForUpdate{})
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrPaymentNotFound
	}
	if record.Status != entity.PaymentRecordStatusPending {
		return nil, ErrPaymentAlreadyProcessed
	}

	if err := entity.TransitionPaymentRecord(record, entity.PaymentRecordStatusRejected, &adminId, r.clock.Now()); err != nil {
		return nil, err
	}
	record.AdminNotes = adminNotes
	if err := uow.PaymentRecordRepository().Update(ctx, record); err != nil {
		return nil, err
	}

	invoice, err := uow.InvoiceRepository().FindOne(ctx, specification.ByID{ID: record.InvoiceId}, specification.ForUpdate{})
	if err != nil {
		return nil, err
	}
	if invoice != nil {
		invoice.AdminNotes = adminNotes
		if err := uow.InvoiceRepository().Update(ctx, invoice); err != nil {
			return nil, err
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	r.logger.Info("PAYMENT", "Payment rejected", map[string]interface{}{
		"paymentId":  record.Id.String(),
		"invoiceId":  record.InvoiceId.String(),
		"adminId":    adminId.String(),
		"adminNotes": adminNotes,
	})
	r.publisher.PublishPaymentRejected(ctx, record)

	outcome := &Outcome{
		PaymentId: record.Id,
		Status:    record.Status,
		InvoiceId: record.InvoiceId,
		Warnings:  []string{},
	}
	outcome.record(StepPaymentRejected, StepDone, "")
	return outcome, nil
}

// ResumeCascade re-runs the post-confirmation steps of a confirmed payment.
// Every step is idempotent, so running it after a complete cascade changes
// nothing.
func (r *Reconciler) ResumeCascade(ctx context.Context, paymentId uuid.UUID) (*Outcome, error) {
	uow := r.uowFactory.NewUnitOfWork(ctx)

	record, err := uow.PaymentRecordRepository().FindOne(ctx, specification.ByID{ID: paymentId})
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrPaymentNotFound
	}
	if record.Status != entity.PaymentRecordStatusConfirmed {
		return nil, ErrPaymentNotConfirmed
	}

	invoice, err := uow.InvoiceRepository().FindOne(ctx, specification.ByID{ID: record.InvoiceId})
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, ErrInvoiceNotFound
	}

	outcome := &Outcome{
		PaymentId:      record.Id,
		Status:         record.Status,
		InvoiceId:      invoice.Id,
		SubscriptionId: invoice.SubscriptionId,
		Warnings:       []string{},
	}
	outcome.record(StepPaymentConfirmed, StepSkipped, "already confirmed")

	r.cascade(ctx, invoice, outcome)
	return outcome, nil
}

// cascade runs steps 2 to 4. A failed activation or a cancelled
// subscription stops the cascade; session generation and booking
// confirmation failures are recorded and the remaining steps still run.
func (r *Reconciler) cascade(ctx context.Context, invoice *entity.Invoice, outcome *Outcome) {
	if invoice.SubscriptionId == nil {
		outcome.record(StepSubscriptionActivated, StepSkipped, "invoice has no subscription")
		outcome.record(StepSessionsGenerated, StepSkipped, "invoice has no subscription")
		outcome.record(StepBookingsConfirmed, StepSkipped, "invoice has no subscription")
		return
	}
	subId := *invoice.SubscriptionId

	sub, activated, err := r.activateSubscription(ctx, subId)
	switch {
	case err != nil:
		outcome.record(StepSubscriptionActivated, StepFailed, err.Error())
		outcome.record(StepSessionsGenerated, StepSkipped, "subscription not activated")
		outcome.record(StepBookingsConfirmed, StepSkipped, "subscription not activated")
		r.logger.Error("PAYMENT", "Subscription activation failed", map[string]interface{}{
			"subscriptionId": subId.String(),
			"error":          err.Error(),
		})
		return
	case sub.Status == entity.SubscriptionStatusCancelled:
		outcome.record(StepSubscriptionActivated, StepSkipped, "subscription is cancelled")
		outcome.record(StepSessionsGenerated, StepSkipped, "subscription is cancelled")
		outcome.record(StepBookingsConfirmed, StepSkipped, "subscription is cancelled")
		return
	case activated:
		outcome.SubscriptionActivated = true
		outcome.record(StepSubscriptionActivated, StepDone, "")
		r.publisher.PublishSubscriptionActivated(ctx, sub)
	default:
		outcome.record(StepSubscriptionActivated, StepSkipped, "already active")
	}

	created, err := r.expander.Expand(ctx, subId)
	if err != nil {
		outcome.record(StepSessionsGenerated, StepFailed, err.Error())
		r.logger.Warn("PAYMENT", "Session generation after confirmation failed", map[string]interface{}{
			"subscriptionId": subId.String(),
			"error":          err.Error(),
		})
	} else {
		outcome.SessionsCreated = created
		outcome.record(StepSessionsGenerated, StepDone, fmt.Sprintf("%d sessions created", created))
	}

	confirmed, err := r.confirmBookings(ctx, subId)
	if err != nil {
		outcome.record(StepBookingsConfirmed, StepFailed, err.Error())
		r.logger.Warn("PAYMENT", "Booking confirmation failed", map[string]interface{}{
			"subscriptionId": subId.String(),
			"error":          err.Error(),
		})
		return
	}
	outcome.BookingsConfirmed = confirmed
	outcome.record(StepBookingsConfirmed, StepDone, fmt.Sprintf("%d bookings confirmed", confirmed))
}

// activateSubscription moves a pending subscription to active in its own
// transaction. An active or cancelled subscription is returned unchanged.
func (r *Reconciler) activateSubscription(ctx context.Context, subscriptionId uuid.UUID) (*entity.Subscription, bool, error) {
	uow := r.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, false, err
	}
	defer uow.Rollback()

	sub, err := uow.SubscriptionRepository().FindOne(ctx, specification.ByID{ID: subscriptionId}, specification.ForUpdate{})
	if err != nil {
		return nil, false, err
	}
	if sub == nil {
		return nil, false, ErrSubscriptionNotFound
	}
	if !entity.CanTransitionSubscription(sub.Status, entity.SubscriptionStatusActive) {
		return sub, false, nil
	}

	if err := entity.TransitionSubscription(sub, entity.SubscriptionStatusActive); err != nil {
		return nil, false, err
	}
	if err := uow.SubscriptionRepository().Update(ctx, sub); err != nil {
		return nil, false, err
	}
	if err := uow.Commit(); err != nil {
		return nil, false, err
	}

	r.logger.Info("PAYMENT", "Subscription activated", map[string]interface{}{
		"subscriptionId": sub.Id.String(),
	})
	return sub, true, nil
}

func (r *Reconciler) confirmBookings(ctx context.Context, subscriptionId uuid.UUID) (int, error) {
	uow := r.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}
	defer uow.Rollback()

	bookings, err := uow.BookingRepository().FindAll(ctx,
		specification.BySubscriptionID{SubscriptionID: subscriptionId},
		specification.ByStatus{Status: string(entity.BookingStatusPending)},
	)
	if err != nil {
		return 0, err
	}

	for _, b := range bookings {
		if err := entity.TransitionBooking(b, entity.BookingStatusConfirmed); err != nil {
			return 0, err
		}
		if b.PaymentStatus != entity.BookingPaymentStatusPaid {
			if err := entity.TransitionBookingPayment(b, entity.BookingPaymentStatusPaid); err != nil {
				return 0, err
			}
		}
		if err := uow.BookingRepository().Update(ctx, b); err != nil {
			return 0, err
		}
	}

	if err := uow.Commit(); err != nil {
		return 0, err
	}
	return len(bookings), nil
}
