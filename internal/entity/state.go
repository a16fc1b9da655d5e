package entity

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

var ErrInvalidTransition = errors.New("invalid state transition")

// TransitionError names the rejected move. It matches ErrInvalidTransition
// via errors.Is.
type TransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: cannot move from %q to %q", e.Entity, e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

var paymentRecordTransitions = map[PaymentRecordStatus][]PaymentRecordStatus{
	PaymentRecordStatusPending: {PaymentRecordStatusConfirmed, PaymentRecordStatusRejected},
}

var invoiceTransitions = map[InvoicePaymentStatus][]InvoicePaymentStatus{
	InvoicePaymentStatusUnpaid:  {InvoicePaymentStatusPaid, InvoicePaymentStatusOverdue, InvoicePaymentStatusCancelled},
	InvoicePaymentStatusOverdue: {InvoicePaymentStatusPaid, InvoicePaymentStatusCancelled},
}

var subscriptionTransitions = map[SubscriptionStatus][]SubscriptionStatus{
	SubscriptionStatusPending: {SubscriptionStatusActive, SubscriptionStatusCancelled},
	SubscriptionStatusActive:  {SubscriptionStatusCancelled},
}

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed: {BookingStatusCancelled},
}

var bookingPaymentTransitions = map[BookingPaymentStatus][]BookingPaymentStatus{
	BookingPaymentStatusUnpaid: {BookingPaymentStatusPaid},
}

var sessionTransitions = map[SessionStatus][]SessionStatus{
	SessionStatusScheduled:   {SessionStatusCompleted, SessionStatusCancelled, SessionStatusRescheduled},
	SessionStatusRescheduled: {SessionStatusCompleted, SessionStatusCancelled},
}

func checkTransition[S ~string](name string, table map[S][]S, from, to S) error {
	if !lo.Contains(table[from], to) {
		return &TransitionError{Entity: name, From: string(from), To: string(to)}
	}
	return nil
}

func CanTransitionInvoice(from, to InvoicePaymentStatus) bool {
	return checkTransition("invoice", invoiceTransitions, from, to) == nil
}

func CanTransitionSubscription(from, to SubscriptionStatus) bool {
	return checkTransition("subscription", subscriptionTransitions, from, to) == nil
}

// TransitionPaymentRecord moves a payment record to its final state and
// stamps the reviewing admin.
func TransitionPaymentRecord(p *PaymentRecord, to PaymentRecordStatus, adminId *uuid.UUID, at time.Time) error {
	if err := checkTransition("payment_record", paymentRecordTransitions, p.Status, to); err != nil {
		return err
	}
	p.Status = to
	p.ConfirmedBy = adminId
	p.ConfirmedAt = &at
	return nil
}

func TransitionInvoice(i *Invoice, to InvoicePaymentStatus) error {
	if err := checkTransition("invoice", invoiceTransitions, i.PaymentStatus, to); err != nil {
		return err
	}
	i.PaymentStatus = to
	return nil
}

func TransitionSubscription(s *Subscription, to SubscriptionStatus) error {
	if err := checkTransition("subscription", subscriptionTransitions, s.Status, to); err != nil {
		return err
	}
	s.Status = to
	return nil
}

func TransitionBooking(b *Booking, to BookingStatus) error {
	if err := checkTransition("booking", bookingTransitions, b.Status, to); err != nil {
		return err
	}
	b.Status = to
	return nil
}

func TransitionBookingPayment(b *Booking, to BookingPaymentStatus) error {
	if err := checkTransition("booking_payment", bookingPaymentTransitions, b.PaymentStatus, to); err != nil {
		return err
	}
	b.PaymentStatus = to
	return nil
}

func TransitionSession(s *Session, to SessionStatus) error {
	if err := checkTransition("session", sessionTransitions, s.Status, to); err != nil {
		return err
	}
	s.Status = to
	return nil
}
