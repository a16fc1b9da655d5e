package events

import (
	"context"
	"time"

	"github.com/SpacksD/dulmar1-sub001/internal/entity"
	"github.com/SpacksD/dulmar1-sub001/internal/pkg/logger"

	"github.com/google/uuid"
)

// Sink is the transport events are handed to. *nats.Publisher satisfies it.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}

// Publisher emits the domain events of the billing and scheduling core.
// Publishing happens after commit and never fails the caller.
type Publisher interface {
	PublishBookingCreated(ctx context.Context, booking *entity.Booking)
	PublishBookingWithdrawn(ctx context.Context, booking *entity.Booking)
	PublishInvoiceGenerated(ctx context.Context, invoice *entity.Invoice)
	PublishInvoiceOverdue(ctx context.Context, invoice *entity.Invoice)
	PublishPaymentSubmitted(ctx context.Context, payment *entity.PaymentRecord)
	PublishPaymentConfirmed(ctx context.Context, payment *entity.PaymentRecord, invoice *entity.Invoice)
	PublishPaymentRejected(ctx context.Context, payment *entity.PaymentRecord)
	PublishSubscriptionActivated(ctx context.Context, subscription *entity.Subscription)
	PublishSubscriptionCancelled(ctx context.Context, subscription *entity.Subscription, sessionsCancelled int)
	PublishSessionsGenerated(ctx context.Context, subscriptionId uuid.UUID, created int)
}

// NatsPublisher implements Publisher over a Sink. A nil sink (NATS
// unavailable at startup) turns every call into a no-op.
type NatsPublisher struct {
	sink   Sink
	logger logger.ILogger
}

func NewNatsPublisher(sink Sink, logger logger.ILogger) *NatsPublisher {
	return &NatsPublisher{
		sink:   sink,
		logger: logger,
	}
}

func (p *NatsPublisher) emit(ctx context.Context, eventType, entityType string, entityId uuid.UUID, data map[string]interface{}) {
	if p.sink == nil {
		return
	}

	now := time.Now()
	data["entity_type"] = entityType
	data["entity_id"] = entityId.String()
	data["occurred_at"] = now

	evt := BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: now,
	}

	if err := p.sink.Publish(ctx, evt); err != nil {
		p.logger.Error("EVENTS", "Failed to publish "+eventType+" event", map[string]interface{}{"error": err.Error()})
	}
}

func (p *NatsPublisher) PublishBookingCreated(ctx context.Context, booking *entity.Booking) {
	p.emit(ctx, TypeBookingCreated, "booking", booking.Id, map[string]interface{}{
		"booking_id":      booking.Id,
		"user_id":         booking.UserId,
		"service_id":      booking.ServiceId,
		"subscription_id": booking.SubscriptionId,
		"promotion_id":    booking.PromotionId,
		"final_price":     booking.FinalPrice.StringFixed(2),
	})
}

func (p *NatsPublisher) PublishBookingWithdrawn(ctx context.Context, booking *entity.Booking) {
	p.emit(ctx, TypeBookingWithdrawn, "booking", booking.Id, map[string]interface{}{
		"booking_id":   booking.Id,
		"user_id":      booking.UserId,
		"promotion_id": booking.PromotionId,
	})
}

func (p *NatsPublisher) PublishInvoiceGenerated(ctx context.Context, invoice *entity.Invoice) {
	p.emit(ctx, TypeInvoiceGenerated, "invoice", invoice.Id, map[string]interface{}{
		"invoice_id":      invoice.Id,
		"invoice_number":  invoice.InvoiceNumber,
		"invoice_type":    invoice.InvoiceType,
		"subscription_id": invoice.SubscriptionId,
		"user_id":         invoice.UserId,
		"billing_month":   invoice.BillingMonth,
		"billing_year":    invoice.BillingYear,
		"total_amount":    invoice.TotalAmount.StringFixed(2),
	})
}

func (p *NatsPublisher) PublishInvoiceOverdue(ctx context.Context, invoice *entity.Invoice) {
	p.emit(ctx, TypeInvoiceOverdue, "invoice", invoice.Id, map[string]interface{}{
		"invoice_id":     invoice.Id,
		"invoice_number": invoice.InvoiceNumber,
		"user_id":        invoice.UserId,
		"due_date":       invoice.DueDate,
	})
}

func (p *NatsPublisher) PublishPaymentSubmitted(ctx context.Context, payment *entity.PaymentRecord) {
	p.emit(ctx, TypePaymentSubmitted, "payment_record", payment.Id, map[string]interface{}{
		"payment_id": payment.Id,
		"invoice_id": payment.InvoiceId,
		"user_id":    payment.UserId,
		"amount":     payment.Amount.StringFixed(2),
		"method":     payment.PaymentMethod,
	})
}

func (p *NatsPublisher) PublishPaymentConfirmed(ctx context.Context, payment *entity.PaymentRecord, invoice *entity.Invoice) {
	p.emit(ctx, TypePaymentConfirmed, "payment_record", payment.Id, map[string]interface{}{
		"payment_id":      payment.Id,
		"invoice_id":      invoice.Id,
		"invoice_number":  invoice.InvoiceNumber,
		"subscription_id": invoice.SubscriptionId,
		"user_id":         payment.UserId,
		"paid_amount":     invoice.PaidAmount.StringFixed(2),
		"confirmed_by":    payment.ConfirmedBy,
	})
}

func (p *NatsPublisher) PublishPaymentRejected(ctx context.Context, payment *entity.PaymentRecord) {
	p.emit(ctx, TypePaymentRejected, "payment_record", payment.Id, map[string]interface{}{
		"payment_id":  payment.Id,
		"invoice_id":  payment.InvoiceId,
		"user_id":     payment.UserId,
		"admin_notes": payment.AdminNotes,
	})
}

func (p *NatsPublisher) PublishSubscriptionActivated(ctx context.Context, subscription *entity.Subscription) {
	p.emit(ctx, TypeSubscriptionActivated, "subscription", subscription.Id, map[string]interface{}{
		"subscription_id": subscription.Id,
		"user_id":         subscription.UserId,
		"service_id":      subscription.ServiceId,
		"child_name":      subscription.ChildName,
	})
}

func (p *NatsPublisher) PublishSubscriptionCancelled(ctx context.Context, subscription *entity.Subscription, sessionsCancelled int) {
	p.emit(ctx, TypeSubscriptionCancelled, "subscription", subscription.Id, map[string]interface{}{
		"subscription_id":    subscription.Id,
		"user_id":            subscription.UserId,
		"sessions_cancelled": sessionsCancelled,
	})
}

func (p *NatsPublisher) PublishSessionsGenerated(ctx context.Context, subscriptionId uuid.UUID, created int) {
	p.emit(ctx, TypeSessionsGenerated, "subscription", subscriptionId, map[string]interface{}{
		"subscription_id":  subscriptionId,
		"sessions_created": created,
	})
}
