package events

import (
	"context"
	"errors"
	"testing"

	"github.com/SpacksD/dulmar1-sub001/internal/entity"
	"github.com/SpacksD/dulmar1-sub001/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureSink struct {
	events []Event
	err    error
}

func (s *captureSink) Publish(ctx context.Context, event Event) error {
	s.events = append(s.events, event)
	return s.err
}

func TestNatsPublisher_NilSinkIsNoop(t *testing.T) {
	p := NewNatsPublisher(nil, logger.NewNop())
	assert.NotPanics(t, func() {
		p.PublishSessionsGenerated(context.Background(), uuid.New(), 3)
	})
}

func TestNatsPublisher_PaymentConfirmed(t *testing.T) {
	sink := &captureSink{}
	p := NewNatsPublisher(sink, logger.NewNop())

	subId := uuid.New()
	payment := &entity.PaymentRecord{Id: uuid.New(), UserId: uuid.New()}
	invoice := &entity.Invoice{Id: uuid.New(), InvoiceNumber: "INV-202503-abcdef12", SubscriptionId: &subId, PaidAmount: decimal.RequireFromString("450")}

	p.PublishPaymentConfirmed(context.Background(), payment, invoice)

	require.Len(t, sink.events, 1)
	evt := sink.events[0]
	assert.Equal(t, TypePaymentConfirmed, evt.EventType())
	assert.Equal(t, "450.00", evt.Payload()["paid_amount"])
	assert.Equal(t, payment.Id.String(), evt.Payload()["entity_id"])
	assert.Equal(t, "payment_record", evt.Payload()["entity_type"])
	assert.False(t, evt.Timestamp().IsZero())
}

func TestNatsPublisher_SinkErrorIsSwallowed(t *testing.T) {
	sink := &captureSink{err: errors.New("nats down")}
	p := NewNatsPublisher(sink, logger.NewNop())

	assert.NotPanics(t, func() {
		p.PublishInvoiceGenerated(context.Background(), &entity.Invoice{Id: uuid.New()})
	})
	assert.Len(t, sink.events, 1)
}
