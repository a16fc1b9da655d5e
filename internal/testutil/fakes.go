package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/SpacksD/dulmar1-sub001/internal/entity"
	"github.com/SpacksD/dulmar1-sub001/internal/pkg/mailer"
	"github.com/SpacksD/dulmar1-sub001/internal/pkg/pdf"
	"github.com/SpacksD/dulmar1-sub001/pkg/events"

	"github.com/google/uuid"
)

type SentEmail struct {
	To          string
	Subject     string
	Attachments []mailer.Attachment
}

// Mailer records outgoing email. Recipients listed in FailFor get the
// mapped error instead.
type Mailer struct {
	mu      sync.Mutex
	Sent    []SentEmail
	FailFor map[string]error
}

func NewMailer() *Mailer {
	return &Mailer{FailFor: map[string]error{}}
}

func (m *Mailer) Send(toEmail, subject, htmlBody string, attachments ...mailer.Attachment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.FailFor[toEmail]; ok {
		return err
	}
	m.Sent = append(m.Sent, SentEmail{To: toEmail, Subject: subject, Attachments: attachments})
	return nil
}

func (m *Mailer) SendInvoice(toEmail string, data mailer.InvoiceEmail, pdf []byte) error {
	return m.Send(toEmail, "Invoice "+data.InvoiceNumber, "", mailer.Attachment{Filename: data.InvoiceNumber + ".pdf", Content: pdf})
}

func (m *Mailer) SendItinerary(toEmail string, data mailer.ItineraryEmail) error {
	return m.Send(toEmail, fmt.Sprintf("Itinerary %s (%d sessions)", data.ChildName, len(data.Sessions)), "")
}

func (m *Mailer) SentTo(toEmail string) []SentEmail {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []SentEmail
	for _, e := range m.Sent {
		if e.To == toEmail {
			out = append(out, e)
		}
	}
	return out
}

// Renderer returns a fixed PDF body. Err fails every call, FailFor only
// the listed invoice numbers.
type Renderer struct {
	mu       sync.Mutex
	Rendered []string
	FailFor  map[string]error
	Err      error
}

func NewRenderer() *Renderer {
	return &Renderer{FailFor: map[string]error{}}
}

func (r *Renderer) Render(doc *pdf.InvoiceDocument) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	if err, ok := r.FailFor[doc.InvoiceNumber]; ok {
		return nil, err
	}
	r.Rendered = append(r.Rendered, doc.InvoiceNumber)
	return []byte("%PDF-1.3 " + doc.InvoiceNumber), nil
}

// Publisher records event types in publish order.
type Publisher struct {
	mu     sync.Mutex
	Events []string
}

func (p *Publisher) record(eventType string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, eventType)
}

func (p *Publisher) Count(eventType string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.Events {
		if e == eventType {
			n++
		}
	}
	return n
}

func (p *Publisher) PublishBookingCreated(ctx context.Context, booking *entity.Booking) {
	p.record(events.TypeBookingCreated)
}

func (p *Publisher) PublishBookingWithdrawn(ctx context.Context, booking *entity.Booking) {
	p.record(events.TypeBookingWithdrawn)
}

func (p *Publisher) PublishInvoiceGenerated(ctx context.Context, invoice *entity.Invoice) {
	p.record(events.TypeInvoiceGenerated)
}

func (p *Publisher) PublishInvoiceOverdue(ctx context.Context, invoice *entity.Invoice) {
	p.record(events.TypeInvoiceOverdue)
}

func (p *Publisher) PublishPaymentSubmitted(ctx context.Context, payment *entity.PaymentRecord) {
	p.record(events.TypePaymentSubmitted)
}

func (p *Publisher) PublishPaymentConfirmed(ctx context.Context, payment *entity.PaymentRecord, invoice *entity.Invoice) {
	p.record(events.TypePaymentConfirmed)
}

func (p *Publisher) PublishPaymentRejected(ctx context.Context, payment *entity.PaymentRecord) {
	p.record(events.TypePaymentRejected)
}

func (p *Publisher) PublishSubscriptionActivated(ctx context.Context, subscription *entity.Subscription) {
	p.record(events.TypeSubscriptionActivated)
}

func (p *Publisher) PublishSubscriptionCancelled(ctx context.Context, subscription *entity.Subscription, sessionsCancelled int) {
	p.record(events.TypeSubscriptionCancelled)
}

func (p *Publisher) PublishSessionsGenerated(ctx context.Context, subscriptionId uuid.UUID, created int) {
	p.record(events.TypeSessionsGenerated)
}

// Notifier records itinerary requests.
type Notifier struct {
	mu        sync.Mutex
	Requested []uuid.UUID
	Err       error
}

func (n *Notifier) RequestItinerary(ctx context.Context, subscriptionId uuid.UUID) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.Err != nil {
		return n.Err
	}
	n.Requested = append(n.Requested, subscriptionId)
	return nil
}
