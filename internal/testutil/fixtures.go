package testutil

import (
	"sort"
	"time"

	"github.com/SpacksD/dulmar1-sub001/internal/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func Money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func (s *Store) SeedUser(email, fullName string) *entity.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := entity.User{Id: uuid.New(), Email: email, FullName: fullName, Role: entity.UserRoleUser}
	stamp(&u.CreatedAt, &u.UpdatedAt)
	s.users[u.Id] = u
	return &u
}

func (s *Store) SeedService(name string, basePrice *decimal.Decimal, durationMinutes int) *entity.Service {
	s.mu.Lock()
	defer s.mu.Unlock()
	svc := entity.Service{
		Id:              uuid.New(),
		Name:            name,
		Category:        entity.ServiceCategoryStimulation,
		BasePrice:       basePrice,
		DurationMinutes: durationMinutes,
		Capacity:        10,
		IsActive:        true,
	}
	stamp(&svc.CreatedAt, &svc.UpdatedAt)
	s.services[svc.Id] = cloneService(svc)
	return &svc
}

func (s *Store) SeedTimeSlot(startTime string) *entity.TimeSlot {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot := entity.TimeSlot{Id: uuid.New(), Label: startTime, StartTime: startTime, IsActive: true}
	stamp(&slot.CreatedAt, nil)
	s.timeSlots[slot.Id] = slot
	return &slot
}

func (s *Store) SeedPromotion(p entity.Promotion) *entity.Promotion {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.Id == uuid.Nil {
		p.Id = uuid.New()
	}
	stamp(&p.CreatedAt, &p.UpdatedAt)
	s.promotions[p.Id] = clonePromotion(p)
	return &p
}

func (s *Store) SeedSubscription(sub entity.Subscription) *entity.Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sub.Id == uuid.Nil {
		sub.Id = uuid.New()
	}
	stamp(&sub.CreatedAt, &sub.UpdatedAt)
	s.subscriptions[sub.Id] = cloneSubscription(sub)
	return &sub
}

func (s *Store) SeedSession(session entity.Session) *entity.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session.Id == uuid.Nil {
		session.Id = uuid.New()
	}
	stamp(&session.CreatedAt, &session.UpdatedAt)
	s.sessions[session.Id] = session
	return &session
}

// SeedInvoice stores the invoice and its Items.
func (s *Store) SeedInvoice(inv entity.Invoice) *entity.Invoice {
	s.mu.Lock()
	defer s.mu.Unlock()
	if inv.Id == uuid.Nil {
		inv.Id = uuid.New()
	}
	if inv.InvoiceNumber == "" {
		inv.InvoiceNumber = "INV-SEED-" + inv.Id.String()[:8]
	}
	stamp(&inv.CreatedAt, &inv.UpdatedAt)
	for i := range inv.Items {
		item := inv.Items[i]
		if item.Id == uuid.Nil {
			item.Id = uuid.New()
		}
		item.InvoiceId = inv.Id
		stamp(&item.CreatedAt, nil)
		s.invoiceItems[item.Id] = item
		inv.Items[i] = item
	}
	stored := inv
	stored.Items = nil
	s.invoices[inv.Id] = stored
	return &inv
}

func (s *Store) SeedPayment(p entity.PaymentRecord) *entity.PaymentRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.Id == uuid.Nil {
		p.Id = uuid.New()
	}
	stamp(&p.CreatedAt, &p.UpdatedAt)
	s.payments[p.Id] = p
	return &p
}

func (s *Store) SeedBooking(b entity.Booking) *entity.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.Id == uuid.Nil {
		b.Id = uuid.New()
	}
	stamp(&b.CreatedAt, &b.UpdatedAt)
	s.bookings[b.Id] = b
	return &b
}

// Readers return copies of the current committed-or-pending state.

func (s *Store) Subscription(id uuid.UUID) (entity.Subscription, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.subscriptions[id]
	return cloneSubscription(sub), ok
}

func (s *Store) Promotion(id uuid.UUID) (entity.Promotion, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.promotions[id]
	return clonePromotion(p), ok
}

func (s *Store) Invoice(id uuid.UUID) (entity.Invoice, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invoices[id]
	return inv, ok
}

func (s *Store) Payment(id uuid.UUID) (entity.PaymentRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[id]
	return p, ok
}

func (s *Store) Booking(id uuid.UUID) (entity.Booking, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	return b, ok
}

// Invoices returns every invoice ordered by creation.
func (s *Store) Invoices() []entity.Invoice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return rows(s.invoices, func(i entity.Invoice) time.Time { return i.CreatedAt }, func(i entity.Invoice) uuid.UUID { return i.Id })
}

func (s *Store) InvoiceItems(invoiceId uuid.UUID) []entity.InvoiceItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return (&invoiceRepository{store: s}).itemsOf(invoiceId)
}

func (s *Store) Payments() []entity.PaymentRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return rows(s.payments, func(p entity.PaymentRecord) time.Time { return p.CreatedAt }, func(p entity.PaymentRecord) uuid.UUID { return p.Id })
}

// Sessions returns the subscription's sessions ordered by session number.
func (s *Store) Sessions(subscriptionId uuid.UUID) []entity.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []entity.Session{}
	for _, session := range s.sessions {
		if session.SubscriptionId == subscriptionId {
			out = append(out, session)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SessionNumber < out[j].SessionNumber })
	return out
}
