package testutil

import (
	"context"
	"sort"
	"time"

	"github.com/SpacksD/dulmar1-sub001/internal/entity"
	"github.com/SpacksD/dulmar1-sub001/internal/repository/contract"
	"github.com/SpacksD/dulmar1-sub001/internal/repository/specification"

	"github.com/google/uuid"
)

func rows[V any](m map[uuid.UUID]V, created func(V) time.Time, id func(V) uuid.UUID) []V {
	out := make([]V, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		ci, cj := created(out[i]), created(out[j])
		if !ci.Equal(cj) {
			return ci.Before(cj)
		}
		return id(out[i]).String() < id(out[j]).String()
	})
	return out
}

func stamp(created *time.Time, updated *time.Time) {
	now := time.Now()
	if created != nil && created.IsZero() {
		*created = now
	}
	if updated != nil {
		*updated = now
	}
}

// Users

type userRepository struct{ store *Store }

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.fault("UserRepository.Create", user.Id); err != nil {
		return err
	}
	for _, u := range r.store.users {
		if u.Email == user.Email {
			return contract.ErrDuplicate
		}
	}
	if user.Id == uuid.Nil {
		user.Id = uuid.New()
	}
	stamp(&user.CreatedAt, &user.UpdatedAt)
	r.store.users[user.Id] = *user
	return nil
}

func (r *userRepository) find(specs []specification.Specification) []entity.User {
	all := rows(r.store.users, func(u entity.User) time.Time { return u.CreatedAt }, func(u entity.User) uuid.UUID { return u.Id })
	return query(all, userField, specs)
}

func (r *userRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.fault("UserRepository.FindOne", uuid.Nil); err != nil {
		return nil, err
	}
	found := r.find(specs)
	if len(found) == 0 {
		return nil, nil
	}
	u := found[0]
	return &u, nil
}

func (r *userRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	found := r.find(specs)
	out := make([]*entity.User, len(found))
	for i := range found {
		out[i] = &found[i]
	}
	return out, nil
}

func (r *userRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return int64(len(r.find(specs))), nil
}

// Services and time slots

type serviceRepository struct{ store *Store }

func cloneService(s entity.Service) entity.Service {
	if s.BasePrice != nil {
		p := *s.BasePrice
		s.BasePrice = &p
	}
	return s
}

func (r *serviceRepository) Create(ctx context.Context, service *entity.Service) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.fault("ServiceRepository.Create", service.Id); err != nil {
		return err
	}
	if service.Id == uuid.Nil {
		service.Id = uuid.New()
	}
	stamp(&service.CreatedAt, &service.UpdatedAt)
	r.store.services[service.Id] = cloneService(*service)
	return nil
}

func (r *serviceRepository) Update(ctx context.Context, service *entity.Service) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.fault("ServiceRepository.Update", service.Id); err != nil {
		return err
	}
	stamp(nil, &service.UpdatedAt)
	r.store.services[service.Id] = cloneService(*service)
	return nil
}

func (r *serviceRepository) find(specs []specification.Specification) []entity.Service {
	all := rows(r.store.services, func(s entity.Service) time.Time { return s.CreatedAt }, func(s entity.Service) uuid.UUID { return s.Id })
	return query(all, serviceField, specs)
}

func (r *serviceRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Service, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.fault("ServiceRepository.FindOne", uuid.Nil); err != nil {
		return nil, err
	}
	found := r.find(specs)
	if len(found) == 0 {
		return nil, nil
	}
	s := cloneService(found[0])
	return &s, nil
}

func (r *serviceRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Service, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	found := r.find(specs)
	out := make([]*entity.Service, len(found))
	for i := range found {
		s := cloneService(found[i])
		out[i] = &s
	}
	return out, nil
}

func (r *serviceRepository) CreateTimeSlot(ctx context.Context, slot *entity.TimeSlot) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if slot.Id == uuid.Nil {
		slot.Id = uuid.New()
	}
	stamp(&slot.CreatedAt, nil)
	r.store.timeSlots[slot.Id] = *slot
	return nil
}

func (r *serviceRepository) findSlots(specs []specification.Specification) []entity.TimeSlot {
	all := rows(r.store.timeSlots, func(t entity.TimeSlot) time.Time { return t.CreatedAt }, func(t entity.TimeSlot) uuid.UUID { return t.Id })
	return query(all, timeSlotField, specs)
}

func (r *serviceRepository) FindOneTimeSlot(ctx context.Context, specs ...specification.Specification) (*entity.TimeSlot, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	found := r.findSlots(specs)
	if len(found) == 0 {
		return nil, nil
	}
	t := found[0]
	return &t, nil
}

func (r *serviceRepository) FindAllTimeSlots(ctx context.Context, specs ...specification.Specification) ([]*entity.TimeSlot, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.fault("ServiceRepository.FindAllTimeSlots", uuid.Nil); err != nil {
		return nil, err
	}
	found := r.findSlots(specs)
	out := make([]*entity.TimeSlot, len(found))
	for i := range found {
		out[i] = &found[i]
	}
	return out, nil
}

// Promotions

type promotionRepository struct{ store *Store }

func clonePromotion(p entity.Promotion) entity.Promotion {
	p.ApplicableServiceIds = append([]uuid.UUID(nil), p.ApplicableServiceIds...)
	return p
}

func (r *promotionRepository) codeTaken(p *entity.Promotion) bool {
	if p.PromoCode == nil {
		return false
	}
	for id, existing := range r.store.promotions {
		if id != p.Id && existing.PromoCode != nil && *existing.PromoCode == *p.PromoCode {
			return true
		}
	}
	return false
}

func (r *promotionRepository) Create(ctx context.Context, promotion *entity.Promotion) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.fault("PromotionRepository.Create", promotion.Id); err != nil {
		return err
	}
	if r.codeTaken(promotion) {
		return contract.ErrDuplicate
	}
	if promotion.Id == uuid.Nil {
		promotion.Id = uuid.New()
	}
	stamp(&promotion.CreatedAt, &promotion.UpdatedAt)
	r.store.promotions[promotion.Id] = clonePromotion(*promotion)
	return nil
}

// Update leaves used_count alone, it only moves through Redeem and Release.
func (r *promotionRepository) Update(ctx context.Context, promotion *entity.Promotion) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.codeTaken(promotion) {
		return contract.ErrDuplicate
	}
	stamp(nil, &promotion.UpdatedAt)
	updated := clonePromotion(*promotion)
	if existing, ok := r.store.promotions[promotion.Id]; ok {
		updated.UsedCount = existing.UsedCount
	}
	r.store.promotions[promotion.Id] = updated
	return nil
}

func (r *promotionRepository) find(specs []specification.Specification) []entity.Promotion {
	all := rows(r.store.promotions, func(p entity.Promotion) time.Time { return p.CreatedAt }, func(p entity.Promotion) uuid.UUID { return p.Id })
	return query(all, promotionField, specs)
}

func (r *promotionRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Promotion, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	found := r.find(specs)
	if len(found) == 0 {
		return nil, nil
	}
	p := clonePromotion(found[0])
	return &p, nil
}

func (r *promotionRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Promotion, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	found := r.find(specs)
	out := make([]*entity.Promotion, len(found))
	for i := range found {
		p := clonePromotion(found[i])
		out[i] = &p
	}
	return out, nil
}

func (r *promotionRepository) Redeem(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.fault("PromotionRepository.Redeem", id); err != nil {
		return err
	}
	p, ok := r.store.promotions[id]
	if !ok || !p.IsActive || p.IsExhausted() {
		return contract.ErrConditionFailed
	}
	p.UsedCount++
	r.store.promotions[id] = p
	return nil
}

func (r *promotionRepository) Release(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.store.promotions[id]
	if !ok {
		return nil
	}
	if p.UsedCount > 0 {
		p.UsedCount--
	}
	r.store.promotions[id] = p
	return nil
}

// Subscriptions

type subscriptionRepository struct{ store *Store }

func cloneSubscription(s entity.Subscription) entity.Subscription {
	if s.WeeklySchedule != nil {
		schedule := make(entity.WeeklySchedule, len(s.WeeklySchedule))
		for day, slot := range s.WeeklySchedule {
			if slot != nil {
				id := *slot
				slot = &id
			}
			schedule[day] = slot
		}
		s.WeeklySchedule = schedule
	}
	return s
}

func (r *subscriptionRepository) Create(ctx context.Context, subscription *entity.Subscription) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.fault("SubscriptionRepository.Create", subscription.Id); err != nil {
		return err
	}
	if subscription.Id == uuid.Nil {
		subscription.Id = uuid.New()
	}
	stamp(&subscription.CreatedAt, &subscription.UpdatedAt)
	r.store.subscriptions[subscription.Id] = cloneSubscription(*subscription)
	return nil
}

func (r *subscriptionRepository) Update(ctx context.Context, subscription *entity.Subscription) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.fault("SubscriptionRepository.Update", subscription.Id); err != nil {
		return err
	}
	stamp(nil, &subscription.UpdatedAt)
	r.store.subscriptions[subscription.Id] = cloneSubscription(*subscription)
	return nil
}

func (r *subscriptionRepository) find(specs []specification.Specification) []entity.Subscription {
	all := rows(r.store.subscriptions, func(s entity.Subscription) time.Time { return s.CreatedAt }, func(s entity.Subscription) uuid.UUID { return s.Id })
	return query(all, subscriptionField, specs)
}

func (r *subscriptionRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Subscription, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	found := r.find(specs)
	if len(found) > 0 {
		if err := r.store.fault("SubscriptionRepository.FindOne", found[0].Id); err != nil {
			return nil, err
		}
	}
	if len(found) == 0 {
		return nil, nil
	}
	s := cloneSubscription(found[0])
	return &s, nil
}

func (r *subscriptionRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Subscription, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.fault("SubscriptionRepository.FindAll", uuid.Nil); err != nil {
		return nil, err
	}
	found := r.find(specs)
	out := make([]*entity.Subscription, len(found))
	for i := range found {
		s := cloneSubscription(found[i])
		out[i] = &s
	}
	return out, nil
}

func (r *subscriptionRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return int64(len(r.find(specs))), nil
}

// Sessions

type sessionRepository struct{ store *Store }

func dateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

func (r *sessionRepository) CreateIfNotExists(ctx context.Context, session *entity.Session) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.fault("SessionRepository.CreateIfNotExists", session.SubscriptionId); err != nil {
		return false, err
	}
	for _, s := range r.store.sessions {
		if s.SubscriptionId == session.SubscriptionId && dateKey(s.SessionDate) == dateKey(session.SessionDate) {
			return false, nil
		}
	}
	if session.Id == uuid.Nil {
		session.Id = uuid.New()
	}
	stamp(&session.CreatedAt, &session.UpdatedAt)
	r.store.sessions[session.Id] = *session
	return true, nil
}

func (r *sessionRepository) Update(ctx context.Context, session *entity.Session) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.fault("SessionRepository.Update", session.Id); err != nil {
		return err
	}
	stamp(nil, &session.UpdatedAt)
	r.store.sessions[session.Id] = *session
	return nil
}

func (r *sessionRepository) find(specs []specification.Specification) []entity.Session {
	all := rows(r.store.sessions, func(s entity.Session) time.Time { return s.SessionDate }, func(s entity.Session) uuid.UUID { return s.Id })
	return query(all, sessionField, specs)
}

func (r *sessionRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Session, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	found := r.find(specs)
	out := make([]*entity.Session, len(found))
	for i := range found {
		out[i] = &found[i]
	}
	return out, nil
}

func (r *sessionRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return int64(len(r.find(specs))), nil
}

func (r *sessionRepository) MaxSessionNumber(ctx context.Context, subscriptionId uuid.UUID) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	maxNumber := 0
	for _, s := range r.store.sessions {
		if s.SubscriptionId == subscriptionId && s.SessionNumber > maxNumber {
			maxNumber = s.SessionNumber
		}
	}
	return maxNumber, nil
}

func (r *sessionRepository) ExistingDates(ctx context.Context, subscriptionId uuid.UUID, from, to time.Time) (map[string]struct{}, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.fault("SessionRepository.ExistingDates", subscriptionId); err != nil {
		return nil, err
	}
	lo, hi := dateKey(from), dateKey(to)
	dates := map[string]struct{}{}
	for _, s := range r.store.sessions {
		key := dateKey(s.SessionDate)
		if s.SubscriptionId == subscriptionId && key >= lo && key <= hi {
			dates[key] = struct{}{}
		}
	}
	return dates, nil
}

// Invoices

type invoiceRepository struct{ store *Store }

func (r *invoiceRepository) CreateIfPeriodFree(ctx context.Context, invoice *entity.Invoice) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var subId uuid.UUID
	if invoice.SubscriptionId != nil {
		subId = *invoice.SubscriptionId
	}
	if err := r.store.fault("InvoiceRepository.CreateIfPeriodFree", subId); err != nil {
		return false, err
	}
	for _, existing := range r.store.invoices {
		if existing.InvoiceNumber == invoice.InvoiceNumber {
			return false, contract.ErrDuplicate
		}
		if invoice.SubscriptionId != nil && existing.SubscriptionId != nil &&
			*existing.SubscriptionId == *invoice.SubscriptionId &&
			existing.BillingMonth == invoice.BillingMonth &&
			existing.BillingYear == invoice.BillingYear {
			return false, nil
		}
	}
	if invoice.Id == uuid.Nil {
		invoice.Id = uuid.New()
	}
	stamp(&invoice.CreatedAt, &invoice.UpdatedAt)
	stored := *invoice
	stored.Items = nil
	r.store.invoices[invoice.Id] = stored
	return true, nil
}

func (r *invoiceRepository) Update(ctx context.Context, invoice *entity.Invoice) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.fault("InvoiceRepository.Update", invoice.Id); err != nil {
		return err
	}
	stamp(nil, &invoice.UpdatedAt)
	stored := *invoice
	stored.Items = nil
	r.store.invoices[invoice.Id] = stored
	return nil
}

func (r *invoiceRepository) find(specs []specification.Specification) []entity.Invoice {
	all := rows(r.store.invoices, func(i entity.Invoice) time.Time { return i.CreatedAt }, func(i entity.Invoice) uuid.UUID { return i.Id })
	return query(all, invoiceField, specs)
}

func (r *invoiceRepository) itemsOf(invoiceId uuid.UUID) []entity.InvoiceItem {
	items := []entity.InvoiceItem{}
	for _, it := range r.store.invoiceItems {
		if it.InvoiceId == invoiceId {
			items = append(items, it)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].CreatedAt.Before(items[j].CreatedAt) })
	return items
}

func (r *invoiceRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Invoice, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.fault("InvoiceRepository.FindOne", uuid.Nil); err != nil {
		return nil, err
	}
	found := r.find(specs)
	if len(found) == 0 {
		return nil, nil
	}
	inv := found[0]
	inv.Items = r.itemsOf(inv.Id)
	return &inv, nil
}

func (r *invoiceRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Invoice, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	found := r.find(specs)
	out := make([]*entity.Invoice, len(found))
	for i := range found {
		out[i] = &found[i]
	}
	return out, nil
}

func (r *invoiceRepository) CreateItem(ctx context.Context, item *entity.InvoiceItem) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.fault("InvoiceRepository.CreateItem", item.InvoiceId); err != nil {
		return err
	}
	if item.Id == uuid.Nil {
		item.Id = uuid.New()
	}
	stamp(&item.CreatedAt, nil)
	r.store.invoiceItems[item.Id] = *item
	return nil
}

func (r *invoiceRepository) FindItems(ctx context.Context, invoiceId uuid.UUID) ([]entity.InvoiceItem, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.itemsOf(invoiceId), nil
}

// Payment records

type paymentRecordRepository struct{ store *Store }

func (r *paymentRecordRepository) pendingExists(p *entity.PaymentRecord) bool {
	if p.Status != entity.PaymentRecordStatusPending {
		return false
	}
	for id, existing := range r.store.payments {
		if id != p.Id && existing.InvoiceId == p.InvoiceId && existing.Status == entity.PaymentRecordStatusPending {
			return true
		}
	}
	return false
}

func (r *paymentRecordRepository) Create(ctx context.Context, payment *entity.PaymentRecord) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.fault("PaymentRecordRepository.Create", payment.InvoiceId); err != nil {
		return err
	}
	if r.pendingExists(payment) {
		return contract.ErrDuplicate
	}
	if payment.Id == uuid.Nil {
		payment.Id = uuid.New()
	}
	stamp(&payment.CreatedAt, &payment.UpdatedAt)
	r.store.payments[payment.Id] = *payment
	return nil
}

func (r *paymentRecordRepository) Update(ctx context.Context, payment *entity.PaymentRecord) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.fault("PaymentRecordRepository.Update", payment.Id); err != nil {
		return err
	}
	if r.pendingExists(payment) {
		return contract.ErrDuplicate
	}
	stamp(nil, &payment.UpdatedAt)
	r.store.payments[payment.Id] = *payment
	return nil
}

func (r *paymentRecordRepository) find(specs []specification.Specification) []entity.PaymentRecord {
	all := rows(r.store.payments, func(p entity.PaymentRecord) time.Time { return p.CreatedAt }, func(p entity.PaymentRecord) uuid.UUID { return p.Id })
	return query(all, paymentRecordField, specs)
}

func (r *paymentRecordRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.PaymentRecord, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	found := r.find(specs)
	if len(found) == 0 {
		return nil, nil
	}
	p := found[0]
	return &p, nil
}

func (r *paymentRecordRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.PaymentRecord, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	found := r.find(specs)
	out := make([]*entity.PaymentRecord, len(found))
	for i := range found {
		out[i] = &found[i]
	}
	return out, nil
}

// Bookings

type bookingRepository struct{ store *Store }

func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.fault("BookingRepository.Create", booking.UserId); err != nil {
		return err
	}
	if booking.Id == uuid.Nil {
		booking.Id = uuid.New()
	}
	stamp(&booking.CreatedAt, &booking.UpdatedAt)
	r.store.bookings[booking.Id] = *booking
	return nil
}

func (r *bookingRepository) Update(ctx context.Context, booking *entity.Booking) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.fault("BookingRepository.Update", booking.Id); err != nil {
		return err
	}
	stamp(nil, &booking.UpdatedAt)
	r.store.bookings[booking.Id] = *booking
	return nil
}

func (r *bookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if err := r.store.fault("BookingRepository.Delete", id); err != nil {
		return err
	}
	delete(r.store.bookings, id)
	return nil
}

func (r *bookingRepository) find(specs []specification.Specification) []entity.Booking {
	all := rows(r.store.bookings, func(b entity.Booking) time.Time { return b.CreatedAt }, func(b entity.Booking) uuid.UUID { return b.Id })
	return query(all, bookingField, specs)
}

func (r *bookingRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Booking, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	found := r.find(specs)
	if len(found) == 0 {
		return nil, nil
	}
	b := found[0]
	return &b, nil
}

func (r *bookingRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Booking, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	found := r.find(specs)
	out := make([]*entity.Booking, len(found))
	for i := range found {
		out[i] = &found[i]
	}
	return out, nil
}
