// Package testutil provides an in-memory implementation of the unit of work
// and repository contracts, plus recording fakes for the collaborators the
// billing core talks to.
package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/SpacksD/dulmar1-sub001/internal/entity"
	"github.com/SpacksD/dulmar1-sub001/internal/repository/contract"
	"github.com/SpacksD/dulmar1-sub001/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// Store holds every table in memory. Transactions snapshot the whole store
// on Begin and restore it on Rollback; concurrent transactions are not
// isolated from each other.
type Store struct {
	mu sync.Mutex

	users         map[uuid.UUID]entity.User
	services      map[uuid.UUID]entity.Service
	timeSlots     map[uuid.UUID]entity.TimeSlot
	promotions    map[uuid.UUID]entity.Promotion
	subscriptions map[uuid.UUID]entity.Subscription
	sessions      map[uuid.UUID]entity.Session
	invoices      map[uuid.UUID]entity.Invoice
	invoiceItems  map[uuid.UUID]entity.InvoiceItem
	payments      map[uuid.UUID]entity.PaymentRecord
	bookings      map[uuid.UUID]entity.Booking

	faults map[string]error

	Begins    int
	Commits   int
	Rollbacks int
}

func NewStore() *Store {
	return &Store{
		users:         map[uuid.UUID]entity.User{},
		services:      map[uuid.UUID]entity.Service{},
		timeSlots:     map[uuid.UUID]entity.TimeSlot{},
		promotions:    map[uuid.UUID]entity.Promotion{},
		subscriptions: map[uuid.UUID]entity.Subscription{},
		sessions:      map[uuid.UUID]entity.Session{},
		invoices:      map[uuid.UUID]entity.Invoice{},
		invoiceItems:  map[uuid.UUID]entity.InvoiceItem{},
		payments:      map[uuid.UUID]entity.PaymentRecord{},
		bookings:      map[uuid.UUID]entity.Booking{},
		faults:        map[string]error{},
	}
}

// FailOn makes the named repository operation return err until cleared.
// Operation names look like "InvoiceRepository.CreateIfPeriodFree".
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[op] = err
}

// FailWhen fails the operation only for calls whose target id matches.
func (s *Store) FailWhen(op string, id uuid.UUID, err error) {
	s.FailOn(op+"#"+id.String(), err)
}

func (s *Store) ClearFaults() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = map[string]error{}
}

// fault must be called with s.mu held.
func (s *Store) fault(op string, id uuid.UUID) error {
	if err, ok := s.faults[op]; ok {
		return err
	}
	if err, ok := s.faults[op+"#"+id.String()]; ok {
		return err
	}
	return nil
}

type snapshot struct {
	users         map[uuid.UUID]entity.User
	services      map[uuid.UUID]entity.Service
	timeSlots     map[uuid.UUID]entity.TimeSlot
	promotions    map[uuid.UUID]entity.Promotion
	subscriptions map[uuid.UUID]entity.Subscription
	sessions      map[uuid.UUID]entity.Session
	invoices      map[uuid.UUID]entity.Invoice
	invoiceItems  map[uuid.UUID]entity.InvoiceItem
	payments      map[uuid.UUID]entity.PaymentRecord
	bookings      map[uuid.UUID]entity.Booking
}

func copyMap[V any](m map[uuid.UUID]V) map[uuid.UUID]V {
	out := make(map[uuid.UUID]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *Store) takeSnapshot() *snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Begins++
	return &snapshot{
		users:         copyMap(s.users),
		services:      copyMap(s.services),
		timeSlots:     copyMap(s.timeSlots),
		promotions:    copyMap(s.promotions),
		subscriptions: copyMap(s.subscriptions),
		sessions:      copyMap(s.sessions),
		invoices:      copyMap(s.invoices),
		invoiceItems:  copyMap(s.invoiceItems),
		payments:      copyMap(s.payments),
		bookings:      copyMap(s.bookings),
	}
}

func (s *Store) restore(snap *snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Rollbacks++
	s.users = snap.users
	s.services = snap.services
	s.timeSlots = snap.timeSlots
	s.promotions = snap.promotions
	s.subscriptions = snap.subscriptions
	s.sessions = snap.sessions
	s.invoices = snap.invoices
	s.invoiceItems = snap.invoiceItems
	s.payments = snap.payments
	s.bookings = snap.bookings
}

// Factory implements unitofwork.RepositoryFactory over a Store.
type Factory struct {
	Store *Store
}

func NewFactory(store *Store) *Factory {
	return &Factory{Store: store}
}

func (f *Factory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &UnitOfWork{store: f.Store}
}

// UnitOfWork implements unitofwork.UnitOfWork. Writes outside Begin/Commit
// apply immediately, as they do against the real database.
type UnitOfWork struct {
	store *Store
	snap  *snapshot
}

func (u *UnitOfWork) Begin(ctx context.Context) error {
	if u.snap != nil {
		return fmt.Errorf("transaction already started")
	}
	u.store.mu.Lock()
	err := u.store.fault("UnitOfWork.Begin", uuid.Nil)
	u.store.mu.Unlock()
	if err != nil {
		return err
	}
	u.snap = u.store.takeSnapshot()
	return nil
}

func (u *UnitOfWork) Commit() error {
	if u.snap == nil {
		return fmt.Errorf("no transaction to commit")
	}
	u.store.mu.Lock()
	err := u.store.fault("UnitOfWork.Commit", uuid.Nil)
	u.store.mu.Unlock()
	if err != nil {
		u.store.restore(u.snap)
		u.snap = nil
		return err
	}
	u.store.mu.Lock()
	u.store.Commits++
	u.store.mu.Unlock()
	u.snap = nil
	return nil
}

func (u *UnitOfWork) Rollback() error {
	if u.snap == nil {
		return nil
	}
	u.store.restore(u.snap)
	u.snap = nil
	return nil
}

func (u *UnitOfWork) UserRepository() contract.UserRepository {
	return &userRepository{store: u.store}
}

func (u *UnitOfWork) ServiceRepository() contract.ServiceRepository {
	return &serviceRepository{store: u.store}
}

func (u *UnitOfWork) PromotionRepository() contract.PromotionRepository {
	return &promotionRepository{store: u.store}
}

func (u *UnitOfWork) SubscriptionRepository() contract.SubscriptionRepository {
	return &subscriptionRepository{store: u.store}
}

func (u *UnitOfWork) SessionRepository() contract.SessionRepository {
	return &sessionRepository{store: u.store}
}

func (u *UnitOfWork) InvoiceRepository() contract.InvoiceRepository {
	return &invoiceRepository{store: u.store}
}

func (u *UnitOfWork) PaymentRecordRepository() contract.PaymentRecordRepository {
	return &paymentRecordRepository{store: u.store}
}

func (u *UnitOfWork) BookingRepository() contract.BookingRepository {
	return &bookingRepository{store: u.store}
}
