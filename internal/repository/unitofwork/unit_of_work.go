package unitofwork

import (
	"context"

	"github.com/SpacksD/dulmar1-sub001/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	ServiceRepository() contract.ServiceRepository
	PromotionRepository() contract.PromotionRepository
	SubscriptionRepository() contract.SubscriptionRepository
	SessionRepository() contract.SessionRepository
	InvoiceRepository() contract.InvoiceRepository
	PaymentRecordRepository() contract.PaymentRecordRepository
	BookingRepository() contract.BookingRepository
}
