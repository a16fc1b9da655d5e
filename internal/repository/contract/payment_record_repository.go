package contract

import (
	"context"

	"github.com/SpacksD/dulmar1-sub001/internal/entity"
	"github.com/SpacksD/dulmar1-sub001/internal/repository/specification"
)

type PaymentRecordRepository interface {
	// Create returns ErrDuplicate when the invoice already has a pending record.
	Create(ctx context.Context, payment *entity.PaymentRecord) error
	Update(ctx context.Context, payment *entity.PaymentRecord) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.PaymentRecord, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.PaymentRecord, error)
}
