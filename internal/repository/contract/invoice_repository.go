package contract

import (
	"context"

	"github.com/SpacksD/dulmar1-sub001/internal/entity"
	"github.com/SpacksD/dulmar1-sub001/internal/repository/specification"

	"github.com/google/uuid"
)

type InvoiceRepository interface {
	// CreateIfPeriodFree inserts unless the subscription already has an
	// invoice for the billing period. Reports whether a row was written.
	CreateIfPeriodFree(ctx context.Context, invoice *entity.Invoice) (bool, error)
	Update(ctx context.Context, invoice *entity.Invoice) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Invoice, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Invoice, error)

	CreateItem(ctx context.Context, item *entity.InvoiceItem) error
	FindItems(ctx context.Context, invoiceId uuid.UUID) ([]entity.InvoiceItem, error)
}
