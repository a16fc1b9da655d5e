package implementation

import (
	"context"
	"errors"

	"github.com/SpacksD/dulmar1-sub001/internal/entity"
	"github.com/SpacksD/dulmar1-sub001/internal/mapper"
	"github.com/SpacksD/dulmar1-sub001/internal/model"
	"github.com/SpacksD/dulmar1-sub001/internal/repository/contract"
	"github.com/SpacksD/dulmar1-sub001/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InvoiceRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.InvoiceMapper
}

func NewInvoiceRepository(db *gorm.DB) contract.InvoiceRepository {
	return &InvoiceRepositoryImpl{
		db:     db,
		mapper: mapper.NewInvoiceMapper(),
	}
}

// CreateIfPeriodFree relies on idx_invoices_subscription_period. Invoices
// without a subscription never conflict on it.
func (r *InvoiceRepositoryImpl) CreateIfPeriodFree(ctx context.Context, invoice *entity.Invoice) (bool, error) {
	m := r.mapper.ToModel(invoice)
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "subscription_id"}, {Name: "billing_month"}, {Name: "billing_year"}},
			DoNothing: true,
		}).
		Create(m)
	if res.Error != nil {
		return false, translateWriteError(res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	items := invoice.Items
	*invoice = *r.mapper.ToEntity(m)
	invoice.Items = items
	return true, nil
}

func (r *InvoiceRepositoryImpl) Update(ctx context.Context, invoice *entity.Invoice) error {
	m := r.mapper.ToModel(invoice)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(m).Error; err != nil {
		return translateWriteError(err)
	}
	return nil
}

func (r *InvoiceRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Invoice, error) {
	var m model.Invoice
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	query = query.Preload("Items")
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *InvoiceRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Invoice, error) {
	var models []*model.Invoice
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Invoice, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *InvoiceRepositoryImpl) CreateItem(ctx context.Context, item *entity.InvoiceItem) error {
	m := r.mapper.ItemToModel(item)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return translateWriteError(err)
	}
	*item = *r.mapper.ItemToEntity(m)
	return nil
}

func (r *InvoiceRepositoryImpl) FindItems(ctx context.Context, invoiceId uuid.UUID) ([]entity.InvoiceItem, error) {
	var models []model.InvoiceItem
	if err := r.db.WithContext(ctx).Where("invoice_id = ?", invoiceId).Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	items := make([]entity.InvoiceItem, len(models))
	for i := range models {
		items[i] = *r.mapper.ItemToEntity(&models[i])
	}
	return items, nil
}
