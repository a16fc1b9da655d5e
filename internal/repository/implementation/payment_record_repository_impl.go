package implementation

import (
	"context"
	"errors"

	"github.com/SpacksD/dulmar1-sub001/internal/entity"
	"github.com/SpacksD/dulmar1-sub001/internal/mapper"
	"github.com/SpacksD/dulmar1-sub001/internal/model"
	"github.com/SpacksD/dulmar1-sub001/internal/repository/contract"
	"github.com/SpacksD/dulmar1-sub001/internal/repository/specification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentRecordRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PaymentRecordMapper
}

func NewPaymentRecordRepository(db *gorm.DB) contract.PaymentRecordRepository {
	return &PaymentRecordRepositoryImpl{
		db:     db,
		mapper: mapper.NewPaymentRecordMapper(),
	}
}

func (r *PaymentRecordRepositoryImpl) Create(ctx context.Context, payment *entity.PaymentRecord) error {
	m := r.mapper.ToModel(payment)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return translateWriteError(err)
	}
	*payment = *r.mapper.ToEntity(m)
	return nil
}

func (r *PaymentRecordRepositoryImpl) Update(ctx context.Context, payment *entity.PaymentRecord) error {
	m := r.mapper.ToModel(payment)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(m).Error; err != nil {
		return translateWriteError(err)
	}
	*payment = *r.mapper.ToEntity(m)
	return nil
}

func (r *PaymentRecordRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.PaymentRecord, error) {
	var m model.PaymentRecord
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *PaymentRecordRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.PaymentRecord, error) {
	var models []*model.PaymentRecord
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.PaymentRecord, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}
