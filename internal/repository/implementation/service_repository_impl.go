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
)

type ServiceRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ServiceMapper
}

func NewServiceRepository(db *gorm.DB) contract.ServiceRepository {
	return &ServiceRepositoryImpl{
		db:     db,
		mapper: mapper.NewServiceMapper(),
	}
}

func (r *ServiceRepositoryImpl) Create(ctx context.Context, service *entity.Service) error {
	m := r.mapper.ToModel(service)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return translateWriteError(err)
	}
	*service = *r.mapper.ToEntity(m)
	return nil
}

func (r *ServiceRepositoryImpl) Update(ctx context.Context, service *entity.Service) error {
	m := r.mapper.ToModel(service)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return translateWriteError(err)
	}
	*service = *r.mapper.ToEntity(m)
	return nil
}

func (r *ServiceRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Service, error) {
	var m model.Service
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ServiceRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Service, error) {
	var models []*model.Service
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Service, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

// Time slots

func (r *ServiceRepositoryImpl) CreateTimeSlot(ctx context.Context, slot *entity.TimeSlot) error {
	m := r.mapper.TimeSlotToModel(slot)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return translateWriteError(err)
	}
	*slot = *r.mapper.TimeSlotToEntity(m)
	return nil
}

func (r *ServiceRepositoryImpl) FindOneTimeSlot(ctx context.Context, specs ...specification.Specification) (*entity.TimeSlot, error) {
	var m model.TimeSlot
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.TimeSlotToEntity(&m), nil
}

func (r *ServiceRepositoryImpl) FindAllTimeSlots(ctx context.Context, specs ...specification.Specification) ([]*entity.TimeSlot, error) {
	var models []*model.TimeSlot
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.TimeSlot, len(models))
	for i, m := range models {
		entities[i] = r.mapper.TimeSlotToEntity(m)
	}
	return entities, nil
}
