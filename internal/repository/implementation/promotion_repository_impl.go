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
)

type PromotionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PromotionMapper
}

func NewPromotionRepository(db *gorm.DB) contract.PromotionRepository {
	return &PromotionRepositoryImpl{
		db:     db,
		mapper: mapper.NewPromotionMapper(),
	}
}

func (r *PromotionRepositoryImpl) Create(ctx context.Context, promotion *entity.Promotion) error {
	m := r.mapper.ToModel(promotion)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return translateWriteError(err)
	}
	*promotion = *r.mapper.ToEntity(m)
	return nil
}

// Update never writes used_count; that column only moves through Redeem
// and Release.
func (r *PromotionRepositoryImpl) Update(ctx context.Context, promotion *entity.Promotion) error {
	m := r.mapper.ToModel(promotion)
	if err := r.db.WithContext(ctx).Omit("used_count").Save(m).Error; err != nil {
		return translateWriteError(err)
	}
	return nil
}

func (r *PromotionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Promotion, error) {
	var m model.Promotion
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *PromotionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Promotion, error) {
	var models []*model.Promotion
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.Promotion, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *PromotionRepositoryImpl) Redeem(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&model.Promotion{}).
		Where("id = ? AND is_active = ? AND (max_uses IS NULL OR used_count < max_uses)", id, true).
		UpdateColumn("used_count", gorm.Expr("used_count + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return contract.ErrConditionFailed
	}
	return nil
}

func (r *PromotionRepositoryImpl) Release(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Promotion{}).
		Where("id = ?", id).
		UpdateColumn("used_count", gorm.Expr("GREATEST(used_count - 1, 0)")).Error
}
