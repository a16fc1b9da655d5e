package mapper

import (
	"github.com/SpacksD/dulmar1-sub001/internal/entity"
	"github.com/SpacksD/dulmar1-sub001/internal/model"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/datatypes"
)

type PromotionMapper struct{}

func NewPromotionMapper() *PromotionMapper {
	return &PromotionMapper{}
}

func (m *PromotionMapper) ToEntity(p *model.Promotion) *entity.Promotion {
	if p == nil {
		return nil
	}
	// Malformed ids in the JSON column are dropped rather than widening the promotion.
	serviceIds := lo.FilterMap(p.ApplicableServiceIds, func(raw string, _ int) (uuid.UUID, bool) {
		id, err := uuid.Parse(raw)
		return id, err == nil
	})
	return &entity.Promotion{
		Id:                   p.Id,
		Name:                 p.Name,
		Description:          p.Description,
		DiscountType:         entity.DiscountType(p.DiscountType),
		DiscountValue:        p.DiscountValue,
		MinAge:               p.MinAge,
		MaxAge:               p.MaxAge,
		ApplicableServiceIds: serviceIds,
		PromoCode:            p.PromoCode,
		StartDate:            p.StartDate,
		EndDate:              p.EndDate,
		MaxUses:              p.MaxUses,
		UsedCount:            p.UsedCount,
		IsActive:             p.IsActive,
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
	}
}

func (m *PromotionMapper) ToModel(p *entity.Promotion) *model.Promotion {
	if p == nil {
		return nil
	}
	serviceIds := lo.Map(p.ApplicableServiceIds, func(id uuid.UUID, _ int) string {
		return id.String()
	})
	return &model.Promotion{
		Id:                   p.Id,
		Name:                 p.Name,
		Description:          p.Description,
		DiscountType:         string(p.DiscountType),
		DiscountValue:        p.DiscountValue,
		MinAge:               p.MinAge,
		MaxAge:               p.MaxAge,
		ApplicableServiceIds: datatypes.NewJSONSlice(serviceIds),
		PromoCode:            p.PromoCode,
		StartDate:            p.StartDate,
		EndDate:              p.EndDate,
		MaxUses:              p.MaxUses,
		UsedCount:            p.UsedCount,
		IsActive:             p.IsActive,
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
	}
}
