package mapper

import (
	"github.com/SpacksD/dulmar1-sub001/internal/entity"
	"github.com/SpacksD/dulmar1-sub001/internal/model"
)

type ServiceMapper struct{}

func NewServiceMapper() *ServiceMapper {
	return &ServiceMapper{}
}

func (m *ServiceMapper) ToEntity(s *model.Service) *entity.Service {
	if s == nil {
		return nil
	}
	return &entity.Service{
		Id:              s.Id,
		Name:            s.Name,
		Category:        entity.ServiceCategory(s.Category),
		Description:     s.Description,
		BasePrice:       s.BasePrice,
		DurationMinutes: s.DurationMinutes,
		Capacity:        s.Capacity,
		AgeMinMonths:    s.AgeMinMonths,
		AgeMaxMonths:    s.AgeMaxMonths,
		IsActive:        s.IsActive,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

func (m *ServiceMapper) ToModel(s *entity.Service) *model.Service {
	if s == nil {
		return nil
	}
	return &model.Service{
		Id:              s.Id,
		Name:            s.Name,
		Category:        string(s.Category),
		Description:     s.Description,
		BasePrice:       s.BasePrice,
		DurationMinutes: s.DurationMinutes,
		Capacity:        s.Capacity,
		AgeMinMonths:    s.AgeMinMonths,
		AgeMaxMonths:    s.AgeMaxMonths,
		IsActive:        s.IsActive,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

func (m *ServiceMapper) TimeSlotToEntity(t *model.TimeSlot) *entity.TimeSlot {
	if t == nil {
		return nil
	}
	return &entity.TimeSlot{
		Id:        t.Id,
		Label:     t.Label,
		StartTime: t.StartTime,
		EndTime:   t.EndTime,
		IsActive:  t.IsActive,
		CreatedAt: t.CreatedAt,
	}
}

func (m *ServiceMapper) TimeSlotToModel(t *entity.TimeSlot) *model.TimeSlot {
	if t == nil {
		return nil
	}
	return &model.TimeSlot{
		Id:        t.Id,
		Label:     t.Label,
		StartTime: t.StartTime,
		EndTime:   t.EndTime,
		IsActive:  t.IsActive,
		CreatedAt: t.CreatedAt,
	}
}
