package mapper

import (
	"github.com/SpacksD/dulmar1-sub001/internal/entity"
	"github.com/SpacksD/dulmar1-sub001/internal/model"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type SubscriptionMapper struct{}

func NewSubscriptionMapper() *SubscriptionMapper {
	return &SubscriptionMapper{}
}

func (m *SubscriptionMapper) ToEntity(s *model.Subscription) *entity.Subscription {
	if s == nil {
		return nil
	}
	return &entity.Subscription{
		Id:                s.Id,
		UserId:            s.UserId,
		ServiceId:         s.ServiceId,
		ChildName:         s.ChildName,
		ChildAge:          s.ChildAge,
		WeeklySchedule:    scheduleToEntity(s.WeeklySchedule.Data()),
		TotalSessions:     s.TotalSessions,
		Status:            entity.SubscriptionStatus(s.Status),
		FinalMonthlyPrice: s.FinalMonthlyPrice,
		StartMonth:        s.StartMonth,
		StartYear:         s.StartYear,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
}

func (m *SubscriptionMapper) ToModel(s *entity.Subscription) *model.Subscription {
	if s == nil {
		return nil
	}
	return &model.Subscription{
		Id:                s.Id,
		UserId:            s.UserId,
		ServiceId:         s.ServiceId,
		ChildName:         s.ChildName,
		ChildAge:          s.ChildAge,
		WeeklySchedule:    datatypes.NewJSONType(scheduleToModel(s.WeeklySchedule)),
		TotalSessions:     s.TotalSessions,
		Status:            string(s.Status),
		FinalMonthlyPrice: s.FinalMonthlyPrice,
		StartMonth:        s.StartMonth,
		StartYear:         s.StartYear,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
}

// scheduleToEntity treats unparsable slot ids as unassigned days.
func scheduleToEntity(raw map[string]*string) entity.WeeklySchedule {
	schedule := make(entity.WeeklySchedule, len(raw))
	for day, slot := range raw {
		if slot == nil {
			schedule[day] = nil
			continue
		}
		id, err := uuid.Parse(*slot)
		if err != nil {
			schedule[day] = nil
			continue
		}
		schedule[day] = &id
	}
	return schedule
}

func scheduleToModel(schedule entity.WeeklySchedule) map[string]*string {
	raw := make(map[string]*string, len(schedule))
	for day, slot := range schedule {
		if slot == nil {
			raw[day] = nil
			continue
		}
		s := slot.String()
		raw[day] = &s
	}
	return raw
}

func (m *SubscriptionMapper) SessionToEntity(s *model.Session) *entity.Session {
	if s == nil {
		return nil
	}
	return &entity.Session{
		Id:              s.Id,
		SubscriptionId:  s.SubscriptionId,
		SessionDate:     s.SessionDate,
		SessionTime:     s.SessionTime,
		SessionNumber:   s.SessionNumber,
		DurationMinutes: s.DurationMinutes,
		Status:          entity.SessionStatus(s.Status),
		OriginalDate:    s.OriginalDate,
		OriginalTime:    s.OriginalTime,
		Notes:           s.Notes,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

func (m *SubscriptionMapper) SessionToModel(s *entity.Session) *model.Session {
	if s == nil {
		return nil
	}
	return &model.Session{
		Id:              s.Id,
		SubscriptionId:  s.SubscriptionId,
		SessionDate:     s.SessionDate,
		SessionTime:     s.SessionTime,
		SessionNumber:   s.SessionNumber,
		DurationMinutes: s.DurationMinutes,
		Status:          string(s.Status),
		OriginalDate:    s.OriginalDate,
		OriginalTime:    s.OriginalTime,
		Notes:           s.Notes,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}
