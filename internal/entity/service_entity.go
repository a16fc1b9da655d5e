package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ServiceCategory string

const (
	ServiceCategoryDaycare     ServiceCategory = "daycare"
	ServiceCategoryStimulation ServiceCategory = "stimulation"
	ServiceCategoryTherapy     ServiceCategory = "therapy"
	ServiceCategoryWorkshop    ServiceCategory = "workshop"
)

// Service is a catalog entry. A nil BasePrice means the price is quoted on
// request and cannot be booked online.
type Service struct {
	Id              uuid.UUID
	Name            string
	Category        ServiceCategory
	Description     string
	BasePrice       *decimal.Decimal
	DurationMinutes int
	Capacity        int
	AgeMinMonths    *int
	AgeMaxMonths    *int
	IsActive        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (s *Service) HasPrice() bool {
	return s.BasePrice != nil
}

// TimeSlot is a named start time referenced by weekly schedules.
type TimeSlot struct {
	Id        uuid.UUID
	Label     string
	StartTime string // HH:MM
	EndTime   string // HH:MM
	IsActive  bool
	CreatedAt time.Time
}
