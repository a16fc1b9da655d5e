package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Service struct {
	Id              uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name            string           `gorm:"type:varchar(255);not null"`
	Category        string           `gorm:"type:varchar(50);not null;index"`
	Description     string           `gorm:"type:text"`
	BasePrice       *decimal.Decimal `gorm:"type:decimal(10,2)"` // NULL = quote on request
	DurationMinutes int              `gorm:"not null;default:60"`
	Capacity        int              `gorm:"not null;default:1"`
	AgeMinMonths    *int
	AgeMaxMonths    *int
	IsActive        bool      `gorm:"default:true"`
	CreatedAt       time.Time `gorm:"autoCreateTime"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime"`
}

func (Service) TableName() string {
	return "services"
}

type TimeSlot struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Label     string    `gorm:"type:varchar(100);not null"`
	StartTime string    `gorm:"type:varchar(5);not null"`
	EndTime   string    `gorm:"type:varchar(5)"`
	IsActive  bool      `gorm:"default:true"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (TimeSlot) TableName() string {
	return "time_slots"
}
