package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Promotion struct {
	Id                   uuid.UUID                   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name                 string                      `gorm:"type:varchar(255);not null"`
	Description          string                      `gorm:"type:text"`
	DiscountType         string                      `gorm:"type:discount_type;not null"`
	DiscountValue        decimal.Decimal             `gorm:"type:decimal(10,2);not null;default:0"`
	MinAge               *int                        // months
	MaxAge               *int                        // months
	ApplicableServiceIds datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	PromoCode            *string                     `gorm:"type:varchar(50);uniqueIndex"`
	StartDate            time.Time                   `gorm:"not null"`
	EndDate              time.Time                   `gorm:"not null"`
	MaxUses              *int
	UsedCount            int       `gorm:"not null;default:0"`
	IsActive             bool      `gorm:"default:true"`
	CreatedAt            time.Time `gorm:"autoCreateTime"`
	UpdatedAt            time.Time `gorm:"autoUpdateTime"`
}

func (Promotion) TableName() string {
	return "promotions"
}
