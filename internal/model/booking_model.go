package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Booking struct {
	Id             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId         uuid.UUID       `gorm:"type:uuid;not null;index"`
	ServiceId      uuid.UUID       `gorm:"type:uuid;not null;index"`
	SubscriptionId *uuid.UUID      `gorm:"type:uuid;index"`
	PromotionId    *uuid.UUID      `gorm:"type:uuid;index"`
	ChildName      string          `gorm:"type:varchar(255);not null"`
	ChildAge       int             `gorm:"not null"`
	OriginalPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0"`
	FinalPrice     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	TotalSessions  int             `gorm:"not null"`
	Status         string          `gorm:"type:booking_status;not null;default:'pending'"`
	PaymentStatus  string          `gorm:"type:varchar(20);not null;default:'unpaid'"`
	Notes          string          `gorm:"type:text"`
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime"`
}

func (Booking) TableName() string {
	return "bookings"
}
