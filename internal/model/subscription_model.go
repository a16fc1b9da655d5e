package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Subscription struct {
	Id                uuid.UUID                              `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId            uuid.UUID                              `gorm:"type:uuid;not null;index"`
	ServiceId         uuid.UUID                              `gorm:"type:uuid;not null;index"`
	ChildName         string                                 `gorm:"type:varchar(255);not null"`
	ChildAge          int                                    `gorm:"not null"`
	WeeklySchedule    datatypes.JSONType[map[string]*string] `gorm:"type:jsonb"`
	TotalSessions     int                                    `gorm:"not null"`
	Status            string                                 `gorm:"type:subscription_status;not null;default:'pending';index"`
	FinalMonthlyPrice decimal.Decimal                        `gorm:"type:decimal(10,2);not null"`
	StartMonth        int                                    `gorm:"not null"`
	StartYear         int                                    `gorm:"not null"`
	CreatedAt         time.Time                              `gorm:"autoCreateTime"`
	UpdatedAt         time.Time                              `gorm:"autoUpdateTime"`

	User    *User    `gorm:"foreignKey:UserId"`
	Service *Service `gorm:"foreignKey:ServiceId"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

type Session struct {
	Id              uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SubscriptionId  uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_sessions_subscription_date,priority:1"`
	SessionDate     time.Time  `gorm:"type:date;not null;uniqueIndex:idx_sessions_subscription_date,priority:2"`
	SessionTime     string     `gorm:"type:varchar(5);not null"`
	SessionNumber   int        `gorm:"not null"`
	DurationMinutes int        `gorm:"not null"`
	Status          string     `gorm:"type:session_status;not null;default:'scheduled'"`
	OriginalDate    *time.Time `gorm:"type:date"`
	OriginalTime    *string    `gorm:"type:varchar(5)"`
	Notes           string     `gorm:"type:text"`
	CreatedAt       time.Time  `gorm:"autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime"`
}

func (Session) TableName() string {
	return "sessions"
}
