package entity

import (
	"time"

	"github.com/google/uuid"
)

type SessionStatus string

const (
	SessionStatusScheduled   SessionStatus = "scheduled"
	SessionStatusCompleted   SessionStatus = "completed"
	SessionStatusCancelled   SessionStatus = "cancelled"
	SessionStatusRescheduled SessionStatus = "rescheduled"
)

// Session is one dated occurrence of a subscription. SessionDate carries
// the calendar day only.
type Session struct {
	Id              uuid.UUID
	SubscriptionId  uuid.UUID
	SessionDate     time.Time
	SessionTime     string // HH:MM
	SessionNumber   int
	DurationMinutes int
	Status          SessionStatus
	OriginalDate    *time.Time
	OriginalTime    *string
	Notes           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
