package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type SubscriptionStatus string

const (
	SubscriptionStatusPending   SubscriptionStatus = "pending"
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
)

// WeeklySchedule maps a lowercase English weekday name to a time slot id.
// A nil value means no session on that day.
type WeeklySchedule map[string]*uuid.UUID

func WeekdayKey(d time.Weekday) string {
	return strings.ToLower(d.String())
}

func (w WeeklySchedule) SlotFor(d time.Weekday) (uuid.UUID, bool) {
	slot, ok := w[WeekdayKey(d)]
	if !ok || slot == nil {
		return uuid.Nil, false
	}
	return *slot, true
}

func (w WeeklySchedule) HasAssignments() bool {
	for _, slot := range w {
		if slot != nil {
			return true
		}
	}
	return false
}

// SlotIds returns the distinct slot ids referenced by the schedule.
func (w WeeklySchedule) SlotIds() []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(w))
	ids := make([]uuid.UUID, 0, len(w))
	for _, slot := range w {
		if slot == nil {
			continue
		}
		if _, ok := seen[*slot]; ok {
			continue
		}
		seen[*slot] = struct{}{}
		ids = append(ids, *slot)
	}
	return ids
}

type Subscription struct {
	Id                uuid.UUID
	UserId            uuid.UUID
	ServiceId         uuid.UUID
	ChildName         string
	ChildAge          int // months
	WeeklySchedule    WeeklySchedule
	TotalSessions     int
	Status            SubscriptionStatus
	FinalMonthlyPrice decimal.Decimal
	StartMonth        int
	StartYear         int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// StartsAfter reports whether (year, month) precedes the subscription's
// first billable period.
func (s *Subscription) StartsAfter(month, year int) bool {
	if year != s.StartYear {
		return year < s.StartYear
	}
	return month < s.StartMonth
}

// StartDate is the first day of the start period. The zero time is
// returned when no start period is set.
func (s *Subscription) StartDate() time.Time {
	if s.StartYear == 0 || s.StartMonth == 0 {
		return time.Time{}
	}
	return time.Date(s.StartYear, time.Month(s.StartMonth), 1, 0, 0, 0, 0, time.UTC)
}
