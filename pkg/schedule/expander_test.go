package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SpacksD/dulmar1-sub001/internal/entity"
	"github.com/SpacksD/dulmar1-sub001/internal/pkg/clock"
	"github.com/SpacksD/dulmar1-sub001/internal/pkg/logger"
	"github.com/SpacksD/dulmar1-sub001/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ExpanderSuite struct {
	suite.Suite
	ctx       context.Context
	store     *testutil.Store
	clock     *clock.Fixed
	publisher *testutil.Publisher
	notifier  *testutil.Notifier
	expander  *Expander

	service *entity.Service
	morning *entity.TimeSlot
	noon    *entity.TimeSlot
}

func TestExpanderSuite(t *testing.T) {
	suite.Run(t, new(ExpanderSuite))
}

func (s *ExpanderSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = testutil.NewStore()
	// Saturday
	s.clock = clock.NewFixed(time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC))
	s.publisher = &testutil.Publisher{}
	s.notifier = &testutil.Notifier{}
	s.expander = NewExpander(testutil.NewFactory(s.store), s.clock, logger.NewNop(), s.publisher, s.notifier, DefaultHorizonMonths)

	price := testutil.Money("450")
	s.service = s.store.SeedService("Early stimulation", &price, 45)
	s.morning = s.store.SeedTimeSlot("10:00")
	s.noon = s.store.SeedTimeSlot("12:30")
}

func (s *ExpanderSuite) subscription(status entity.SubscriptionStatus, schedule entity.WeeklySchedule) *entity.Subscription {
	return s.store.SeedSubscription(entity.Subscription{
		UserId:         uuid.New(),
		ServiceId:      s.service.Id,
		ChildName:      "Lucia",
		ChildAge:       30,
		WeeklySchedule: schedule,
		TotalSessions:  8,
		Status:         status,
		StartMonth:     3,
		StartYear:      2025,
	})
}

func (s *ExpanderSuite) tueThu() entity.WeeklySchedule {
	return entity.WeeklySchedule{
		"monday":   nil,
		"tuesday":  &s.morning.Id,
		"thursday": &s.morning.Id,
	}
}

func (s *ExpanderSuite) TestExpand_CreatesSessionsForScheduledWeekdays() {
	sub := s.subscription(entity.SubscriptionStatusActive, s.tueThu())

	created, err := s.expander.Expand(s.ctx, sub.Id)
	s.Require().NoError(err)
	// Tuesdays and Thursdays from 2025-03-15 through 2025-06-30
	s.Equal(30, created)

	sessions := s.store.Sessions(sub.Id)
	s.Require().Len(sessions, 30)
	s.Equal("2025-03-18", sessions[0].SessionDate.Format("2006-01-02"))
	s.Equal("2025-06-26", sessions[29].SessionDate.Format("2006-01-02"))
	for i, session := range sessions {
		s.Equal(i+1, session.SessionNumber)
		s.Equal("10:00", session.SessionTime)
		s.Equal(45, session.DurationMinutes)
		s.Equal(entity.SessionStatusScheduled, session.Status)
		wd := session.SessionDate.Weekday()
		s.True(wd == time.Tuesday || wd == time.Thursday, "unexpected weekday %s", wd)
	}
	s.Equal(1, s.publisher.Count("SESSIONS_GENERATED"))
}

func (s *ExpanderSuite) TestExpand_FutureStartBeginsAtStartMonth() {
	sub := s.subscription(entity.SubscriptionStatusActive, s.tueThu())
	current, _ := s.store.Subscription(sub.Id)
	current.StartMonth = 6
	s.store.SeedSubscription(current)

	created, err := s.expander.Expand(s.ctx, sub.Id)
	s.Require().NoError(err)
	// Tuesdays and Thursdays of June 2025
	s.Equal(8, created)

	sessions := s.store.Sessions(sub.Id)
	s.Require().Len(sessions, 8)
	s.Equal("2025-06-03", sessions[0].SessionDate.Format("2006-01-02"))
	s.Equal("2025-06-26", sessions[7].SessionDate.Format("2006-01-02"))
	s.Equal(1, sessions[0].SessionNumber)
}

func (s *ExpanderSuite) TestExpand_StartBeyondHorizonCreatesNothing() {
	sub := s.subscription(entity.SubscriptionStatusActive, s.tueThu())
	current, _ := s.store.Subscription(sub.Id)
	current.StartMonth = 9
	s.store.SeedSubscription(current)

	created, err := s.expander.Expand(s.ctx, sub.Id)
	s.Require().NoError(err)
	s.Zero(created)
	s.Empty(s.store.Sessions(sub.Id))
	s.Zero(s.publisher.Count("SESSIONS_GENERATED"))
}

func (s *ExpanderSuite) TestExpand_SecondCallCreatesNothing() {
	sub := s.subscription(entity.SubscriptionStatusActive, s.tueThu())

	_, err := s.expander.Expand(s.ctx, sub.Id)
	s.Require().NoError(err)

	created, err := s.expander.Expand(s.ctx, sub.Id)
	s.Require().NoError(err)
	s.Equal(0, created)
	s.Len(s.store.Sessions(sub.Id), 30)
	s.Equal(1, s.publisher.Count("SESSIONS_GENERATED"))
}

func (s *ExpanderSuite) TestExpand_ScheduleChangeAddsOnlyMissingDates() {
	sub := s.subscription(entity.SubscriptionStatusActive, s.tueThu())
	_, err := s.expander.Expand(s.ctx, sub.Id)
	s.Require().NoError(err)

	stored, _ := s.store.Subscription(sub.Id)
	stored.WeeklySchedule["wednesday"] = &s.noon.Id
	s.store.SeedSubscription(stored)

	created, err := s.expander.Expand(s.ctx, sub.Id)
	s.Require().NoError(err)
	s.Equal(15, created)

	sessions := s.store.Sessions(sub.Id)
	s.Require().Len(sessions, 45)
	seen := map[string]bool{}
	for i, session := range sessions {
		s.Equal(i+1, session.SessionNumber)
		key := session.SessionDate.Format("2006-01-02")
		s.False(seen[key], "duplicate date %s", key)
		seen[key] = true
		if i >= 30 {
			s.Equal(time.Wednesday, session.SessionDate.Weekday())
			s.Equal("12:30", session.SessionTime)
		}
	}
}

func (s *ExpanderSuite) TestExpand_SkipsDatesThatAlreadyHaveASession() {
	sub := s.subscription(entity.SubscriptionStatusActive, s.tueThu())
	s.store.SeedSession(entity.Session{
		SubscriptionId:  sub.Id,
		SessionDate:     time.Date(2025, 3, 18, 0, 0, 0, 0, time.UTC),
		SessionTime:     "09:00",
		SessionNumber:   1,
		DurationMinutes: 45,
		Status:          entity.SessionStatusRescheduled,
	})

	created, err := s.expander.Expand(s.ctx, sub.Id)
	s.Require().NoError(err)
	s.Equal(29, created)

	sessions := s.store.Sessions(sub.Id)
	s.Equal("09:00", sessions[0].SessionTime)
	s.Equal(2, sessions[1].SessionNumber)
	s.Equal("2025-03-20", sessions[1].SessionDate.Format("2006-01-02"))
}

func (s *ExpanderSuite) TestExpand_HorizonMovesWithTheClock() {
	sub := s.subscription(entity.SubscriptionStatusActive, s.tueThu())
	_, err := s.expander.Expand(s.ctx, sub.Id)
	s.Require().NoError(err)

	s.clock.Set(time.Date(2025, 4, 2, 8, 0, 0, 0, time.UTC))
	created, err := s.expander.Expand(s.ctx, sub.Id)
	s.Require().NoError(err)
	// July 2025 has 5 Tuesdays and 5 Thursdays
	s.Equal(10, created)

	sessions := s.store.Sessions(sub.Id)
	s.Equal(40, sessions[len(sessions)-1].SessionNumber)
	s.Equal(time.July, sessions[len(sessions)-1].SessionDate.Month())
}

func (s *ExpanderSuite) TestExpand_EmptyScheduleIsNotAnError() {
	sub := s.subscription(entity.SubscriptionStatusActive, entity.WeeklySchedule{"monday": nil})

	created, err := s.expander.Expand(s.ctx, sub.Id)
	s.NoError(err)
	s.Equal(0, created)
	s.Empty(s.store.Sessions(sub.Id))
}

func (s *ExpanderSuite) TestExpand_Rejections() {
	cancelled := s.subscription(entity.SubscriptionStatusCancelled, s.tueThu())
	_, err := s.expander.Expand(s.ctx, cancelled.Id)
	s.ErrorIs(err, ErrSubscriptionCancelled)

	_, err = s.expander.Expand(s.ctx, uuid.New())
	s.ErrorIs(err, ErrSubscriptionNotFound)

	unknownSlot := uuid.New()
	broken := s.subscription(entity.SubscriptionStatusActive, entity.WeeklySchedule{"friday": &unknownSlot})
	_, err = s.expander.Expand(s.ctx, broken.Id)
	s.ErrorIs(err, ErrTimeSlotNotFound)
}

func (s *ExpanderSuite) TestExpand_StoreFailureLeavesNoPartialSessions() {
	sub := s.subscription(entity.SubscriptionStatusActive, s.tueThu())
	s.store.FailOn("UnitOfWork.Commit", errors.New("connection reset"))

	_, err := s.expander.Expand(s.ctx, sub.Id)
	s.Error(err)
	s.Empty(s.store.Sessions(sub.Id))
	s.Zero(s.publisher.Count("SESSIONS_GENERATED"))
}

func (s *ExpanderSuite) TestExpandAll_IsolatesFailuresAndRequestsItineraries() {
	fresh := s.subscription(entity.SubscriptionStatusActive, s.tueThu())
	covered := s.subscription(entity.SubscriptionStatusActive, s.tueThu())
	failing := s.subscription(entity.SubscriptionStatusActive, s.tueThu())
	pending := s.subscription(entity.SubscriptionStatusPending, s.tueThu())

	_, err := s.expander.Expand(s.ctx, covered.Id)
	s.Require().NoError(err)

	s.store.FailWhen("SessionRepository.CreateIfNotExists", failing.Id, errors.New("deadlock detected"))

	result, err := s.expander.ExpandAll(s.ctx)
	s.Require().NoError(err)

	s.Equal(3, result.SubscriptionsProcessed)
	s.Equal(30, result.SessionsCreated)
	s.Equal(1, result.ItinerariesRequested)
	s.Require().Len(result.Errors, 1)
	s.Contains(result.Errors[0], failing.Id.String())

	s.Equal([]uuid.UUID{fresh.Id}, s.notifier.Requested)
	s.Len(s.store.Sessions(fresh.Id), 30)
	s.Len(s.store.Sessions(covered.Id), 30)
	s.Empty(s.store.Sessions(failing.Id))
	s.Empty(s.store.Sessions(pending.Id))
}

func (s *ExpanderSuite) TestExpandAll_NotifierFailureKeepsSessions() {
	sub := s.subscription(entity.SubscriptionStatusActive, s.tueThu())
	s.notifier.Err = errors.New("queue closed")

	result, err := s.expander.ExpandAll(s.ctx)
	s.Require().NoError(err)

	s.Equal(30, result.SessionsCreated)
	s.Zero(result.ItinerariesRequested)
	s.Len(result.Errors, 1)
	s.Len(s.store.Sessions(sub.Id), 30)
}

func TestHorizon(t *testing.T) {
	tests := []struct {
		now  time.Time
		from string
		to   string
	}{
		{time.Date(2025, 3, 15, 9, 0, 0, 0, time.UTC), "2025-03-15", "2025-06-30"},
		{time.Date(2025, 1, 31, 23, 0, 0, 0, time.UTC), "2025-01-31", "2025-04-30"},
		{time.Date(2025, 11, 10, 0, 0, 0, 0, time.UTC), "2025-11-10", "2026-02-28"},
	}
	for _, tt := range tests {
		from, to := Horizon(tt.now, 3)
		assert.Equal(t, tt.from, from.Format("2006-01-02"))
		assert.Equal(t, tt.to, to.Format("2006-01-02"))
	}
}

func TestNewExpander_DefaultsHorizon(t *testing.T) {
	e := NewExpander(testutil.NewFactory(testutil.NewStore()), clock.Real{}, logger.NewNop(), &testutil.Publisher{}, nil, 0)
	require.Equal(t, DefaultHorizonMonths, e.horizonMonths)
}
