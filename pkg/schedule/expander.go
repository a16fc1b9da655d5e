// Package schedule turns a subscription's weekly day-to-slot template into
// dated sessions.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SpacksD/dulmar1-sub001/internal/entity"
	"github.com/SpacksD/dulmar1-sub001/internal/pkg/clock"
	"github.com/SpacksD/dulmar1-sub001/internal/pkg/logger"
	"github.com/SpacksD/dulmar1-sub001/internal/repository/specification"
	"github.com/SpacksD/dulmar1-sub001/internal/repository/unitofwork"
	"github.com/SpacksD/dulmar1-sub001/pkg/events"

	"github.com/google/uuid"
)

const DefaultHorizonMonths = 3

var (
	ErrSubscriptionNotFound  = errors.New("subscription not found")
	ErrSubscriptionCancelled = errors.New("subscription is cancelled")
	ErrServiceNotFound       = errors.New("service not found")
	ErrTimeSlotNotFound      = errors.New("time slot not found")
)

// ItineraryNotifier queues the itinerary email for a subscription whose
// first sessions were just generated.
type ItineraryNotifier interface {
	RequestItinerary(ctx context.Context, subscriptionId uuid.UUID) error
}

type Expander struct {
	uowFactory    unitofwork.RepositoryFactory
	clock         clock.Clock
	logger        logger.ILogger
	publisher     events.Publisher
	notifier      ItineraryNotifier
	horizonMonths int
}

func NewExpander(
	uowFactory unitofwork.RepositoryFactory,
	clk clock.Clock,
	logger logger.ILogger,
	publisher events.Publisher,
	notifier ItineraryNotifier,
	horizonMonths int,
) *Expander {
	if horizonMonths <= 0 {
		horizonMonths = DefaultHorizonMonths
	}
	return &Expander{
		uowFactory:    uowFactory,
		clock:         clk,
		logger:        logger,
		publisher:     publisher,
		notifier:      notifier,
		horizonMonths: horizonMonths,
	}
}

// Horizon returns the first and last calendar day to cover: today through
// the last day of the Nth following month.
func Horizon(now time.Time, months int) (time.Time, time.Time) {
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(now.Year(), now.Month()+time.Month(months)+1, 0, 0, 0, 0, 0, time.UTC)
	return from, to
}

// Expand creates the missing sessions of one subscription inside the
// horizon, never before its start period, and returns how many rows were
// inserted. Dates that already have a session are skipped, so repeated
// calls converge.
func (e *Expander) Expand(ctx context.Context, subscriptionId uuid.UUID) (int, error) {
	created, _, err := e.expand(ctx, subscriptionId)
	return created, err
}

// expand also reports the subscription's highest session number before the
// run, zero meaning it had no sessions at all.
func (e *Expander) expand(ctx context.Context, subscriptionId uuid.UUID) (int, int, error) {
	uow := e.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return 0, 0, err
	}
	defer uow.Rollback()

	sub, err := uow.SubscriptionRepository().FindOne(ctx,
		specification.ByID{ID: subscriptionId},
		specification.ForUpdate{},
	)
	if err != nil {
		return 0, 0, fmt.Errorf("load subscription: %w", err)
	}
	if sub == nil {
		return 0, 0, ErrSubscriptionNotFound
	}
	if sub.Status == entity.SubscriptionStatusCancelled {
		return 0, 0, ErrSubscriptionCancelled
	}
	if !sub.WeeklySchedule.HasAssignments() {
		e.logger.Debug("SCHEDULE", "No weekly schedule configured", map[string]interface{}{
			"subscriptionId": subscriptionId.String(),
		})
		return 0, 0, nil
	}

	service, err := uow.ServiceRepository().FindOne(ctx, specification.ByID{ID: sub.ServiceId})
	if err != nil {
		return 0, 0, fmt.Errorf("load service: %w", err)
	}
	if service == nil {
		return 0, 0, ErrServiceNotFound
	}

	slotTimes, err := e.resolveSlots(ctx, uow, sub.WeeklySchedule)
	if err != nil {
		return 0, 0, err
	}

	from, to := Horizon(e.clock.Now(), e.horizonMonths)
	if start := sub.StartDate(); start.After(from) {
		from = start
	}
	sessions := uow.SessionRepository()

	existing, err := sessions.ExistingDates(ctx, sub.Id, from, to)
	if err != nil {
		return 0, 0, fmt.Errorf("load existing sessions: %w", err)
	}
	before, err := sessions.MaxSessionNumber(ctx, sub.Id)
	if err != nil {
		return 0, 0, fmt.Errorf("load session numbering: %w", err)
	}

	next := before + 1
	created := 0
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		slotId, ok := sub.WeeklySchedule.SlotFor(day.Weekday())
		if !ok {
			continue
		}
		if _, taken := existing[day.Format("2006-01-02")]; taken {
			continue
		}

		session := &entity.Session{
			Id:              uuid.New(),
			SubscriptionId:  sub.Id,
			SessionDate:     day,
			SessionTime:     slotTimes[slotId],
			SessionNumber:   next,
			DurationMinutes: service.DurationMinutes,
			Status:          entity.SessionStatusScheduled,
		}
		inserted, err := sessions.CreateIfNotExists(ctx, session)
		if err != nil {
			return 0, 0, fmt.Errorf("create session %s: %w", day.Format("2006-01-02"), err)
		}
		if !inserted {
			continue
		}
		next++
		created++
	}

	if err := uow.Commit(); err != nil {
		return 0, 0, err
	}

	if created > 0 {
		e.logger.Info("SCHEDULE", "Sessions generated", map[string]interface{}{
			"subscriptionId": sub.Id.String(),
			"created":        created,
			"from":           from.Format("2006-01-02"),
			"to":             to.Format("2006-01-02"),
		})
		e.publisher.PublishSessionsGenerated(ctx, sub.Id, created)
	}

	return created, before, nil
}

func (e *Expander) resolveSlots(ctx context.Context, uow unitofwork.UnitOfWork, schedule entity.WeeklySchedule) (map[uuid.UUID]string, error) {
	ids := schedule.SlotIds()
	slots, err := uow.ServiceRepository().FindAllTimeSlots(ctx, specification.ByIDs{IDs: ids})
	if err != nil {
		return nil, fmt.Errorf("load time slots: %w", err)
	}

	times := make(map[uuid.UUID]string, len(slots))
	for _, slot := range slots {
		times[slot.Id] = slot.StartTime
	}
	for _, id := range ids {
		if _, ok := times[id]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrTimeSlotNotFound, id)
		}
	}
	return times, nil
}

type ItemResult struct {
	SubscriptionId     uuid.UUID `json:"subscription_id"`
	SessionsCreated    int       `json:"sessions_created"`
	ItineraryRequested bool      `json:"itinerary_requested"`
	Error              string    `json:"error,omitempty"`
}

type BulkResult struct {
	SubscriptionsProcessed int          `json:"subscriptions_processed"`
	SessionsCreated        int          `json:"sessions_created"`
	ItinerariesRequested   int          `json:"itineraries_requested"`
	Items                  []ItemResult `json:"items"`
	Errors                 []string     `json:"errors"`
}

// ExpandAll expands every active subscription, each in its own unit of
// work. A failing subscription is recorded and the run moves on.
func (e *Expander) ExpandAll(ctx context.Context) (*BulkResult, error) {
	uow := e.uowFactory.NewUnitOfWork(ctx)
	subs, err := uow.SubscriptionRepository().FindAll(ctx,
		specification.ByStatus{Status: string(entity.SubscriptionStatusActive)},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, fmt.Errorf("load active subscriptions: %w", err)
	}

	result := &BulkResult{
		Items:  make([]ItemResult, 0, len(subs)),
		Errors: []string{},
	}

	for _, sub := range subs {
		item := ItemResult{SubscriptionId: sub.Id}
		result.SubscriptionsProcessed++

		created, before, err := e.expand(ctx, sub.Id)
		if err != nil {
			item.Error = err.Error()
			result.Errors = append(result.Errors, fmt.Sprintf("subscription %s: %v", sub.Id, err))
			result.Items = append(result.Items, item)
			e.logger.Error("SCHEDULE", "Session generation failed", map[string]interface{}{
				"subscriptionId": sub.Id.String(),
				"error":          err.Error(),
			})
			continue
		}

		item.SessionsCreated = created
		result.SessionsCreated += created

		if before == 0 && created > 0 && e.notifier != nil {
			if err := e.notifier.RequestItinerary(ctx, sub.Id); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("subscription %s: itinerary: %v", sub.Id, err))
				e.logger.Warn("SCHEDULE", "Failed to request itinerary", map[string]interface{}{
					"subscriptionId": sub.Id.String(),
					"error":          err.Error(),
				})
			} else {
				item.ItineraryRequested = true
				result.ItinerariesRequested++
			}
		}
		result.Items = append(result.Items, item)
	}

	e.logger.Info("SCHEDULE", "Bulk session generation finished", map[string]interface{}{
		"processed": result.SubscriptionsProcessed,
		"created":   result.SessionsCreated,
		"errors":    len(result.Errors),
	})

	return result, nil
}
