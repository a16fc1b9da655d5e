package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/SpacksD/dulmar1-sub001/internal/model"
	"github.com/SpacksD/dulmar1-sub001/internal/pkg/logger"
	"github.com/SpacksD/dulmar1-sub001/internal/repository"
	"github.com/SpacksD/dulmar1-sub001/pkg/events"
	pktNats "github.com/SpacksD/dulmar1-sub001/pkg/nats"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type inboxRepo struct {
	mu        sync.Mutex
	rows      []model.Notification
	createErr error
}

func (r *inboxRepo) CreateNotification(ctx context.Context, n *model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.rows = append(r.rows, *n)
	return nil
}

func (r *inboxRepo) GetNotificationsByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Notification, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var mine []model.Notification
	for _, n := range r.rows {
		if n.UserID == userID {
			mine = append(mine, n)
		}
	}
	sort.SliceStable(mine, func(i, j int) bool { return mine[i].CreatedAt.After(mine[j].CreatedAt) })
	total := int64(len(mine))
	if offset >= len(mine) {
		return nil, total, nil
	}
	mine = mine[offset:]
	if limit < len(mine) {
		mine = mine[:limit]
	}
	return mine, total, nil
}

func (r *inboxRepo) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, row := range r.rows {
		if row.UserID == userID && !row.IsRead {
			n++
		}
	}
	return n, nil
}

func (r *inboxRepo) MarkAsRead(ctx context.Context, notificationID, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rows {
		if r.rows[i].ID == notificationID && r.rows[i].UserID == userID {
			r.rows[i].IsRead = true
			return nil
		}
	}
	return repository.ErrNotificationNotFound
}

func (r *inboxRepo) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.rows {
		if r.rows[i].UserID == userID {
			r.rows[i].IsRead = true
		}
	}
	return nil
}

type capturingSubscriber struct {
	subject string
	durable string
	handler pktNats.EventHandler
}

func (c *capturingSubscriber) Subscribe(ctx context.Context, subject, durableName string, handler pktNats.EventHandler) error {
	c.subject, c.durable, c.handler = subject, durableName, handler
	return nil
}

func paymentRejected(userID uuid.UUID) events.Event {
	return events.BaseEvent{
		Type: pktNats.SubjectPrefix + events.TypePaymentRejected,
		Data: map[string]interface{}{
			"user_id":     userID.String(),
			"entity_type": "payment_record",
			"entity_id":   uuid.NewString(),
			"admin_notes": "transfer not found",
		},
		OccurredAt: time.Now(),
	}
}

func TestNotificationService_StartWritesInboxFromStream(t *testing.T) {
	repo := &inboxRepo{}
	sub := &capturingSubscriber{}
	svc := NewNotificationService(repo, sub, logger.NewNop())

	require.NoError(t, svc.Start(context.Background()))
	assert.Equal(t, "portal.>", sub.subject)
	assert.Equal(t, "portal-notifier", sub.durable)
	require.NotNil(t, sub.handler)

	userID := uuid.New()
	require.NoError(t, sub.handler(context.Background(), paymentRejected(userID)))

	list, err := svc.GetNotifications(context.Background(), userID, 1, 10)
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	item := list.Items[0]
	assert.Equal(t, events.TypePaymentRejected, item.TypeCode)
	assert.Equal(t, "Payment rejected", item.Title)
	assert.Equal(t, "Your payment could not be verified: transfer not found", item.Message)
	assert.Equal(t, "payment_record", item.EntityType)
	assert.NotNil(t, item.EntityId)
	assert.EqualValues(t, 1, list.UnreadCount)
}

func TestNotificationService_IgnoresUnroutableEvents(t *testing.T) {
	repo := &inboxRepo{}
	sub := &capturingSubscriber{}
	svc := NewNotificationService(repo, sub, logger.NewNop())
	require.NoError(t, svc.Start(context.Background()))

	unknown := events.BaseEvent{Type: "portal.SESSIONS_GENERATED", Data: map[string]interface{}{"user_id": uuid.NewString()}}
	anonymous := events.BaseEvent{Type: "portal." + events.TypeInvoiceGenerated, Data: map[string]interface{}{}}

	assert.NoError(t, sub.handler(context.Background(), unknown))
	assert.NoError(t, sub.handler(context.Background(), anonymous))
	assert.Empty(t, repo.rows)
}

func TestNotificationService_StoreFailureIsRedelivered(t *testing.T) {
	repo := &inboxRepo{createErr: errors.New("connection reset")}
	sub := &capturingSubscriber{}
	svc := NewNotificationService(repo, sub, logger.NewNop())
	require.NoError(t, svc.Start(context.Background()))

	assert.Error(t, sub.handler(context.Background(), paymentRejected(uuid.New())))
}

func TestNotificationService_StartWithoutSubscriber(t *testing.T) {
	svc := NewNotificationService(&inboxRepo{}, nil, logger.NewNop())
	assert.NoError(t, svc.Start(context.Background()))
}

func TestNotificationService_MarkAsReadIsOwnerScoped(t *testing.T) {
	repo := &inboxRepo{}
	sub := &capturingSubscriber{}
	svc := NewNotificationService(repo, sub, logger.NewNop())
	require.NoError(t, svc.Start(context.Background()))

	owner := uuid.New()
	require.NoError(t, sub.handler(context.Background(), paymentRejected(owner)))
	require.NoError(t, sub.handler(context.Background(), paymentRejected(owner)))
	id := repo.rows[0].ID

	assert.ErrorIs(t, svc.MarkAsRead(context.Background(), id, uuid.New()), repository.ErrNotificationNotFound)
	require.NoError(t, svc.MarkAsRead(context.Background(), id, owner))

	list, err := svc.GetNotifications(context.Background(), owner, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, list.Total)
	assert.EqualValues(t, 1, list.UnreadCount)

	require.NoError(t, svc.MarkAllAsRead(context.Background(), owner))
	list, err = svc.GetNotifications(context.Background(), owner, 1, 10)
	require.NoError(t, err)
	assert.Zero(t, list.UnreadCount)
}
