package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/SpacksD/dulmar1-sub001/internal/dto"
	"github.com/SpacksD/dulmar1-sub001/internal/model"
	"github.com/SpacksD/dulmar1-sub001/internal/pkg/logger"
	"github.com/SpacksD/dulmar1-sub001/internal/repository"
	"github.com/SpacksD/dulmar1-sub001/pkg/events"
	pktNats "github.com/SpacksD/dulmar1-sub001/pkg/nats"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// EventSubscriber is satisfied by *nats.Subscriber.
type EventSubscriber interface {
	Subscribe(ctx context.Context, subject string, durableName string, handler pktNats.EventHandler) error
}

type notificationTemplate struct {
	Title    string
	Template string
}

// Parent-facing events. Anything else on the stream is ignored.
var notificationTemplates = map[string]notificationTemplate{
	events.TypeBookingCreated:        {"Booking received", "Your booking was received. Total due: {final_price}."},
	events.TypeInvoiceGenerated:      {"New invoice", "Invoice {invoice_number} for {total_amount} is ready."},
	events.TypeInvoiceOverdue:        {"Invoice overdue", "Invoice {invoice_number} is past its due date."},
	events.TypePaymentSubmitted:      {"Payment under review", "We received your payment of {amount} and will review it shortly."},
	events.TypePaymentConfirmed:      {"Payment confirmed", "Your payment for invoice {invoice_number} was confirmed."},
	events.TypePaymentRejected:       {"Payment rejected", "Your payment could not be verified: {admin_notes}"},
	events.TypeSubscriptionActivated: {"Subscription active", "The subscription for {child_name} is now active."},
	events.TypeSubscriptionCancelled: {"Subscription cancelled", "The subscription was cancelled and {sessions_cancelled} upcoming sessions were released."},
}

type INotificationService interface {
	Start(ctx context.Context) error
	GetNotifications(ctx context.Context, userID uuid.UUID, page, limit int) (*dto.NotificationListResponse, error)
	MarkAsRead(ctx context.Context, notificationID, userID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
}

type notificationService struct {
	repo       repository.NotificationRepository
	subscriber EventSubscriber
	logger     logger.ILogger
}

func NewNotificationService(repo repository.NotificationRepository, sub EventSubscriber, log logger.ILogger) INotificationService {
	return &notificationService{
		repo:       repo,
		subscriber: sub,
		logger:     log,
	}
}

// Start attaches the inbox writer to the event stream. Without a subscriber
// (NATS unavailable) it logs and returns nil.
func (s *notificationService) Start(ctx context.Context) error {
	if s.subscriber == nil {
		s.logger.Warn("NOTIFY", "No event subscriber, notification inbox disabled", nil)
		return nil
	}
	if err := s.subscriber.Subscribe(ctx, pktNats.SubjectPrefix+">", "portal-notifier", s.handleEvent); err != nil {
		s.logger.Error("NOTIFY", "Failed to start notification subscriber", map[string]interface{}{"error": err.Error()})
		return err
	}
	s.logger.Info("NOTIFY", "Notification service started", map[string]interface{}{"subject": pktNats.SubjectPrefix + ">"})
	return nil
}

func (s *notificationService) handleEvent(ctx context.Context, event events.Event) error {
	typeCode := strings.TrimPrefix(event.EventType(), pktNats.SubjectPrefix)

	tmpl, ok := notificationTemplates[typeCode]
	if !ok {
		return nil
	}

	payload := event.Payload()
	userID, ok := payloadUUID(payload, "user_id")
	if !ok {
		s.logger.Warn("NOTIFY", "Event has no user_id", map[string]interface{}{"type": typeCode})
		return nil
	}

	notif := s.buildNotification(userID, typeCode, tmpl, payload)
	if err := s.repo.CreateNotification(ctx, &notif); err != nil {
		s.logger.Error("NOTIFY", "Failed to save notification", map[string]interface{}{
			"type":   typeCode,
			"userId": userID.String(),
			"error":  err.Error(),
		})
		// redelivered by the stream
		return err
	}
	return nil
}

func (s *notificationService) buildNotification(userID uuid.UUID, typeCode string, tmpl notificationTemplate, payload map[string]interface{}) model.Notification {
	msg := tmpl.Template
	for k, v := range payload {
		msg = strings.ReplaceAll(msg, fmt.Sprintf("{%s}", k), fmt.Sprintf("%v", v))
	}

	entityType, _ := payload["entity_type"].(string)
	var entityID *uuid.UUID
	if id, ok := payloadUUID(payload, "entity_id"); ok {
		entityID = &id
	}

	metaJSON, _ := json.Marshal(payload)

	return model.Notification{
		ID:         uuid.New(),
		UserID:     userID,
		TypeCode:   typeCode,
		Title:      tmpl.Title,
		Message:    msg,
		Metadata:   datatypes.JSON(metaJSON),
		EntityType: entityType,
		EntityID:   entityID,
		CreatedAt:  time.Now(),
	}
}

func payloadUUID(payload map[string]interface{}, key string) (uuid.UUID, bool) {
	v, ok := payload[key]
	if !ok || v == nil {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(fmt.Sprintf("%v", v))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

func (s *notificationService) GetNotifications(ctx context.Context, userID uuid.UUID, page, limit int) (*dto.NotificationListResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if page < 1 {
		page = 1
	}

	rows, total, err := s.repo.GetNotificationsByUserID(ctx, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	unread, err := s.repo.GetUnreadCount(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := make([]dto.NotificationResponse, 0, len(rows))
	for _, n := range rows {
		items = append(items, dto.NotificationResponse{
			Id:         n.ID,
			TypeCode:   n.TypeCode,
			Title:      n.Title,
			Message:    n.Message,
			EntityType: n.EntityType,
			EntityId:   n.EntityID,
			IsRead:     n.IsRead,
			CreatedAt:  n.CreatedAt,
		})
	}

	return &dto.NotificationListResponse{
		Items:       items,
		Total:       total,
		UnreadCount: unread,
	}, nil
}

func (s *notificationService) MarkAsRead(ctx context.Context, notificationID, userID uuid.UUID) error {
	return s.repo.MarkAsRead(ctx, notificationID, userID)
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}
