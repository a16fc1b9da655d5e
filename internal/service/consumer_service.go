package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/SpacksD/dulmar1-sub001/internal/dto"
	"github.com/SpacksD/dulmar1-sub001/internal/entity"
	"github.com/SpacksD/dulmar1-sub001/internal/pkg/clock"
	"github.com/SpacksD/dulmar1-sub001/internal/pkg/logger"
	"github.com/SpacksD/dulmar1-sub001/internal/pkg/mailer"
	"github.com/SpacksD/dulmar1-sub001/internal/repository/specification"
	"github.com/SpacksD/dulmar1-sub001/internal/repository/unitofwork"

	"github.com/ThreeDotsLabs/watermill/message"
)

// MaxItinerarySessions caps the rows listed in one itinerary email.
const MaxItinerarySessions = 40

var errItineraryIncomplete = errors.New("itinerary data incomplete")

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService sends itinerary emails queued by the publisher service.
type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	uowFactory unitofwork.RepositoryFactory
	mailer     mailer.IEmailService
	clock      clock.Clock
	logger     logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	emailService mailer.IEmailService,
	clk clock.Clock,
	logger logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		uowFactory: uowFactory,
		mailer:     emailService,
		clock:      clk,
		logger:     logger,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.ItineraryRequestMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("NOTIFY", "Failed to unmarshal itinerary request", map[string]interface{}{"error": err.Error()})
		msg.Ack() // never retry a malformed message
		return
	}

	toEmail, itinerary, err := cs.buildItinerary(ctx, payload)
	if errors.Is(err, errItineraryIncomplete) {
		cs.logger.Warn("NOTIFY", "Skipping itinerary", map[string]interface{}{
			"subscriptionId": payload.SubscriptionId.String(),
			"error":          err.Error(),
		})
		msg.Ack()
		return
	}
	if err != nil {
		cs.logger.Error("NOTIFY", "Failed to load itinerary", map[string]interface{}{
			"subscriptionId": payload.SubscriptionId.String(),
			"error":          err.Error(),
		})
		msg.Nack()
		return
	}

	// Sessions already exist, a delivery failure is reported and dropped.
	if err := cs.mailer.SendItinerary(toEmail, *itinerary); err != nil {
		cs.logger.Error("NOTIFY", "Failed to send itinerary email", map[string]interface{}{
			"subscriptionId": payload.SubscriptionId.String(),
			"error":          err.Error(),
		})
		msg.Ack()
		return
	}

	cs.logger.Info("NOTIFY", "Itinerary email sent", map[string]interface{}{
		"subscriptionId": payload.SubscriptionId.String(),
		"sessions":       len(itinerary.Sessions),
	})
	msg.Ack()
}

func (cs *consumerService) buildItinerary(ctx context.Context, payload dto.ItineraryRequestMessage) (string, *mailer.ItineraryEmail, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	sub, err := uow.SubscriptionRepository().FindOne(ctx, specification.ByID{ID: payload.SubscriptionId})
	if err != nil {
		return "", nil, err
	}
	if sub == nil {
		return "", nil, errItineraryIncomplete
	}

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: sub.UserId})
	if err != nil {
		return "", nil, err
	}
	if user == nil || user.Email == "" {
		return "", nil, errItineraryIncomplete
	}

	svc, err := uow.ServiceRepository().FindOne(ctx, specification.ByID{ID: sub.ServiceId})
	if err != nil {
		return "", nil, err
	}
	serviceName := "-"
	if svc != nil {
		serviceName = svc.Name
	}

	now := cs.clock.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	sessions, err := uow.SessionRepository().FindAll(ctx,
		specification.BySubscriptionID{SubscriptionID: sub.Id},
		specification.ByStatus{Status: string(entity.SessionStatusScheduled)},
		specification.OnOrAfter{Field: "session_date", At: today},
		specification.OrderBy{Field: "session_number"},
		specification.Pagination{Limit: MaxItinerarySessions},
	)
	if err != nil {
		return "", nil, err
	}
	if len(sessions) == 0 {
		return "", nil, errItineraryIncomplete
	}

	rows := make([]mailer.ItinerarySession, 0, len(sessions))
	for _, s := range sessions {
		rows = append(rows, mailer.ItinerarySession{
			Number: s.SessionNumber,
			Date:   s.SessionDate,
			Time:   s.SessionTime,
		})
	}

	return user.Email, &mailer.ItineraryEmail{
		ParentName:  user.FullName,
		ChildName:   sub.ChildName,
		ServiceName: serviceName,
		Sessions:    rows,
	}, nil
}
