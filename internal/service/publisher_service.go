package service

import (
	"context"
	"encoding/json"

	"github.com/SpacksD/dulmar1-sub001/internal/dto"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// IPublisherService queues itinerary emails for the consumer service. It
// satisfies schedule.ItineraryNotifier.
type IPublisherService interface {
	RequestItinerary(ctx context.Context, subscriptionId uuid.UUID) error
}

type publisherService struct {
	topicName string
	publisher message.Publisher
}

func NewPublisherService(topicName string, publisher message.Publisher) IPublisherService {
	return &publisherService{
		topicName: topicName,
		publisher: publisher,
	}
}

func (ps *publisherService) RequestItinerary(ctx context.Context, subscriptionId uuid.UUID) error {
	payload, err := json.Marshal(dto.ItineraryRequestMessage{SubscriptionId: subscriptionId})
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	return ps.publisher.Publish(ps.topicName, msg)
}
