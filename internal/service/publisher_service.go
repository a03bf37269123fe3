package service

import (
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"support-chat-be/pkg/events"
)

// IPublisherService puts audit events on the in-process bus. The gateway
// never talks to NATS directly; the audit consumer does, so a slow or
// absent broker cannot stall an RPC.
type IPublisherService interface {
	Publish(eventType string, payload map[string]interface{}) error
}

type publisherService struct {
	topicName string
	pubSub    *gochannel.GoChannel
}

func NewPublisherService(topicName string, pubSub *gochannel.GoChannel) IPublisherService {
	return &publisherService{
		topicName: topicName,
		pubSub:    pubSub,
	}
}

func (s *publisherService) Publish(eventType string, payload map[string]interface{}) error {
	evt := events.BaseEvent{
		Type:       eventType,
		Data:       payload,
		OccurredAt: time.Now(),
	}

	data, err := json.Marshal(map[string]interface{}{
		"type":        evt.Type,
		"data":        evt.Data,
		"occurred_at": evt.OccurredAt,
	})
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	return s.pubSub.Publish(s.topicName, msg)
}
