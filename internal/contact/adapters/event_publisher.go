package adapters

import (
	"context"
	"encoding/json"
	"fmt"

	"registro/internal/contact/models"
	"registro/internal/platform/kafka/producer"
	"registro/pkg/requestcontext"
)

// EventTypeRegistered is the event_type header of registration events.
const EventTypeRegistered = "contact.registered"

// AsyncProducer is the subset of the Kafka producer the publisher needs.
type AsyncProducer interface {
	ProduceAsync(msg *producer.Message) error
}

// EventPublisher announces stored contacts on a Kafka topic. Records are
// keyed by contact id and carry no personal data.
type EventPublisher struct {
	producer AsyncProducer
	topic    string
}

func NewEventPublisher(p AsyncProducer, topic string) *EventPublisher {
	return &EventPublisher{producer: p, topic: topic}
}

// PublishRegistered hands the event to the producer buffer. Delivery is
// asynchronous; only encoding and closed-producer errors are returned.
func (p *EventPublisher) PublishRegistered(ctx context.Context, contact *models.Contact) error {
	value, err := json.Marshal(models.NewRegisteredEvent(contact))
	if err != nil {
		return fmt.Errorf("encode registered event: %w", err)
	}

	headers := map[string]string{"event_type": EventTypeRegistered}
	if id := requestcontext.RequestID(ctx); id != "" {
		headers["request_id"] = id
	}

	msg := &producer.Message{
		Topic:   p.topic,
		Key:     []byte(contact.ID.String()),
		Value:   value,
		Headers: headers,
	}
	if err := p.producer.ProduceAsync(msg); err != nil {
		return fmt.Errorf("publish registered event: %w", err)
	}
	return nil
}

// NoopPublisher is used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishRegistered(context.Context, *models.Contact) error {
	return nil
}
