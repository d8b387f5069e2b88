package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"smartq/internal/models"
)

// Queue event types published to the queue events topic. Downstream
// notification services consume these; delivery to end users is their
// problem, not ours.
const (
	EventQueueJoined  = "queue.joined"
	EventQueueUpdated = "queue.updated"
	EventQueueLeft    = "queue.left"
)

type QueueEvent struct {
	Type       string            `json:"type"`
	SalonID    string            `json:"salon_id"`
	Entry      models.QueueEntry `json:"entry"`
	OccurredAt time.Time         `json:"occurred_at"`
}

type Producer struct {
	Writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers: brokers,
		Topic:   topic,
	})
	return &Producer{Writer: writer}
}

func (p *Producer) publish(eventType string, entry models.QueueEntry) error {
	event := QueueEvent{
		Type:       eventType,
		SalonID:    entry.SalonID,
		Entry:      entry,
		OccurredAt: time.Now(),
	}

	msgBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}

	// Keyed by salon so one salon's events stay ordered on a partition.
	return p.Writer.WriteMessages(context.Background(),
		kafka.Message{
			Key:   []byte(entry.SalonID),
			Value: msgBytes,
		},
	)
}

func (p *Producer) PublishQueueJoined(entry models.QueueEntry) error {
	return p.publish(EventQueueJoined, entry)
}

func (p *Producer) PublishQueueUpdated(entry models.QueueEntry) error {
	return p.publish(EventQueueUpdated, entry)
}

func (p *Producer) PublishQueueLeft(entry models.QueueEntry) error {
	return p.publish(EventQueueLeft, entry)
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}
