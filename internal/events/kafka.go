// Package events publishes order lifecycle events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/MikeMC777/shop-service/internal/apperr"
	"github.com/MikeMC777/shop-service/internal/order"
)

const TypeOrderPlaced = "order.placed"

// OrderPlacedEvent is the message value. Amounts are decimal strings.
type OrderPlacedEvent struct {
	EventID    string      `json:"event_id"`
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	OrderID    string      `json:"order_id"`
	UserID     string      `json:"user_id"`
	Total      string      `json:"total"`
	Items      []EventLine `json:"items"`
}

type EventLine struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
	now    func() time.Time
}

func NewKafkaPublisher(brokers []string, topic string, log *slog.Logger) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		BatchSize:              10,
		BatchTimeout:           50 * time.Millisecond,
		WriteTimeout:           5 * time.Second,
		AllowAutoTopicCreation: true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				log.Warn("kafka producer error", slog.Int("messages", len(messages)), slog.Any("err", err))
			}
		},
	}
	return newKafkaPublisher(w)
}

func newKafkaPublisher(w messageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: w, now: time.Now}
}

// OrderPlaced writes one message keyed by user id, so a user's orders stay in one partition.
func (p *KafkaPublisher) OrderPlaced(ctx context.Context, o order.Order) error {
	ev := OrderPlacedEvent{
		EventID:    uuid.NewString(),
		Type:       TypeOrderPlaced,
		OccurredAt: p.now().UTC(),
		OrderID:    o.ID,
		UserID:     o.UserID,
		Total:      o.Total.StringFixed(2),
		Items:      make([]EventLine, 0, len(o.Items)),
	}
	for _, it := range o.Items {
		ev.Items = append(ev.Items, EventLine{ProductID: it.ProductID, Quantity: it.Quantity, Price: it.Price.StringFixed(2)})
	}

	value, err := json.Marshal(ev)
	if err != nil {
		return apperr.Wrap("events.OrderPlaced", err)
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(o.UserID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(TypeOrderPlaced)},
		},
	})
	return apperr.Wrap("events.OrderPlaced", err)
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// Nop discards events; used when no brokers are configured.
type Nop struct{}

func (Nop) OrderPlaced(context.Context, order.Order) error { return nil }
