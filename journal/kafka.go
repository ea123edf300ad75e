package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	models "retail-inventory/model"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageWriter is the part of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// OrderSettledEvent is the payload published for every settled order.
type OrderSettledEvent struct {
	OrderID   string           `json:"order_id"`
	Total     string           `json:"total"`
	Requested int              `json:"requested"`
	Fulfilled int              `json:"fulfilled"`
	Lines     []OrderLineEvent `json:"lines"`
	SettledAt time.Time        `json:"settled_at"`
}

type OrderLineEvent struct {
	Product   string `json:"product"`
	Quantity  int    `json:"quantity"`
	Amount    string `json:"amount"`
	Promotion string `json:"promotion,omitempty"`
	Error     string `json:"error,omitempty"`
}

// KafkaJournal publishes an OrderSettledEvent keyed by order id.
type KafkaJournal struct {
	writer MessageWriter
	logger *zap.Logger
}

// NewKafkaJournal creates a publisher writing to topic on broker.
func NewKafkaJournal(broker, topic string, logger *zap.Logger) *KafkaJournal {
	return NewKafkaJournalWithWriter(&kafka.Writer{
		Addr:         kafka.TCP(broker),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    100,
	}, logger)
}

func NewKafkaJournalWithWriter(w MessageWriter, logger *zap.Logger) *KafkaJournal {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KafkaJournal{writer: w, logger: logger}
}

func (k *KafkaJournal) Close() error { return k.writer.Close() }

func (k *KafkaJournal) RecordOrder(ctx context.Context, order models.Order) error {
	payload, err := json.Marshal(NewOrderSettledEvent(order))
	if err != nil {
		return fmt.Errorf("encoding order %s: %w", order.ID, err)
	}
	msg := kafka.Message{
		Key:   []byte(order.ID.String()),
		Value: payload,
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publishing order %s: %w", order.ID, err)
	}
	k.logger.Debug("order published", zap.String("order_id", order.ID.String()))
	return nil
}

func NewOrderSettledEvent(order models.Order) OrderSettledEvent {
	ev := OrderSettledEvent{
		OrderID:   order.ID.String(),
		Total:     order.Total.String(),
		Requested: order.Requested,
		Fulfilled: order.Fulfilled,
		Lines:     make([]OrderLineEvent, 0, len(order.Lines)),
		SettledAt: order.CreatedAt,
	}
	for _, l := range order.Lines {
		le := OrderLineEvent{
			Product:   l.Product,
			Quantity:  l.Quantity,
			Amount:    l.Amount.String(),
			Promotion: l.Promotion,
		}
		if l.Err != nil {
			le.Error = l.Err.Error()
		}
		ev.Lines = append(ev.Lines, le)
	}
	return ev
}
