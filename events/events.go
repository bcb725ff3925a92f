// Package events publishes domain events to a broker after state changes commit.
package events

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"restaurant-ordering-api/logger"

	"github.com/google/uuid"
)

const (
	OrderCreated             = "order.created"
	OrderStatusChanged       = "order.status_changed"
	OrderCancelled           = "order.cancelled"
	PaymentCompleted         = "payment.completed"
	PaymentFailed            = "payment.failed"
	PaymentRefunded          = "payment.refunded"
	ReservationCreated       = "reservation.created"
	ReservationStatusChanged = "reservation.status_changed"
	DeliveryCreated          = "delivery.created"
	DeliveryStatusChanged    = "delivery.status_changed"
)

type Event struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	AggregateID uint      `json:"aggregateId"`
	Data        any       `json:"data"`
	OccurredAt  time.Time `json:"occurredAt"`
}

func New(eventType string, aggregateID uint, data any) Event {
	return Event{
		ID:          uuid.NewString(),
		Type:        eventType,
		AggregateID: aggregateID,
		Data:        data,
		OccurredAt:  time.Now().UTC(),
	}
}

// Aggregate is the entity name in front of the dot, e.g. "order".
func (e Event) Aggregate() string {
	agg, _, _ := strings.Cut(e.Type, ".")
	return agg
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// LogPublisher writes events to the structured log. It is the default
// backend when no broker is configured.
type LogPublisher struct {
	log *logger.Logger
}

func NewLogPublisher(log *logger.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(_ context.Context, e Event) error {
	p.log.Info("event_published", "", e.Type,
		slog.String("event_id", e.ID),
		slog.Uint64("aggregate_id", uint64(e.AggregateID)))
	return nil
}

func (p *LogPublisher) Close() error { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *Recorder) Close() error { return nil }

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Types lists the recorded event types in publish order.
func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}
