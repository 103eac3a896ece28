// Package events carries calendar lifecycle notifications between instances.
package events

import (
	"context"
	"time"

	"vistoria/pkg/kafka"
	"vistoria/pkg/logger"
)

type Type string

const (
	BookingScheduled    Type = "booking.scheduled"
	BookingMoved        Type = "booking.moved"
	BookingCancelled    Type = "booking.cancelled"
	ReconciliationAlert Type = "ledger.reconciliation_alert"
	EquipmentUpdated    Type = "equipment.updated"
)

const SchemaVersion = "1"

type Event struct {
	Type              Type      `json:"type"`
	EquipmentID       string    `json:"equipment_id"`
	BookingID         string    `json:"booking_id,omitempty"`
	TransitionID      string    `json:"transition_id,omitempty"`
	PreviousRemaining int64     `json:"previous_remaining"`
	NextRemaining     int64     `json:"next_remaining"`
	Start             time.Time `json:"start"`
	End               time.Time `json:"end"`
	Reason            string    `json:"reason,omitempty"`
	OccurredAt        time.Time `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NopPublisher is used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

func (NopPublisher) Close() error { return nil }

type KafkaPublisher struct {
	producer *kafka.Producer
	source   string
}

// NewKafkaPublisher tags every message with source so the sending instance
// can recognise its own events.
func NewKafkaPublisher(producer *kafka.Producer, source string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, source: source}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	msg, err := kafka.NewMessage().
		WithKey(event.EquipmentID).
		WithValue(event).
		WithEventType(string(event.Type)).
		WithSource(p.source).
		WithSchemaVersion(SchemaVersion).
		Build()
	if err != nil {
		return err
	}
	return p.producer.Publish(ctx, msg)
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

type Refresher interface {
	Refresh(ctx context.Context, trigger string) error
}

// Listener reloads the local snapshot when another instance changed the calendar.
type Listener struct {
	source    string
	refresher Refresher
	log       *logger.Logger
}

func NewListener(source string, refresher Refresher, log *logger.Logger) *Listener {
	return &Listener{source: source, refresher: refresher, log: log}
}

func (l *Listener) Handle(ctx context.Context, msg kafka.Message) error {
	if msg.GetSource() == l.source {
		return nil
	}

	var event Event
	if err := msg.DecodeValue(&event); err != nil {
		return kafka.NewPermanentError("undecodable calendar event", err)
	}

	switch event.Type {
	case BookingScheduled, BookingMoved, BookingCancelled, EquipmentUpdated:
		return l.refresher.Refresh(ctx, "event")
	case ReconciliationAlert:
		l.log.Warn("Reconciliation alert received from another instance",
			"source", msg.GetSource(),
			"equipment_id", event.EquipmentID,
			"transition_id", event.TransitionID,
			"reason", event.Reason,
		)
		return l.refresher.Refresh(ctx, "event")
	default:
		l.log.Debug("Ignoring unknown calendar event", "event_type", event.Type)
		return nil
	}
}
