package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"github.com/harshil90956/CRM-backend/backend/shared/go-models"
	"github.com/harshil90956/CRM-backend/backend/shared/go-utils"
	"github.com/sirupsen/logrus"
)

// Lifecycle event types published after a command commits.
const (
	EventBookingCreated         = "booking.created"
	EventBookingStatusChanged   = "booking.status_changed"
	EventPaymentCreated         = "payment.created"
	EventPaymentUpdated         = "payment.updated"
	EventPaymentCascadeRefunded = "payment.cascade_refunded"
)

type LifecycleEvent struct {
	Type       string     `json:"type"`
	TenantID   string     `json:"tenant_id"`
	UnitID     uuid.UUID  `json:"unit_id"`
	BookingID  uuid.UUID  `json:"booking_id"`
	PaymentID  *uuid.UUID `json:"payment_id,omitempty"`
	From       string     `json:"from,omitempty"`
	To         string     `json:"to"`
	ActorID    string     `json:"actor_id,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}

// EventPublisher delivers lifecycle events. Publishing is fire-and-forget:
// failures are logged and never surface to the command.
type EventPublisher interface {
	Publish(ctx context.Context, evt LifecycleEvent)
}

type NoopEventPublisher struct{}

func (NoopEventPublisher) Publish(context.Context, LifecycleEvent) {}

// KafkaEventPublisher writes events to one topic keyed by booking id, so all
// events of a booking land on the same partition in order.
type KafkaEventPublisher struct {
	producer sarama.AsyncProducer
	topic    string
}

func NewKafkaEventPublisher(producer sarama.AsyncProducer, topic string) *KafkaEventPublisher {
	// Handle errors in separate goroutine
	go func() {
		for err := range producer.Errors() {
			utils.Logger.WithError(err.Err).Warn("Failed to send Kafka lifecycle event")
		}
	}()
	return &KafkaEventPublisher{producer: producer, topic: topic}
}

func (p *KafkaEventPublisher) Publish(ctx context.Context, evt LifecycleEvent) {
	payload, err := json.Marshal(evt)
	if err != nil {
		utils.Logger.WithError(err).Error("Failed to marshal lifecycle event")
		return
	}
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(evt.BookingID.String()),
		Value: sarama.ByteEncoder(payload),
	}
	select {
	case p.producer.Input() <- msg:
		utils.Logger.WithFields(logrus.Fields{
			"type":       evt.Type,
			"booking_id": evt.BookingID,
		}).Debug("Lifecycle event queued")
	case <-ctx.Done():
		utils.Logger.WithError(ctx.Err()).Warnf("Dropped lifecycle event %s", evt.Type)
	}
}

func bookingEvent(ctx context.Context, typ string, b *models.Booking, from *models.BookingStatus) LifecycleEvent {
	evt := LifecycleEvent{
		Type:       typ,
		TenantID:   b.TenantID,
		UnitID:     b.UnitID,
		BookingID:  b.ID,
		To:         string(b.Status),
		ActorID:    utils.StaffIDFromContext(ctx),
		OccurredAt: time.Now().UTC(),
	}
	if from != nil {
		evt.From = string(*from)
	}
	return evt
}

func paymentEvent(ctx context.Context, typ string, p *models.Payment, from *models.PaymentStatus) LifecycleEvent {
	id := p.ID
	evt := LifecycleEvent{
		Type:       typ,
		TenantID:   p.TenantID,
		UnitID:     p.UnitID,
		BookingID:  p.BookingID,
		PaymentID:  &id,
		To:         string(p.Status),
		ActorID:    utils.StaffIDFromContext(ctx),
		OccurredAt: time.Now().UTC(),
	}
	if from != nil {
		evt.From = string(*from)
	}
	return evt
}
