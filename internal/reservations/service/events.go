package service

import (
	"context"

	"github.com/timschopinski/hotel-management-system/pkg/kafka"
	"github.com/timschopinski/hotel-management-system/pkg/model"
)

const (
	EventReservationCreated = "reservation.created"
	EventReservationUpdated = "reservation.updated"

	eventSource = "reservations-service"
)

// EventPublisher is satisfied by the Kafka producer. A nil publisher means
// eventing is disabled and publishes are skipped.
type EventPublisher interface {
	Publish(ctx context.Context, message kafka.Message) error
}

// publishEvent emits a domain event keyed by room id. Publishing is best
// effort: the reservation is already committed, so a broker failure is
// logged and swallowed.
func (s *reservationService) publishEvent(ctx context.Context, eventType string, reservation *model.Reservation) {
	if s.events == nil {
		return
	}

	message, err := kafka.NewEventMessage(eventType, reservation.RoomID, eventSource, reservation)
	if err != nil {
		s.cfg.Log.Error("Failed to build event message", "event_type", eventType, "error", err)
		return
	}

	if err := s.events.Publish(ctx, message); err != nil {
		s.cfg.Log.Error("Failed to publish event", "event_type", eventType, "error", err)
	}
}
