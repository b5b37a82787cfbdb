package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Message is a producer-side Kafka message. Key selects the partition, so
// messages sharing a key keep their relative order.
type Message struct {
	Key       string
	Value     []byte
	Headers   map[string]string
	Timestamp time.Time
}

// Header keys attached to every published event.
const (
	HeaderEventID       = "event-id"
	HeaderEventType     = "event-type"
	HeaderSchemaVersion = "schema-version"
	HeaderSource        = "source"
)

// NewEventMessage builds a message for a domain event: JSON payload, the
// given partition key, and tracing headers with a fresh event id.
func NewEventMessage(eventType, key, source string, payload any) (Message, error) {
	value, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("failed to encode %s event: %w", eventType, err)
	}

	return Message{
		Key:       key,
		Value:     value,
		Timestamp: time.Now(),
		Headers: map[string]string{
			HeaderEventID:       uuid.NewString(),
			HeaderEventType:     eventType,
			HeaderSchemaVersion: "1",
			HeaderSource:        source,
		},
	}, nil
}
