package eventing

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Event is a domain event that can be written to the outbox.
type Event interface {
	EventType() string
	SubjectID() string
	EventTime() time.Time
}

// Keyed events carry their own stable id, used when Meta has none.
type Keyed interface {
	EventID() string
}

// Envelope wraps event payload with metadata.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	OccurredAt    time.Time       `json:"occurred_at"`
	CorrelationID string          `json:"correlation_id"`
	SubjectID     string          `json:"subject_id"`
	SchemaVersion int             `json:"schema_version"`
	Payload       json.RawMessage `json:"payload"`
}

// Meta provides envelope overrides.
type Meta struct {
	EventID       string
	CorrelationID string
	SchemaVersion int
}

// BuildEnvelope constructs an envelope from an event and metadata.
func BuildEnvelope(event Event, meta Meta) (Envelope, error) {
	if event == nil {
		return Envelope{}, errors.New("eventing: nil event")
	}
	if event.EventType() == "" {
		return Envelope{}, errors.New("eventing: empty event type")
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return Envelope{}, err
	}

	env := Envelope{
		EventID:       meta.EventID,
		EventType:     event.EventType(),
		OccurredAt:    event.EventTime().UTC(),
		CorrelationID: meta.CorrelationID,
		SubjectID:     event.SubjectID(),
		SchemaVersion: meta.SchemaVersion,
		Payload:       payload,
	}
	if keyed, ok := event.(Keyed); ok && env.EventID == "" {
		env.EventID = keyed.EventID()
	}
	if env.EventID == "" {
		env.EventID = NewEventID()
	}
	if env.CorrelationID == "" {
		env.CorrelationID = env.EventID
	}
	if env.OccurredAt.IsZero() {
		env.OccurredAt = time.Now().UTC()
	}
	if env.SchemaVersion == 0 {
		env.SchemaVersion = 1
	}
	return env, nil
}

// NewEventID generates a random event identifier.
func NewEventID() string {
	return uuid.NewString()
}
