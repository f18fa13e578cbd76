package eventing

import (
	"context"
	"testing"
	"time"
)

type sampleEvent struct {
	ClientID string    `json:"client_id"`
	At       time.Time `json:"at"`
}

func (e sampleEvent) EventType() string { return "test.sample" }
func (e sampleEvent) SubjectID() string { return e.ClientID }
func (e sampleEvent) EventTime() time.Time { return e.At }

func TestBuildEnvelope_Defaults(t *testing.T) {
	at := time.Date(2024, time.May, 2, 9, 0, 0, 0, time.FixedZone("CEST", 2*3600))
	env, err := BuildEnvelope(sampleEvent{ClientID: "c-1", At: at}, Meta{})
	if err != nil {
		t.Fatalf("build envelope: %v", err)
	}
	if env.EventType != "test.sample" || env.SubjectID != "c-1" {
		t.Fatalf("unexpected envelope %+v", env)
	}
	if env.EventID == "" || env.CorrelationID != env.EventID {
		t.Fatalf("expected correlation to default to event id, got %+v", env)
	}
	if env.OccurredAt.Location() != time.UTC || !env.OccurredAt.Equal(at) {
		t.Fatalf("unexpected occurred_at %s", env.OccurredAt)
	}
	if env.SchemaVersion != 1 {
		t.Fatalf("unexpected schema version %d", env.SchemaVersion)
	}
}

func TestBuildEnvelope_ZeroTimeUsesNow(t *testing.T) {
	before := time.Now().UTC()
	env, err := BuildEnvelope(sampleEvent{ClientID: "c-1"}, Meta{CorrelationID: "req-1"})
	if err != nil {
		t.Fatalf("build envelope: %v", err)
	}
	if env.OccurredAt.Before(before) || env.CorrelationID != "req-1" {
		t.Fatalf("unexpected envelope %+v", env)
	}
}

func TestBuildEnvelope_NilEvent(t *testing.T) {
	if _, err := BuildEnvelope(nil, Meta{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestPublisher_IgnoresDuplicateEventID(t *testing.T) {
	outbox := &MemoryOutbox{}
	publisher, err := NewPublisher(outbox)
	if err != nil {
		t.Fatalf("new publisher: %v", err)
	}
	ctx := WithEventID(context.Background(), "evt-1")
	for i := 0; i < 2; i++ {
		if _, err := publisher.Publish(ctx, sampleEvent{ClientID: "c-1"}); err != nil {
			t.Fatalf("publish: %v", err)
		}
	}
	if got := len(outbox.Records()); got != 1 {
		t.Fatalf("expected 1 record, got %d", got)
	}
}
