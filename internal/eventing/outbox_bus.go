package eventing

import (
	"context"
	"errors"
	"sync"
)

// OutboxRecord is a stored envelope awaiting delivery.
type OutboxRecord struct {
	ID       string
	Envelope Envelope
}

// OutboxWriter inserts outbox records.
type OutboxWriter interface {
	Insert(ctx context.Context, env Envelope) (string, error)
}

// Publisher writes events to the outbox. Delivery to downstream
// consumers (notifications, reporting) reads the outbox separately.
type Publisher struct {
	outbox OutboxWriter
}

// NewPublisher constructs a publisher.
func NewPublisher(outbox OutboxWriter) (*Publisher, error) {
	if outbox == nil {
		return nil, errors.New("eventing: nil outbox")
	}
	return &Publisher{outbox: outbox}, nil
}

// Publish wraps the event in an envelope and writes it to the outbox.
func (p *Publisher) Publish(ctx context.Context, event Event) (Envelope, error) {
	if p == nil || p.outbox == nil {
		return Envelope{}, errors.New("eventing: nil publisher")
	}
	env, err := BuildEnvelope(event, MetaFromContext(ctx))
	if err != nil {
		return Envelope{}, err
	}
	if _, err := p.outbox.Insert(ctx, env); err != nil {
		return Envelope{}, err
	}
	return env, nil
}

// MemoryOutbox keeps envelopes in memory.
type MemoryOutbox struct {
	mu      sync.Mutex
	records []OutboxRecord
}

// Insert stores the envelope. Duplicate event ids are ignored.
func (m *MemoryOutbox) Insert(ctx context.Context, env Envelope) (string, error) {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, record := range m.records {
		if record.Envelope.EventID == env.EventID {
			return record.ID, nil
		}
	}
	id := NewEventID()
	m.records = append(m.records, OutboxRecord{ID: id, Envelope: env})
	return id, nil
}

// Records returns a snapshot of stored records.
func (m *MemoryOutbox) Records() []OutboxRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]OutboxRecord, len(m.records))
	copy(out, m.records)
	return out
}
