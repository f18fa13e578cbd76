package interfaces

import (
	"context"
	"errors"
	"log"
	"time"

	"dogschool-admin/internal/eventing"
	"dogschool-admin/internal/training/application"
)

// EventPublisher writes events to a durable outbox.
type EventPublisher interface {
	Publish(ctx context.Context, event eventing.Event) (eventing.Envelope, error)
}

// OutboxPublisher records program finished events in the outbox and logs them.
type OutboxPublisher struct {
	events EventPublisher
	logger *log.Logger
}

// NewOutboxPublisher constructs an outbox publisher.
func NewOutboxPublisher(events EventPublisher, logger *log.Logger) (*OutboxPublisher, error) {
	if events == nil {
		return nil, errors.New("ledger publisher: nil event publisher")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &OutboxPublisher{events: events, logger: logger}, nil
}

// PublishProgramFinished writes the event to the outbox.
func (p *OutboxPublisher) PublishProgramFinished(ctx context.Context, event application.ProgramFinished) error {
	if p == nil {
		return errors.New("ledger publisher: nil publisher")
	}
	env, err := p.events.Publish(ctx, event)
	if err != nil {
		return err
	}
	p.logger.Printf("program finished: client=%s session=%s at=%s event=%s", event.ClientID, event.SessionID, event.OccurredAt.Format(time.RFC3339), env.EventID)
	return nil
}
