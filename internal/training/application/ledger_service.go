package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"dogschool-admin/internal/observability/metrics"
	training "dogschool-admin/internal/training/domain"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// ScheduleSessionInput contains the information needed to schedule a session.
// A zero SessionNumber assigns the next free slot.
type ScheduleSessionInput struct {
	ClientID      string `json:"client_id" validate:"required"`
	SessionNumber int    `json:"session_number" validate:"omitempty,min=1,max=8"`
	Date          string `json:"date" validate:"required,datetime=2006-01-02"`
	Time          string `json:"time" validate:"omitempty,datetime=15:04"`
	Comments      string `json:"comments" validate:"max=2000"`
}

// ProgramFinished is emitted when a client's last session is completed.
type ProgramFinished struct {
	ClientID   string    `json:"client_id"`
	SessionID  string    `json:"session_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventID is derived from the client so every retry yields the same id.
func (e ProgramFinished) EventID() string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("dogschool:training.program_finished:"+e.ClientID)).String()
}

// EventType names the event in the outbox.
func (e ProgramFinished) EventType() string { return "training.program_finished" }

// SubjectID is the finished client.
func (e ProgramFinished) SubjectID() string { return e.ClientID }

// EventTime is when the last session was completed.
func (e ProgramFinished) EventTime() time.Time { return e.OccurredAt }

// ProgramPublisher emits program finished events.
type ProgramPublisher interface {
	PublishProgramFinished(ctx context.Context, event ProgramFinished) error
}

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock uses time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// ClientLedger is the scheduling view of one client.
type ClientLedger struct {
	Client     training.Client    `json:"client"`
	Sessions   []training.Session `json:"sessions"`
	Progress   training.Progress  `json:"progress"`
	NextNumber int                `json:"next_session_number,omitempty"`
}

// LedgerService handles session scheduling and completion.
type LedgerService struct {
	clients   training.ClientRepository
	sessions  training.SessionRepository
	publisher ProgramPublisher
	clock     Clock
	location  *time.Location
}

// LedgerOption configures the service.
type LedgerOption func(*LedgerService)

// WithPublisher sets the program finished publisher.
func WithPublisher(publisher ProgramPublisher) LedgerOption {
	return func(s *LedgerService) {
		s.publisher = publisher
	}
}

// WithClock overrides the clock.
func WithClock(clock Clock) LedgerOption {
	return func(s *LedgerService) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLocation sets the location used to interpret scheduled dates.
func WithLocation(loc *time.Location) LedgerOption {
	return func(s *LedgerService) {
		if loc != nil {
			s.location = loc
		}
	}
}

// NewLedgerService constructs the service.
func NewLedgerService(clients training.ClientRepository, sessions training.SessionRepository, opts ...LedgerOption) (*LedgerService, error) {
	if clients == nil {
		return nil, errors.New("ledger service: nil client repository")
	}
	if sessions == nil {
		return nil, errors.New("ledger service: nil session repository")
	}
	s := &LedgerService{
		clients:  clients,
		sessions: sessions,
		clock:    SystemClock{},
		location: time.UTC,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ScheduleSession validates the input and persists a new, not yet completed session.
func (s *LedgerService) ScheduleSession(ctx context.Context, in ScheduleSessionInput) (*training.Session, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveSessionCommand("schedule", result, time.Since(start))
	}()

	in.ClientID = strings.TrimSpace(in.ClientID)
	in.Date = strings.TrimSpace(in.Date)
	in.Time = strings.TrimSpace(in.Time)
	in.Comments = strings.TrimSpace(in.Comments)
	if err := validateStruct(in); err != nil {
		result = metrics.ResultError
		return nil, err
	}

	date, err := s.parseSchedule(in.Date, in.Time)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}

	client, err := s.clients.GetClient(ctx, in.ClientID)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	if client == nil {
		result = metrics.ResultError
		return nil, training.ErrClientNotFound
	}

	existing, err := s.sessions.ListByClient(ctx, in.ClientID)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	used := training.SessionNumbers(existing)

	number := in.SessionNumber
	if number == 0 {
		next, ok := training.NextAvailableSessionNumber(used)
		if !ok {
			result = metrics.ResultError
			return nil, training.NewValidationError(nil, training.FieldError{
				Field: "session_number",
				Error: fmt.Sprintf("all %d sessions are already scheduled", training.MaxSessions),
			})
		}
		number = next
	} else if _, taken := used[number]; taken {
		result = metrics.ResultError
		return nil, sessionNumberTaken(number, training.ErrSessionNumberTaken)
	}

	session := training.Session{
		ID:            uuid.NewString(),
		ClientID:      in.ClientID,
		SessionNumber: number,
		Date:          date,
		Completed:     false,
		Comments:      in.Comments,
	}
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		result = metrics.ResultError
		if errors.Is(err, training.ErrSessionNumberTaken) {
			return nil, sessionNumberTaken(number, err)
		}
		return nil, err
	}
	return &session, nil
}

// MarkCompleted flips a session to completed. Completing session 8 finishes the
// client's program even when earlier sessions are still open.
func (s *LedgerService) MarkCompleted(ctx context.Context, sessionID string) (*training.Session, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveSessionCommand("complete", result, time.Since(start))
	}()

	if sessionID == "" {
		result = metrics.ResultError
		return nil, training.ErrEmptySessionID
	}
	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		result = metrics.ResultError
		return nil, err
	}
	if session == nil {
		result = metrics.ResultError
		return nil, training.ErrSessionNotFound
	}

	if !session.Completed {
		if err := s.sessions.MarkSessionCompleted(ctx, session.ID); err != nil {
			result = metrics.ResultError
			return nil, err
		}
		session.Completed = true
	}
	if !session.FinishesProgram() {
		return session, nil
	}

	client, err := s.clients.GetClient(ctx, session.ClientID)
	if err != nil {
		result = metrics.ResultError
		return session, fmt.Errorf("training: load client %s: %w", session.ClientID, err)
	}
	if client == nil {
		result = metrics.ResultError
		return session, fmt.Errorf("training: finish client %s: %w", session.ClientID, training.ErrClientNotFound)
	}
	if client.IsFinished() {
		return session, nil
	}

	// published before the status write; a retry republishes under the same event id.
	if s.publisher != nil {
		if err := s.publisher.PublishProgramFinished(ctx, ProgramFinished{
			ClientID:   session.ClientID,
			SessionID:  session.ID,
			OccurredAt: s.clock.Now(),
		}); err != nil {
			result = metrics.ResultError
			return session, err
		}
	}
	// not transactional: the session stays completed if this write fails.
	if err := s.clients.UpdateClientStatus(ctx, session.ClientID, training.ClientStatusFinished); err != nil {
		result = metrics.ResultError
		return session, fmt.Errorf("training: finish client %s: %w", session.ClientID, err)
	}
	metrics.IncProgramFinished()
	return session, nil
}

// Progress returns how many of the client's sessions are completed.
func (s *LedgerService) Progress(ctx context.Context, clientID string) (training.Progress, error) {
	if clientID == "" {
		return training.Progress{}, training.ErrEmptyClientID
	}
	sessions, err := s.sessions.ListByClient(ctx, clientID)
	if err != nil {
		return training.Progress{}, err
	}
	return training.ProgressOf(sessions), nil
}

// ClientLedger returns a client with its ordered sessions, progress and next free slot.
func (s *LedgerService) ClientLedger(ctx context.Context, clientID string) (*ClientLedger, error) {
	if clientID == "" {
		return nil, training.ErrEmptyClientID
	}
	client, err := s.clients.GetClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, training.ErrClientNotFound
	}
	sessions, err := s.sessions.ListByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	training.SortByNumber(sessions)
	next, _ := training.NextAvailableSessionNumber(training.SessionNumbers(sessions))
	return &ClientLedger{
		Client:     *client,
		Sessions:   sessions,
		Progress:   training.ProgressOf(sessions),
		NextNumber: next,
	}, nil
}

func sessionNumberTaken(number int, err error) error {
	return training.NewValidationError(err, training.FieldError{
		Field: "session_number",
		Error: fmt.Sprintf("session %d is already scheduled for this client", number),
	})
}

func (s *LedgerService) parseSchedule(date, clock string) (time.Time, error) {
	day, err := time.ParseInLocation(dateLayout, date, s.location)
	if err != nil {
		return time.Time{}, training.NewValidationError(err, training.FieldError{Field: "date", Error: "date must be YYYY-MM-DD"})
	}
	if clock == "" {
		return day, nil
	}
	at, err := time.ParseInLocation(timeLayout, clock, s.location)
	if err != nil {
		return time.Time{}, training.NewValidationError(err, training.FieldError{Field: "time", Error: "time must be HH:MM"})
	}
	return day.Add(time.Duration(at.Hour())*time.Hour + time.Duration(at.Minute())*time.Minute), nil
}
