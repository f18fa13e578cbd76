package settlement

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyTrainerID is returned when trainer id is empty.
	ErrEmptyTrainerID = errors.New("settlement: empty trainer id")
	// ErrInvalidMonth is returned when a month is not YYYY-MM.
	ErrInvalidMonth = errors.New("settlement: invalid month")
	// ErrNilSettlement is returned when saving a nil settlement.
	ErrNilSettlement = errors.New("settlement: nil settlement")
	// ErrSettlementNotFound is returned when a settlement is not found.
	ErrSettlementNotFound = errors.New("settlement: not found")
	// ErrSettlementExists is returned when a month was already recorded.
	ErrSettlementExists = errors.New("settlement: already recorded")
	// ErrInvalidStatus is returned on an unsupported status transition.
	ErrInvalidStatus = errors.New("settlement: invalid status")
	// ErrComputation is returned when pricing makes the arithmetic meaningless.
	ErrComputation = errors.New("settlement: computation error")
)

// ValidationError reports an invalid query or command field.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("settlement: invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// FetchError wraps a failed read against the data store.
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("settlement: fetch %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
