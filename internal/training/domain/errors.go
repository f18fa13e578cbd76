package training

import "errors"

var (
	// ErrClientNotFound is returned when a client does not exist.
	ErrClientNotFound = errors.New("training: client not found")
	// ErrSessionNotFound is returned when a session does not exist.
	ErrSessionNotFound = errors.New("training: session not found")
	// ErrEmptyClientID is returned when a client id is empty.
	ErrEmptyClientID = errors.New("training: empty client id")
	// ErrSessionNumberTaken is returned when the client already has a session with that number.
	ErrSessionNumberTaken = errors.New("training: session number already scheduled")
	// ErrEmptySessionID is returned when a session id is empty.
	ErrEmptySessionID = errors.New("training: empty session id")
)

// FieldError is used to indicate an error with a specific input field.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// ValidationError blocks a command because its input is invalid.
type ValidationError struct {
	Err    error
	Fields []FieldError
}

// NewValidationError wraps err with the offending fields.
func NewValidationError(err error, fields ...FieldError) error {
	return &ValidationError{Err: err, Fields: fields}
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	if len(e.Fields) > 0 {
		return "training: invalid " + e.Fields[0].Field + ": " + e.Fields[0].Error
	}
	return "training: validation failed"
}

func (e *ValidationError) Unwrap() error { return e.Err }

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}
