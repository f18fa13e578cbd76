package settlement

import "time"

// EvaluationApproved is the result that makes a client billable.
const EvaluationApproved = "approved"

// ClientRecord is a client as seen by billing.
type ClientRecord struct {
	ID          string
	Name        string
	Sessions    []SessionRecord
	Evaluations []EvaluationRecord
}

// SessionRecord is a scheduled session as seen by billing.
type SessionRecord struct {
	Number    int
	Date      time.Time
	Completed bool
}

// EvaluationRecord is a trainer evaluation as seen by billing.
type EvaluationRecord struct {
	ID        string
	ClientID  string
	TrainerID string
	Result    string
	CreatedAt time.Time
}

// BillableTo reports whether the client holds an approved evaluation by the trainer.
func (c ClientRecord) BillableTo(trainerID string) bool {
	if trainerID == "" {
		return false
	}
	for _, eval := range c.Evaluations {
		if eval.TrainerID == trainerID && eval.Result == EvaluationApproved {
			return true
		}
	}
	return false
}
