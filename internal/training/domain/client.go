package training

import "time"

// Client statuses.
const (
	ClientStatusActive    = "active"
	ClientStatusEvaluated = "evaluated"
	ClientStatusFinished  = "finished"
)

// Evaluation results.
const (
	EvaluationApproved = "approved"
	EvaluationPending  = "pending"
)

// Client is a dog (and its owner) enrolled in the training program.
type Client struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Breed       string       `json:"breed"`
	Status      string       `json:"status"`
	CityID      string       `json:"city_id,omitempty"`
	Sessions    []Session    `json:"sessions"`
	Evaluations []Evaluation `json:"evaluations"`
}

// Evaluation is the intake assessment a trainer performs on a client.
type Evaluation struct {
	ID        string    `json:"id"`
	ClientID  string    `json:"client_id"`
	TrainerID string    `json:"adiestrador_id"`
	Result    string    `json:"result"`
	CreatedAt time.Time `json:"created_at"`
}

// IsApproved reports whether the evaluation approved the client.
func (e Evaluation) IsApproved() bool { return e.Result == EvaluationApproved }

// ApprovedBy reports whether the client holds an approved evaluation from the trainer.
func (c Client) ApprovedBy(trainerID string) bool {
	if trainerID == "" {
		return false
	}
	for _, eval := range c.Evaluations {
		if eval.TrainerID == trainerID && eval.IsApproved() {
			return true
		}
	}
	return false
}

// IsFinished reports whether the client completed the program.
func (c Client) IsFinished() bool { return c.Status == ClientStatusFinished }
