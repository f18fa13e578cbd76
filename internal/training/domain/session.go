package training

import (
	"sort"
	"time"
)

// MaxSessions is the number of session slots in the program.
const MaxSessions = 8

// Session is one scheduled training slot of a client.
type Session struct {
	ID            string    `json:"id"`
	ClientID      string    `json:"client_id"`
	SessionNumber int       `json:"session_number"`
	Date          time.Time `json:"date"`
	Completed     bool      `json:"completed"`
	Comments      string    `json:"comments,omitempty"`
}

// FinishesProgram reports whether completing this session finishes the client's program.
// Only the last slot triggers it; earlier slots are not checked.
func (s Session) FinishesProgram() bool { return s.SessionNumber == MaxSessions }

// Progress is the completion progress of a client's program.
type Progress struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// NextAvailableSessionNumber returns the smallest number in 1..MaxSessions not in existing.
// ok is false when every slot is taken.
func NextAvailableSessionNumber(existing map[int]struct{}) (int, bool) {
	for n := 1; n <= MaxSessions; n++ {
		if _, taken := existing[n]; !taken {
			return n, true
		}
	}
	return 0, false
}

// SessionNumbers collects the numbers used by sessions.
func SessionNumbers(sessions []Session) map[int]struct{} {
	set := make(map[int]struct{}, len(sessions))
	for _, s := range sessions {
		set[s.SessionNumber] = struct{}{}
	}
	return set
}

// ProgressOf counts completed sessions.
func ProgressOf(sessions []Session) Progress {
	var completed int
	for _, s := range sessions {
		if s.Completed {
			completed++
		}
	}
	return Progress{Completed: completed, Total: MaxSessions}
}

// SortByNumber orders sessions by session number, then date.
func SortByNumber(sessions []Session) {
	sort.SliceStable(sessions, func(i, j int) bool {
		if sessions[i].SessionNumber != sessions[j].SessionNumber {
			return sessions[i].SessionNumber < sessions[j].SessionNumber
		}
		return sessions[i].Date.Before(sessions[j].Date)
	})
}
