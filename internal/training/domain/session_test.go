package training

import (
	"testing"
	"time"
)

func TestNextAvailableSessionNumber(t *testing.T) {
	cases := []struct {
		name     string
		existing []int
		want     int
		ok       bool
	}{
		{name: "empty", existing: nil, want: 1, ok: true},
		{name: "gap", existing: []int{1, 2, 4}, want: 3, ok: true},
		{name: "gap at start", existing: []int{2, 3}, want: 1, ok: true},
		{name: "full", existing: []int{1, 2, 3, 4, 5, 6, 7, 8}, want: 0, ok: false},
		{name: "last slot", existing: []int{1, 2, 3, 4, 5, 6, 7}, want: 8, ok: true},
	}
	for _, tc := range cases {
		set := make(map[int]struct{})
		for _, n := range tc.existing {
			set[n] = struct{}{}
		}
		got, ok := NextAvailableSessionNumber(set)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("%s: got (%d,%v) want (%d,%v)", tc.name, got, ok, tc.want, tc.ok)
		}
	}
}

func TestProgressOf(t *testing.T) {
	sessions := []Session{
		{SessionNumber: 1, Completed: true},
		{SessionNumber: 2, Completed: true},
		{SessionNumber: 3},
	}
	got := ProgressOf(sessions)
	if got.Completed != 2 || got.Total != MaxSessions {
		t.Fatalf("unexpected progress %+v", got)
	}
}

func TestSortByNumber(t *testing.T) {
	day := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	sessions := []Session{
		{ID: "c", SessionNumber: 3, Date: day},
		{ID: "a", SessionNumber: 1, Date: day.AddDate(0, 0, 5)},
		{ID: "b", SessionNumber: 2, Date: day.AddDate(0, 0, -3)},
	}
	SortByNumber(sessions)
	if sessions[0].ID != "a" || sessions[1].ID != "b" || sessions[2].ID != "c" {
		t.Fatalf("unexpected order %s %s %s", sessions[0].ID, sessions[1].ID, sessions[2].ID)
	}
}

func TestClientApprovedBy(t *testing.T) {
	client := Client{
		ID: "c-1",
		Evaluations: []Evaluation{
			{TrainerID: "t-1", Result: EvaluationPending},
			{TrainerID: "t-2", Result: EvaluationApproved},
		},
	}
	if client.ApprovedBy("t-1") {
		t.Fatalf("pending evaluation must not make client billable")
	}
	if !client.ApprovedBy("t-2") {
		t.Fatalf("expected approved by t-2")
	}
	if client.ApprovedBy("") {
		t.Fatalf("empty trainer must not match")
	}
}

func TestFinishesProgram(t *testing.T) {
	if (Session{SessionNumber: 7}).FinishesProgram() {
		t.Fatalf("session 7 must not finish the program")
	}
	if !(Session{SessionNumber: 8}).FinishesProgram() {
		t.Fatalf("session 8 must finish the program")
	}
}
