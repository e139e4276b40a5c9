/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package trivia

import "testing"

func openSession() *Session {
	s := NewSession()
	s.SetQuestion(Question{Value: 200, Question: "q", Answer: "a"}, "Science")
	s.Phase = PhaseQuestion
	return s
}

func TestNewSessionDefaults(t *testing.T) {
	s := NewSession()

	if s.Phase != PhaseLobby || !s.BuzzerLocked || !s.ScoringEnabled {
		t.Fatalf("unexpected initial session: %+v", s)
	}
	if got := s.Answered(); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil answered list, got %#v", got)
	}
}

func TestSessionAddBuzzOncePerPlayer(t *testing.T) {
	s := openSession()

	if !s.AddBuzz("a", "Alice", 1) {
		t.Fatal("expected first buzz accepted")
	}
	if s.AddBuzz("a", "Alice", 2) {
		t.Fatal("expected repeat buzz dropped")
	}
	if len(s.BuzzerOrder) != 1 {
		t.Fatalf("expected one entry, got %d", len(s.BuzzerOrder))
	}
}

func TestSessionAddBuzzLocked(t *testing.T) {
	s := openSession()
	s.BuzzerLocked = true

	if s.AddBuzz("a", "Alice", 1) || len(s.BuzzerOrder) != 0 {
		t.Fatal("expected locked buzzer to leave queue untouched")
	}

	s.BuzzerLocked = false
	s.Phase = PhasePlaying
	if s.AddBuzz("a", "Alice", 1) {
		t.Fatal("expected buzz outside a question to be dropped")
	}
}

func TestSessionRemoveBuzz(t *testing.T) {
	s := openSession()
	s.AddBuzz("a", "Alice", 1)
	s.AddBuzz("b", "Bob", 2)
	s.AddBuzz("c", "Carol", 3)

	removed, head := s.RemoveBuzz("b")
	if !removed || head {
		t.Fatalf("expected non-head removal, got removed=%v head=%v", removed, head)
	}

	removed, head = s.RemoveBuzz("a")
	if !removed || !head {
		t.Fatalf("expected head removal, got removed=%v head=%v", removed, head)
	}

	if len(s.BuzzerOrder) != 1 || s.BuzzerOrder[0].PlayerID != "c" {
		t.Fatalf("unexpected queue %+v", s.BuzzerOrder)
	}

	if removed, _ = s.RemoveBuzz("zzz"); removed {
		t.Fatal("expected unknown id to be a no-op")
	}
}

func TestSessionMarkAnsweredIdempotent(t *testing.T) {
	s := NewSession()
	s.MarkAnswered("Science", 200)
	s.MarkAnswered("Science", 200)

	if got := s.Answered(); len(got) != 1 || got[0] != "Science:200" {
		t.Fatalf("unexpected answered set %v", got)
	}
	if !s.IsAnswered("Science", 200) || s.IsAnswered("Science", 400) {
		t.Fatal("unexpected IsAnswered results")
	}
}

func TestSessionRenameBuzz(t *testing.T) {
	s := openSession()
	s.AddBuzz("a", "Alice", 1)
	s.RenameBuzz("a", "Alicia")

	if s.BuzzerOrder[0].PlayerName != "Alicia" {
		t.Fatalf("expected renamed snapshot, got %q", s.BuzzerOrder[0].PlayerName)
	}
}

func TestSessionResetKeepsToggles(t *testing.T) {
	s := openSession()
	s.AddBuzz("a", "Alice", 1)
	s.MarkAnswered("Science", 200)
	s.ShowAnswer = true
	s.ScoringEnabled = false
	s.NegativeScores = true

	s.Reset()

	if s.Phase != PhaseLobby || !s.BuzzerLocked || s.ShowAnswer {
		t.Fatalf("unexpected phase flags after reset: %+v", s)
	}
	if s.Question != nil || s.Category != "" || len(s.BuzzerOrder) != 0 || len(s.Answered()) != 0 {
		t.Fatalf("expected board cleared: %+v", s)
	}
	if s.ScoringEnabled || !s.NegativeScores {
		t.Fatal("expected toggles to survive reset")
	}
}
