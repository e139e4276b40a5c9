/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package trivia

import "strconv"

type Phase string

const (
	PhaseLobby       Phase = "lobby"
	PhasePlaying     Phase = "playing"
	PhaseQuestion    Phase = "question"
	PhaseScoring     Phase = "scoring"
	PhaseLeaderboard Phase = "leaderboard"
)

// BuzzEvent is one entry in the buzzer queue. Timestamp is server time in
// milliseconds; queue order is processing order, never client time.
type BuzzEvent struct {
	PlayerID   ConnID `json:"playerId"`
	PlayerName string `json:"playerName"`
	Timestamp  int64  `json:"timestamp"`
}

// Session is the game-phase state machine. It only offers primitive
// mutations; judging and cleanup sequences are composed by the engine.
type Session struct {
	Phase           Phase
	Question        *Question
	Category        string
	BuzzerOrder     []BuzzEvent
	BuzzerLocked    bool
	ShowAnswer      bool
	ScoringEnabled  bool
	NegativeScores  bool
	LockedAtStart   bool
	HostConnected   bool
	answered        map[string]struct{}
	answeredInOrder []string
}

func NewSession() *Session {
	return &Session{
		Phase:          PhaseLobby,
		BuzzerLocked:   true,
		ScoringEnabled: true,
		answered:       make(map[string]struct{}),
	}
}

// AnsweredKey is the set key for a category/value pair.
func AnsweredKey(category string, value int) string {
	return category + ":" + strconv.Itoa(value)
}

// SetQuestion opens q for buzzing: the queue is emptied, the buzzer unlocked
// and the answer hidden.
func (s *Session) SetQuestion(q Question, category string) {
	s.Question = &q
	s.Category = category
	s.BuzzerOrder = nil
	s.BuzzerLocked = false
	s.ShowAnswer = false
}

func (s *Session) ClearCurrentQuestion() {
	s.Question = nil
	s.Category = ""
	s.ShowAnswer = false
}

func (s *Session) HasBuzzed(id ConnID) bool {
	for _, b := range s.BuzzerOrder {
		if b.PlayerID == id {
			return true
		}
	}
	return false
}

// AddBuzz appends to the queue and reports whether it did. Buzzes while the
// buzzer is locked, outside a question, or repeated are dropped.
func (s *Session) AddBuzz(id ConnID, name string, at int64) bool {
	if s.BuzzerLocked || s.Phase != PhaseQuestion || s.HasBuzzed(id) {
		return false
	}

	s.BuzzerOrder = append(s.BuzzerOrder, BuzzEvent{
		PlayerID:   id,
		PlayerName: name,
		Timestamp:  at,
	})

	return true
}

// RemoveBuzz drops id from the queue. It reports whether an entry was removed
// and whether that entry was the head.
func (s *Session) RemoveBuzz(id ConnID) (removed, wasHead bool) {
	kept := make([]BuzzEvent, 0, len(s.BuzzerOrder))
	for i, b := range s.BuzzerOrder {
		if b.PlayerID == id {
			removed = true
			wasHead = wasHead || i == 0
			continue
		}
		kept = append(kept, b)
	}
	s.BuzzerOrder = kept

	return removed, wasHead
}

// RenameBuzz rewrites the name snapshot of id's queue entry.
func (s *Session) RenameBuzz(id ConnID, name string) {
	for i := range s.BuzzerOrder {
		if s.BuzzerOrder[i].PlayerID == id {
			s.BuzzerOrder[i].PlayerName = name
		}
	}
}

func (s *Session) ClearBuzzers() {
	s.BuzzerOrder = nil
}

// MarkAnswered is idempotent.
func (s *Session) MarkAnswered(category string, value int) {
	key := AnsweredKey(category, value)
	if _, ok := s.answered[key]; ok {
		return
	}
	s.answered[key] = struct{}{}
	s.answeredInOrder = append(s.answeredInOrder, key)
}

func (s *Session) IsAnswered(category string, value int) bool {
	_, ok := s.answered[AnsweredKey(category, value)]
	return ok
}

// Answered returns the answered keys in the order they were first marked.
func (s *Session) Answered() []string {
	return append([]string{}, s.answeredInOrder...)
}

// Reset returns the board to the lobby. Scores live in the Ledger and are
// left alone; callers starting a fresh game reset them first and overwrite
// the phase afterwards.
func (s *Session) Reset() {
	clear(s.answered)
	s.answeredInOrder = nil
	s.Question = nil
	s.Category = ""
	s.BuzzerOrder = nil
	s.BuzzerLocked = true
	s.Phase = PhaseLobby
	s.ShowAnswer = false
}
