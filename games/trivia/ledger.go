/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package trivia

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ConnID identifies one live transport connection.
type ConnID string

// Player is a live or recently disconnected identity.
type Player struct {
	ID        ConnID
	Name      string
	Key       string
	Score     int
	Connected bool
}

// CanonicalKey is the durable identity of a display name: trimmed and lowercased.
func CanonicalKey(name string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(name))
}

// Ledger holds player identities in join order, plus the score of every name
// seen this session. The score map outlives the identities that wrote to it.
// Ledger is not safe for concurrent use; the engine serializes access.
type Ledger struct {
	players []*Player
	scores  map[string]int
}

func NewLedger() *Ledger {
	return &Ledger{
		scores: make(map[string]int),
	}
}

func (l *Ledger) index(id ConnID) int {
	for i, p := range l.players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// Get returns the identity bound to id, or nil.
func (l *Ledger) Get(id ConnID) *Player {
	if i := l.index(id); i >= 0 {
		return l.players[i]
	}
	return nil
}

// Players returns copies of every identity in join order.
func (l *Ledger) Players() []Player {
	out := make([]Player, 0, len(l.players))
	for _, p := range l.players {
		out = append(out, *p)
	}
	return out
}

func (l *Ledger) Len() int {
	return len(l.players)
}

// StoredScore returns the last known score for key, or zero.
func (l *Ledger) StoredScore(key string) int {
	return l.scores[key]
}

// Add inserts a connected identity. The score is restored from the ledger
// unless explicit is non-nil. The name must already be validated.
func (l *Ledger) Add(id ConnID, name string, explicit *int) *Player {
	name = strings.TrimSpace(name)
	key := CanonicalKey(name)

	score := l.scores[key]
	if explicit != nil {
		score = *explicit
	}

	p := &Player{
		ID:        id,
		Name:      name,
		Key:       key,
		Score:     score,
		Connected: true,
	}

	if i := l.index(id); i >= 0 {
		l.players[i] = p
	} else {
		l.players = append(l.players, p)
	}
	l.scores[key] = score

	return p
}

// IsNameTaken reports whether a connected identity other than exclude uses key.
func (l *Ledger) IsNameTaken(key string, exclude ConnID) bool {
	for _, p := range l.players {
		if p.Connected && p.Key == key && p.ID != exclude {
			return true
		}
	}
	return false
}

// FindDisconnected returns a disconnected identity holding key, or nil.
func (l *Ledger) FindDisconnected(key string) *Player {
	for _, p := range l.players {
		if !p.Connected && p.Key == key {
			return p
		}
	}
	return nil
}

// UpdateName renames an identity and returns its resulting score. When the
// canonical key changes the old key keeps the current score; the identity
// either carries that score over or, with restore set, takes whatever the
// ledger remembers for the new key.
func (l *Ledger) UpdateName(id ConnID, name string, restore bool) (int, bool) {
	p := l.Get(id)
	if p == nil {
		return 0, false
	}

	name = strings.TrimSpace(name)
	newKey := CanonicalKey(name)
	oldKey := p.Key
	current := p.Score

	p.Name = name
	if newKey == oldKey {
		return p.Score, true
	}

	p.Key = newKey
	if restore {
		if stored, ok := l.scores[newKey]; ok {
			p.Score = stored
		}
	}
	l.scores[newKey] = p.Score
	l.scores[oldKey] = current

	return p.Score, true
}

// UpdateScore sets an absolute score and writes it through to the ledger.
func (l *Ledger) UpdateScore(id ConnID, score int) bool {
	p := l.Get(id)
	if p == nil {
		return false
	}

	p.Score = score
	l.scores[p.Key] = score

	return true
}

func (l *Ledger) MarkDisconnected(id ConnID) bool {
	p := l.Get(id)
	if p == nil {
		return false
	}

	p.Connected = false
	l.scores[p.Key] = p.Score

	return true
}

// Remove hard-deletes an identity. Its ledger entry is kept.
func (l *Ledger) Remove(id ConnID) bool {
	i := l.index(id)
	if i < 0 {
		return false
	}

	l.players = append(l.players[:i], l.players[i+1:]...)

	return true
}

// ClearAll drops every identity and forgets every stored score.
func (l *Ledger) ClearAll() {
	l.players = nil
	clear(l.scores)
}

// ClearDisconnected drops disconnected identities and returns how many went.
func (l *Ledger) ClearDisconnected() int {
	kept := l.players[:0]
	removed := 0

	for _, p := range l.players {
		if !p.Connected {
			removed++
			continue
		}
		kept = append(kept, p)
	}
	clear(l.players[len(kept):])
	l.players = kept

	return removed
}

// ResetAllScores zeroes every identity and every remembered score, so nobody
// carries points from a previous game into the next one.
func (l *Ledger) ResetAllScores() {
	for _, p := range l.players {
		p.Score = 0
	}
	for key := range l.scores {
		l.scores[key] = 0
	}
}
