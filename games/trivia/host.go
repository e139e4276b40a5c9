/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package trivia

import "fmt"

func (e *Engine) handleHostJoin(id ConnID) {
	e.conns[id].host = true
	e.session.HostConnected = true

	e.logger.Info("host connected", "conn", id)

	e.out.Send(id, Message{Type: EventHostConfirmed})
	if e.session.Phase == PhaseQuestion && e.session.Question != nil {
		e.out.Send(id, Message{
			Type: EventFullQuestion,
			Data: projectQuestion(e.session.Category, *e.session.Question),
		})
	}

	e.broadcastStateLocked()
}

func (e *Engine) handleHostLeft(id ConnID) {
	c := e.conns[id]
	if !c.host {
		return
	}

	c.host = false
	e.session.HostConnected = e.anyHostLocked()

	e.logger.Info("host left", "conn", id)

	e.out.Send(id, Message{Type: EventHostLeft})
	e.broadcastStateLocked()
}

// handleStartGame begins a fresh game. Session.Reset always lands in the
// lobby, so the phase is overwritten last.
func (e *Engine) handleStartGame() {
	e.ledger.ResetAllScores()
	e.session.Reset()
	e.session.Phase = PhasePlaying

	e.logger.Info("game started", "players", e.ledger.Len())

	e.broadcastStateLocked()
}

func (e *Engine) handleResetGame() {
	e.ledger.ResetAllScores()
	e.session.Reset()

	e.logger.Info("game reset")

	e.broadcastStateLocked()
}

func (e *Engine) handleClearPlayers() {
	e.ledger.ClearAll()
	e.session.ClearBuzzers()

	e.logger.Info("players cleared")

	e.broadcastStateLocked()
}

func (e *Engine) handleRemovePlayer(id ConnID) {
	p := e.ledger.Get(id)
	if p == nil {
		e.logger.Info("remove failed: player not found", "conn", id)
		return
	}

	e.ledger.Remove(id)
	e.session.RemoveBuzz(id)

	e.logger.Info("player removed", "player", p.Name)

	e.broadcastStateLocked()
}

func (e *Engine) handleClearDisconnected() {
	gone := make([]ConnID, 0)
	for _, p := range e.ledger.Players() {
		if !p.Connected {
			gone = append(gone, p.ID)
		}
	}

	removed := e.ledger.ClearDisconnected()
	if removed == 0 {
		return
	}

	for _, id := range gone {
		e.session.RemoveBuzz(id)
	}

	e.logger.Info("disconnected players cleared", "count", removed)

	e.broadcastStateLocked()
}

func (e *Engine) handleShowScoring() {
	e.session.Phase = PhaseScoring

	e.broadcastStateLocked()
}

func (e *Engine) handleShowLeaderboard() {
	e.session.Phase = PhaseLeaderboard
	e.session.ClearCurrentQuestion()

	e.broadcastStateLocked()
}

func (e *Engine) handleBackToGame() {
	switch e.session.Phase {
	case PhaseLeaderboard, PhaseScoring:
		e.session.Phase = PhasePlaying
		e.broadcastStateLocked()
	}
}

func (e *Engine) handleToggleScoring() {
	e.session.ScoringEnabled = !e.session.ScoringEnabled

	e.logger.Info("scoring toggled", "enabled", e.session.ScoringEnabled)

	e.broadcastStateLocked()
}

func (e *Engine) handleToggleLockedAtStart() {
	e.session.LockedAtStart = !e.session.LockedAtStart

	e.logger.Info("buzzer locked at start toggled", "enabled", e.session.LockedAtStart)

	e.broadcastStateLocked()
}

func (e *Engine) handleToggleNegativeScores(show bool) {
	if e.session.NegativeScores == show {
		return
	}
	e.session.NegativeScores = show

	e.broadcastStateLocked()
}

func (e *Engine) handleUpdatePlayerScore(id ConnID, score int) {
	p := e.ledger.Get(id)
	if p == nil {
		e.logger.Info("score update failed: player not found", "conn", id)
		return
	}

	old := p.Score
	e.ledger.UpdateScore(id, score)

	e.logger.Info("host updated score", "player", p.Name, "from", old, "to", score)

	diff := score - old
	sign := ""
	if diff >= 0 {
		sign = "+"
	}
	e.notifyLocked(id, fmt.Sprintf("Host updated your score: $%d → $%d (%s%d)", old, score, sign, diff))

	e.broadcastStateLocked()
}

func (e *Engine) handleHostUpdatePlayerName(id ConnID, newName string) *Ack {
	p := e.ledger.Get(id)
	if p == nil {
		return failure(ErrPlayerNotFound)
	}

	name, err := e.validateName(newName, id)
	if err != nil {
		e.logger.Info("host rename rejected", "player", p.Name, "name", newName, "error", err)
		return failure(err)
	}

	oldName := p.Name
	changed := CanonicalKey(name) != p.Key

	e.ledger.UpdateName(id, name, changed)
	e.session.RenameBuzz(id, name)

	e.out.Send(id, Message{Type: EventUpdateUsername, Data: usernameUpdate{NewUsername: name}})
	e.notifyLocked(id, fmt.Sprintf("Host updated your name: \"%s\" → \"%s\"", oldName, name))

	e.logger.Info("host renamed player", "from", oldName, "to", name)

	e.broadcastStateLocked()

	return success()
}
