/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package trivia

import "errors"

func (e *Engine) handlePlayerJoin(id ConnID, username string) *Ack {
	name, err := e.validateName(username, id)
	if err != nil {
		e.logger.Info("player join rejected", "conn", id, "name", username, "error", err)
		if errors.Is(err, ErrNameTaken) {
			e.out.Send(id, Message{Type: EventJoinError, Data: joinError{Error: userMessage(err)}})
		}
		return failure(err)
	}

	key := CanonicalKey(name)

	if stale := e.ledger.FindDisconnected(key); stale != nil {
		e.logger.Info("purging disconnected player", "player", stale.Name, "conn", stale.ID)
		e.ledger.Remove(stale.ID)
		e.session.RemoveBuzz(stale.ID)
	}

	// A connection that already joined keeps its slot and is treated as renamed.
	if e.ledger.Get(id) != nil {
		score, _ := e.ledger.UpdateName(id, name, true)
		e.logger.Info("player rejoined", "player", name, "score", score)
	} else {
		p := e.ledger.Add(id, name, nil)
		e.logger.Info("player joined", "player", p.Name, "score", p.Score)
	}

	e.broadcastStateLocked()

	return success()
}

func (e *Engine) handlePlayerRename(id ConnID, newUsername string) *Ack {
	p := e.ledger.Get(id)
	if p == nil {
		return failure(ErrPlayerNotFound)
	}

	name, err := e.validateName(newUsername, id)
	if err != nil {
		e.logger.Info("player rename rejected", "player", p.Name, "name", newUsername, "error", err)
		return failure(err)
	}

	oldName := p.Name
	changed := CanonicalKey(name) != p.Key

	score, _ := e.ledger.UpdateName(id, name, changed)

	e.out.Send(id, Message{Type: EventUpdateUsername, Data: usernameUpdate{NewUsername: name}})

	e.logger.Info("player renamed", "from", oldName, "to", name, "score", score)

	e.broadcastStateLocked()

	return success()
}

// handleBuzz queues the sender. Buzzes that lose a race or arrive while the
// buzzer is locked are dropped quietly.
func (e *Engine) handleBuzz(id ConnID) {
	p := e.ledger.Get(id)
	if p == nil || !p.Connected {
		return
	}

	if !e.session.AddBuzz(id, p.Name, e.now().UnixMilli()) {
		return
	}

	e.logger.Info("player buzzed", "player", p.Name, "position", len(e.session.BuzzerOrder))

	e.out.Broadcast(Message{Type: EventBuzzerSound, Data: buzzerSound{PlayerName: p.Name}})
	e.broadcastStateLocked()
}
