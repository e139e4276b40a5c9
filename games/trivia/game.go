/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package trivia

func (e *Engine) handleSelectQuestion(category string, value int) {
	q, ok := e.quiz.Load().Lookup(category, value)
	if !ok {
		e.logger.Info("question not found", "category", category, "value", value)
		return
	}

	e.session.SetQuestion(q, category)
	e.session.BuzzerLocked = e.session.LockedAtStart
	e.session.Phase = PhaseQuestion

	e.logger.Info("question selected", "category", category, "value", value)

	e.sendHostsLocked(Message{Type: EventFullQuestion, Data: projectQuestion(category, q)})
	e.broadcastStateLocked()
}

// closeQuestionLocked is the shared tail of every judging path that ends a
// question: nothing current, nobody queued, buzzer locked, back to the board.
func (e *Engine) closeQuestionLocked() {
	e.session.ClearCurrentQuestion()
	e.session.ClearBuzzers()
	e.session.BuzzerLocked = true
	e.session.Phase = PhasePlaying
}

func (e *Engine) handleCorrectAnswer(id ConnID) {
	p := e.ledger.Get(id)
	q := e.session.Question
	if p == nil || q == nil {
		e.logger.Info("correct answer ignored: player or question missing", "conn", id)
		return
	}

	e.ledger.UpdateScore(id, p.Score+q.Value)
	e.session.MarkAnswered(e.session.Category, q.Value)
	e.closeQuestionLocked()

	e.logger.Info("correct answer", "player", p.Name, "points", q.Value, "score", p.Score)

	e.broadcastStateLocked()
}

// handleIncorrectAnswer deducts the value whether or not negative scores are
// shown; the question stays open for the rest of the queue.
func (e *Engine) handleIncorrectAnswer(id ConnID) {
	p := e.ledger.Get(id)
	q := e.session.Question
	if p == nil || q == nil {
		e.logger.Info("incorrect answer ignored: player or question missing", "conn", id)
		return
	}

	e.ledger.UpdateScore(id, p.Score-q.Value)
	e.session.RemoveBuzz(id)
	e.session.BuzzerLocked = false

	e.logger.Info("incorrect answer", "player", p.Name, "points", -q.Value, "score", p.Score)

	e.broadcastStateLocked()
}

func (e *Engine) handleCancelQuestion() {
	if e.session.Phase != PhaseQuestion {
		return
	}

	e.closeQuestionLocked()

	e.logger.Info("question cancelled")

	e.broadcastStateLocked()
}

func (e *Engine) handleSkipQuestion() {
	if q := e.session.Question; q != nil {
		e.session.MarkAnswered(e.session.Category, q.Value)
	}

	e.closeQuestionLocked()

	e.logger.Info("question skipped")

	e.broadcastStateLocked()
}

func (e *Engine) handleSetBuzzerLocked(locked bool) {
	if e.session.BuzzerLocked == locked {
		return
	}
	e.session.BuzzerLocked = locked

	e.logger.Info("buzzer lock changed", "locked", locked)

	e.broadcastStateLocked()
}

func (e *Engine) handleClearBuzzers() {
	if len(e.session.BuzzerOrder) == 0 {
		return
	}
	e.session.ClearBuzzers()

	e.logger.Info("buzzers cleared")

	e.broadcastStateLocked()
}

// handleRemoveBuzz undoes one buzz. Dropping the head while a question is open
// reopens the buzzer so the next player gets a turn.
func (e *Engine) handleRemoveBuzz(id ConnID) {
	removed, wasHead := e.session.RemoveBuzz(id)
	if !removed {
		e.logger.Info("remove buzz ignored: not queued", "conn", id)
		return
	}

	if wasHead && e.session.Phase == PhaseQuestion {
		e.session.BuzzerLocked = false
	}

	e.logger.Info("buzz removed", "conn", id)

	e.broadcastStateLocked()
}

func (e *Engine) handleRevealAnswer() {
	if e.session.Phase != PhaseQuestion || e.session.ShowAnswer {
		return
	}
	e.session.ShowAnswer = true

	e.logger.Info("answer revealed")

	e.broadcastStateLocked()
}
