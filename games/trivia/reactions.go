/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package trivia

import (
	"strings"
	"time"
)

// Scheduler runs f once after d. AfterFunc must return before f runs.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

type timerScheduler struct{}

func (timerScheduler) AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}

// reactionThrottle tracks the last accepted reaction per canonical name and
// the number of reactions currently on screen.
type reactionThrottle struct {
	last   map[string]time.Time
	active int
}

func newReactionThrottle() *reactionThrottle {
	return &reactionThrottle{
		last: make(map[string]time.Time),
	}
}

// handleEmojiReaction charges the sender and fans the reaction out to hosts.
// Every check runs before anything is written, so a rejection changes nothing.
func (e *Engine) handleEmojiReaction(id ConnID, cmd EmojiReaction) {
	emoji := strings.TrimSpace(cmd.Emoji)
	if emoji == "" {
		e.logger.Debug("empty emoji reaction rejected", "conn", id)
		e.notifyLocked(id, "Pick an emoji to send")
		return
	}

	p := e.ledger.Get(id)
	if p == nil {
		e.logger.Debug("emoji reaction from unknown player", "conn", id)
		e.notifyLocked(id, "Join the game to send reactions")
		return
	}

	rules := e.quiz.Load().EmojiSettings()
	now := e.now()

	if e.reactions.active >= rules.MaxActive {
		e.notifyLocked(id, "Too many reactions on screen, try again in a moment")
		return
	}

	if last, ok := e.reactions.last[p.Key]; ok && now.Sub(last) < rules.cooldown() {
		e.notifyLocked(id, "Slow down! Wait a few seconds between reactions")
		return
	}

	next := p.Score - rules.Cost
	if next < 0 && !rules.AllowNegative {
		e.notifyLocked(id, "Not enough points to send a reaction")
		return
	}

	e.ledger.UpdateScore(id, next)
	e.reactions.last[p.Key] = now
	e.reactions.active++

	e.logger.Info("emoji reaction", "player", p.Name, "emoji", emoji, "cost", rules.Cost)

	e.broadcastStateLocked()
	e.sendHostsLocked(Message{Type: EventEmojiReaction, Data: reaction{PlayerName: p.Name, Emoji: emoji}})
	e.broadcastEmojiStatusLocked()

	e.scheduler.AfterFunc(rules.displayDuration(), e.expireReaction)
}

// expireReaction is the decay task for one accepted reaction. It only touches
// the counter, so it is safe after resets and disconnects.
func (e *Engine) expireReaction() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.reactions.active > 0 {
		e.reactions.active--
	}

	e.broadcastEmojiStatusLocked()
}
