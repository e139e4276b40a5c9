/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package trivia is the authoritative session engine for a live buzzer
// trivia game: one host drives the board, any number of players buzz in.
//
// The Engine owns the player ledger, the game session and the reaction
// throttle. Every command, lifecycle event and timer callback runs under one
// mutex, so the transport may call in from as many goroutines as it likes.
package trivia

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"
)

const DefaultMaxNameLength = 20

// Options tunes an Engine. Zero values select the defaults.
type Options struct {
	Logger        *slog.Logger
	MaxNameLength int
	Now           func() time.Time
	Scheduler     Scheduler
}

type connState struct {
	host bool
}

// Engine is the single shared game instance.
type Engine struct {
	mu sync.Mutex

	ledger    *Ledger
	session   *Session
	reactions *reactionThrottle
	conns     map[ConnID]*connState

	quiz   atomic.Pointer[Quiz]
	source QuizSource
	out    Transport

	logger    *slog.Logger
	maxName   int
	now       func() time.Time
	scheduler Scheduler
}

// NewEngine loads the first quiz snapshot from source and returns an engine in
// the lobby phase.
func NewEngine(source QuizSource, out Transport, opts Options) (*Engine, error) {
	quiz, err := source.Load()
	if err != nil {
		return nil, fmt.Errorf("loading quiz: %w", err)
	}

	e := &Engine{
		ledger:    NewLedger(),
		session:   NewSession(),
		reactions: newReactionThrottle(),
		conns:     make(map[ConnID]*connState),
		source:    source,
		out:       out,
		logger:    opts.Logger,
		maxName:   opts.MaxNameLength,
		now:       opts.Now,
		scheduler: opts.Scheduler,
	}

	if e.logger == nil {
		e.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if e.maxName <= 0 {
		e.maxName = DefaultMaxNameLength
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.scheduler == nil {
		e.scheduler = timerScheduler{}
	}

	e.quiz.Store(quiz)
	e.session.LockedAtStart = quiz.GameSettings().BuzzerLockedAtStart

	return e, nil
}

// Quiz returns the current snapshot. Callers must not modify it.
func (e *Engine) Quiz() *Quiz {
	return e.quiz.Load()
}

// State returns the public projection of the current state.
func (e *Engine) State() StateView {
	e.mu.Lock()
	defer e.mu.Unlock()

	return projectState(e.ledger, e.session)
}

// Connections returns the number of live connections.
func (e *Engine) Connections() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return len(e.conns)
}

// Connect registers a new connection and sends it the current config, state
// and reaction status.
func (e *Engine) Connect(id ConnID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.conns[id] = &connState{}

	e.out.Send(id, Message{Type: EventGameConfig, Data: projectConfig(e.quiz.Load())})
	e.out.Send(id, Message{Type: EventGameState, Data: projectState(e.ledger, e.session)})
	e.out.Send(id, Message{Type: EventEmojiStatus, Data: e.emojiStatusLocked()})

	e.logger.Debug("connection opened", "conn", id)
}

// Disconnect drops the connection's host claim and soft-deletes its player.
func (e *Engine) Disconnect(id ConnID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	c, ok := e.conns[id]
	if !ok {
		return
	}
	delete(e.conns, id)

	if c.host {
		e.session.HostConnected = e.anyHostLocked()
		e.logger.Info("host disconnected", "conn", id)
	}

	if p := e.ledger.Get(id); p != nil {
		e.ledger.MarkDisconnected(id)
		e.logger.Info("player disconnected", "player", p.Name, "score", p.Score)
	}

	e.broadcastStateLocked()
}

// ReloadQuiz fetches a fresh snapshot from the source and swaps it in. On
// failure the previous snapshot stays in place.
func (e *Engine) ReloadQuiz() error {
	quiz, err := e.source.Load()
	if err != nil {
		e.logger.Error("quiz reload failed", "error", err)
		return fmt.Errorf("reloading quiz: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.quiz.Store(quiz)
	e.session.LockedAtStart = quiz.GameSettings().BuzzerLockedAtStart

	e.broadcastConfigLocked()
	e.broadcastStateLocked()

	e.logger.Info("quiz reloaded", "title", quiz.Title, "categories", len(quiz.Categories))

	return nil
}

// Dispatch runs cmd on behalf of connection id. It returns the acknowledgement
// for commands that carry one and nil for everything else.
func (e *Engine) Dispatch(id ConnID, cmd Command) *Ack {
	if _, ok := cmd.(ReloadConfig); ok {
		if !e.IsHost(id) {
			e.logger.Warn("unauthorized command dropped", "conn", id, "command", cmd.Name())
			return nil
		}
		_ = e.ReloadQuiz()
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.conns[id]; !ok {
		e.logger.Warn("command from unknown connection", "conn", id, "command", cmd.Name())
		if Acknowledged(cmd) {
			return failure(ErrPlayerNotFound)
		}
		return nil
	}

	if HostOnly(cmd) && !e.conns[id].host {
		e.logger.Warn("unauthorized command dropped", "conn", id, "command", cmd.Name())
		if Acknowledged(cmd) {
			return failure(ErrNotHost)
		}
		return nil
	}

	e.logger.Debug("command", "conn", id, "command", cmd.Name())

	switch c := cmd.(type) {
	// players
	case PlayerJoin:
		return e.handlePlayerJoin(id, c.Username)
	case PlayerRename:
		return e.handlePlayerRename(id, c.NewUsername)
	case Buzz:
		e.handleBuzz(id)
	case EmojiReaction:
		e.handleEmojiReaction(id, c)

	// host
	case HostJoin:
		e.handleHostJoin(id)
	case HostLeft:
		e.handleHostLeft(id)
	case StartGame:
		e.handleStartGame()
	case ResetGame:
		e.handleResetGame()
	case ClearPlayers:
		e.handleClearPlayers()
	case RemovePlayer:
		e.handleRemovePlayer(c.ID)
	case ClearDisconnected:
		e.handleClearDisconnected()
	case ShowScoring:
		e.handleShowScoring()
	case ShowLeaderboard:
		e.handleShowLeaderboard()
	case BackToGame:
		e.handleBackToGame()
	case ToggleScoring:
		e.handleToggleScoring()
	case ToggleBuzzerLockedAtStart:
		e.handleToggleLockedAtStart()
	case ToggleNegativeScores:
		e.handleToggleNegativeScores(c.Show)
	case UpdatePlayerScore:
		e.handleUpdatePlayerScore(c.ID, c.NewScore)
	case HostUpdatePlayerName:
		return e.handleHostUpdatePlayerName(c.ID, c.NewName)

	// game flow
	case SelectQuestion:
		e.handleSelectQuestion(c.Category, c.Value)
	case CorrectAnswer:
		e.handleCorrectAnswer(c.ID)
	case IncorrectAnswer:
		e.handleIncorrectAnswer(c.ID)
	case CancelQuestion:
		e.handleCancelQuestion()
	case SkipQuestion:
		e.handleSkipQuestion()
	case LockBuzzer:
		e.handleSetBuzzerLocked(true)
	case UnlockBuzzer:
		e.handleSetBuzzerLocked(false)
	case ClearBuzzers:
		e.handleClearBuzzers()
	case RemoveBuzz:
		e.handleRemoveBuzz(c.ID)
	case RevealAnswer:
		e.handleRevealAnswer()

	default:
		e.logger.Warn("unhandled command", "command", cmd.Name())
	}

	return nil
}

// IsHost reports whether id currently holds the host claim.
func (e *Engine) IsHost(id ConnID) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	c, ok := e.conns[id]
	return ok && c.host
}

func (e *Engine) anyHostLocked() bool {
	for _, c := range e.conns {
		if c.host {
			return true
		}
	}
	return false
}

// validateName trims raw and checks it against the length limit and every
// other connected player. exclude is the identity being renamed, if any.
func (e *Engine) validateName(raw string, exclude ConnID) (string, error) {
	name := strings.TrimSpace(raw)

	if name == "" {
		return "", ErrNameEmpty
	}
	if utf8.RuneCountInString(name) > e.maxName {
		return "", NameTooLongError{Max: e.maxName}
	}
	if e.ledger.IsNameTaken(CanonicalKey(name), exclude) {
		return "", ErrNameTaken
	}

	return name, nil
}

func failure(err error) *Ack {
	return &Ack{Success: false, Error: userMessage(err)}
}

func success() *Ack {
	return &Ack{Success: true}
}
