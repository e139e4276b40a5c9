/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package trivia

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Command is one decoded inbound request.
type Command interface {
	Name() string
}

type (
	HostJoin                  struct{}
	HostLeft                  struct{}
	StartGame                 struct{}
	ResetGame                 struct{}
	ClearPlayers              struct{}
	ClearDisconnected         struct{}
	Buzz                      struct{}
	LockBuzzer                struct{}
	UnlockBuzzer              struct{}
	ClearBuzzers              struct{}
	CancelQuestion            struct{}
	SkipQuestion              struct{}
	RevealAnswer              struct{}
	ShowScoring               struct{}
	ShowLeaderboard           struct{}
	BackToGame                struct{}
	ToggleScoring             struct{}
	ToggleBuzzerLockedAtStart struct{}
	ReloadConfig              struct{}
)

type RemovePlayer struct{ ID ConnID }

type RemoveBuzz struct{ ID ConnID }

type CorrectAnswer struct{ ID ConnID }

type IncorrectAnswer struct{ ID ConnID }

type SelectQuestion struct {
	Category string `json:"category"`
	Value    int    `json:"value"`
}

type ToggleNegativeScores struct {
	Show bool `json:"show"`
}

type UpdatePlayerScore struct {
	ID       ConnID
	NewScore int
}

type HostUpdatePlayerName struct {
	ID      ConnID
	NewName string
}

type PlayerJoin struct{ Username string }

type PlayerRename struct{ NewUsername string }

type EmojiReaction struct {
	Emoji string `json:"emoji"`
}

func (HostJoin) Name() string                  { return "hostJoin" }
func (HostLeft) Name() string                  { return "hostLeft" }
func (StartGame) Name() string                 { return "startGame" }
func (ResetGame) Name() string                 { return "resetGame" }
func (ClearPlayers) Name() string              { return "clearPlayers" }
func (RemovePlayer) Name() string              { return "removePlayer" }
func (ClearDisconnected) Name() string         { return "clearDisconnected" }
func (SelectQuestion) Name() string            { return "selectQuestion" }
func (Buzz) Name() string                      { return "buzz" }
func (LockBuzzer) Name() string                { return "lockBuzzer" }
func (UnlockBuzzer) Name() string              { return "unlockBuzzer" }
func (ClearBuzzers) Name() string              { return "clearBuzzers" }
func (RemoveBuzz) Name() string                { return "removeBuzz" }
func (CorrectAnswer) Name() string             { return "correctAnswer" }
func (IncorrectAnswer) Name() string           { return "incorrectAnswer" }
func (CancelQuestion) Name() string            { return "cancelQuestion" }
func (SkipQuestion) Name() string              { return "skipQuestion" }
func (RevealAnswer) Name() string              { return "revealAnswer" }
func (ShowScoring) Name() string               { return "showScoring" }
func (ShowLeaderboard) Name() string           { return "showLeaderboard" }
func (BackToGame) Name() string                { return "backToGame" }
func (ToggleScoring) Name() string             { return "toggleScoring" }
func (ToggleBuzzerLockedAtStart) Name() string { return "toggleBuzzerLockedAtStart" }
func (ToggleNegativeScores) Name() string      { return "toggleNegativeScores" }
func (UpdatePlayerScore) Name() string         { return "updatePlayerScore" }
func (HostUpdatePlayerName) Name() string      { return "hostUpdatePlayerName" }
func (PlayerJoin) Name() string                { return "playerJoin" }
func (PlayerRename) Name() string              { return "playerRename" }
func (EmojiReaction) Name() string             { return "emojiReaction" }
func (ReloadConfig) Name() string              { return "reloadConfig" }

// hostOnly lists the commands that require the host claim.
var hostOnly = map[string]bool{
	"startGame":                 true,
	"resetGame":                 true,
	"clearPlayers":              true,
	"removePlayer":              true,
	"clearDisconnected":         true,
	"selectQuestion":            true,
	"lockBuzzer":                true,
	"unlockBuzzer":              true,
	"clearBuzzers":              true,
	"removeBuzz":                true,
	"correctAnswer":             true,
	"incorrectAnswer":           true,
	"cancelQuestion":            true,
	"skipQuestion":              true,
	"revealAnswer":              true,
	"showScoring":               true,
	"showLeaderboard":           true,
	"backToGame":                true,
	"toggleScoring":             true,
	"toggleBuzzerLockedAtStart": true,
	"toggleNegativeScores":      true,
	"updatePlayerScore":         true,
	"hostUpdatePlayerName":      true,
	"reloadConfig":              true,
}

// HostOnly reports whether cmd may only be issued by a host connection.
func HostOnly(cmd Command) bool {
	return hostOnly[cmd.Name()]
}

// Acknowledged reports whether cmd expects a one-shot result.
func Acknowledged(cmd Command) bool {
	switch cmd.(type) {
	case PlayerJoin, PlayerRename, HostUpdatePlayerName:
		return true
	}
	return false
}

var bare = map[string]Command{
	"hostJoin":                  HostJoin{},
	"hostLeft":                  HostLeft{},
	"startGame":                 StartGame{},
	"resetGame":                 ResetGame{},
	"clearPlayers":              ClearPlayers{},
	"clearDisconnected":         ClearDisconnected{},
	"buzz":                      Buzz{},
	"lockBuzzer":                LockBuzzer{},
	"unlockBuzzer":              UnlockBuzzer{},
	"clearBuzzers":              ClearBuzzers{},
	"cancelQuestion":            CancelQuestion{},
	"skipQuestion":              SkipQuestion{},
	"revealAnswer":              RevealAnswer{},
	"showScoring":               ShowScoring{},
	"showLeaderboard":           ShowLeaderboard{},
	"backToGame":                BackToGame{},
	"toggleScoring":             ToggleScoring{},
	"toggleBuzzerLockedAtStart": ToggleBuzzerLockedAtStart{},
	"reloadConfig":              ReloadConfig{},
}

// DecodeCommand turns a wire command name and its JSON payload into a typed
// Command. Payloads for bare commands are ignored.
func DecodeCommand(name string, data json.RawMessage) (Command, error) {
	if cmd, ok := bare[name]; ok {
		return cmd, nil
	}

	switch name {
	case "removePlayer":
		id, err := decodeID(data)
		return RemovePlayer{ID: id}, err
	case "removeBuzz":
		id, err := decodeID(data)
		return RemoveBuzz{ID: id}, err
	case "correctAnswer":
		id, err := decodeID(data)
		return CorrectAnswer{ID: id}, err
	case "incorrectAnswer":
		id, err := decodeID(data)
		return IncorrectAnswer{ID: id}, err

	case "selectQuestion":
		var cmd SelectQuestion
		if err := decodeObject(data, &cmd); err != nil {
			return nil, err
		}
		return cmd, nil

	case "toggleNegativeScores":
		var cmd ToggleNegativeScores
		if err := decodeObject(data, &cmd); err != nil {
			return nil, err
		}
		return cmd, nil

	case "emojiReaction":
		var cmd EmojiReaction
		if err := decodeObject(data, &cmd); err != nil {
			return nil, err
		}
		return cmd, nil

	case "updatePlayerScore":
		var body struct {
			playerRef
			NewScore *int `json:"newScore"`
		}
		if err := decodeObject(data, &body); err != nil {
			return nil, err
		}
		if body.ref() == "" || body.NewScore == nil {
			return nil, fmt.Errorf("%w: %s needs id and newScore", ErrBadPayload, name)
		}
		return UpdatePlayerScore{ID: body.ref(), NewScore: *body.NewScore}, nil

	case "hostUpdatePlayerName":
		var body struct {
			playerRef
			NewName string `json:"newName"`
		}
		if err := decodeObject(data, &body); err != nil {
			return nil, err
		}
		if body.ref() == "" {
			return nil, fmt.Errorf("%w: %s needs id", ErrBadPayload, name)
		}
		return HostUpdatePlayerName{ID: body.ref(), NewName: body.NewName}, nil

	case "playerJoin":
		s, err := decodeString(data, "username")
		return PlayerJoin{Username: s}, err

	case "playerRename":
		s, err := decodeString(data, "newUsername")
		return PlayerRename{NewUsername: s}, err
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
}

type playerRef struct {
	ID       ConnID `json:"id"`
	PlayerID ConnID `json:"playerId"`
}

func (r playerRef) ref() ConnID {
	if r.ID != "" {
		return r.ID
	}
	return r.PlayerID
}

func isString(data json.RawMessage) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && trimmed[0] == '"'
}

func decodeObject(data json.RawMessage, v any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return fmt.Errorf("%w: missing payload", ErrBadPayload)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return nil
}

// decodeID accepts "abc", {"id":"abc"} or {"playerId":"abc"}.
func decodeID(data json.RawMessage) (ConnID, error) {
	if isString(data) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", fmt.Errorf("%w: %v", ErrBadPayload, err)
		}
		return ConnID(s), nil
	}

	var ref playerRef
	if err := decodeObject(data, &ref); err != nil {
		return "", err
	}
	if ref.ref() == "" {
		return "", fmt.Errorf("%w: missing player id", ErrBadPayload)
	}

	return ref.ref(), nil
}

// decodeString accepts a bare JSON string or an object carrying field.
func decodeString(data json.RawMessage, field string) (string, error) {
	if isString(data) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", fmt.Errorf("%w: %v", ErrBadPayload, err)
		}
		return s, nil
	}

	var body map[string]json.RawMessage
	if err := decodeObject(data, &body); err != nil {
		return "", err
	}

	raw, ok := body[field]
	if !ok {
		return "", nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadPayload, err)
	}

	return s, nil
}
