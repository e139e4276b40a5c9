/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package trivia

import (
	"errors"
	"fmt"
)

var (
	ErrNameEmpty      = errors.New("username is empty")
	ErrNameTaken      = errors.New("username already taken")
	ErrPlayerNotFound = errors.New("player not found")
	ErrNotHost        = errors.New("connection is not the host")
	ErrUnknownCommand = errors.New("unknown command")
	ErrBadPayload     = errors.New("malformed command payload")
)

// NameTooLongError is returned when a trimmed username exceeds the configured maximum.
type NameTooLongError struct {
	Max int
}

func (e NameTooLongError) Error() string {
	return fmt.Sprintf("username longer than %d characters", e.Max)
}

// userMessage converts a domain error into the text shown to the person who caused it.
func userMessage(err error) string {
	var tooLong NameTooLongError

	switch {
	case errors.Is(err, ErrNameEmpty):
		return "Username cannot be empty"
	case errors.As(err, &tooLong):
		return fmt.Sprintf("Username cannot exceed %d characters", tooLong.Max)
	case errors.Is(err, ErrNameTaken):
		return "Username already taken"
	case errors.Is(err, ErrPlayerNotFound):
		return "Player not found"
	case errors.Is(err, ErrNotHost):
		return "Only host can update names"
	default:
		return "Something went wrong"
	}
}
