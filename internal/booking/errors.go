package booking

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound and ErrSlotFull are expected terminal outcomes, not
	// system errors; they are never retried within an attempt.
	ErrNotFound = errors.New("no matching slot")
	ErrSlotFull = errors.New("slot is full")

	// ErrSession covers session open/login failures. Fatal for the
	// attempt; a later scheduled attempt may still succeed.
	ErrSession = errors.New("session error")
)

// ConfigError aborts before any session is opened.
type ConfigError struct {
	Field string
	Msg   string
}

func (e ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("config: %s", e.Msg)
	}
	return fmt.Sprintf("config: %s: %s", e.Field, e.Msg)
}

func IsExpected(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrSlotFull)
}
