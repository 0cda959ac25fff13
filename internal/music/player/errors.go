package player

import (
	"errors"
	"fmt"

	"music-board/internal/storage"
)

// UserError is a refusal worded for the user: nothing playing, bad
// timestamp, unsupported seek and so on. State is left untouched.
type UserError struct {
	Msg string
}

func (e *UserError) Error() string { return e.Msg }

func userErrorf(format string, args ...any) error {
	return &UserError{Msg: fmt.Sprintf(format, args...)}
}

// ResolutionError is a provider lookup failure, distinct from "no match".
type ResolutionError struct {
	Query string
	Err   error
}

func (e *ResolutionError) Error() string { return fmt.Sprintf("resolve %q: %v", e.Query, e.Err) }
func (e *ResolutionError) Unwrap() error { return e.Err }

// ConnectionError is a failed voice join. No board is created.
type ConnectionError struct {
	ChannelID string
	Err       error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("join voice channel %s: %v", e.ChannelID, e.Err)
}
func (e *ConnectionError) Unwrap() error { return e.Err }

// PlaybackError stops the current song. There is no automatic retry or
// advance.
type PlaybackError struct {
	Title string
	Err   error
}

func (e *PlaybackError) Error() string { return fmt.Sprintf("play %q: %v", e.Title, e.Err) }
func (e *PlaybackError) Unwrap() error { return e.Err }

// PersistenceError is a failed settings write. It is only ever logged.
type PersistenceError struct {
	Key storage.Key
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist music setting %s: %v", e.Key, e.Err)
}
func (e *PersistenceError) Unwrap() error { return e.Err }

// UserMessage renders err for the chat channel.
func UserMessage(err error) string {
	var (
		userErr *UserError
		resErr  *ResolutionError
		connErr *ConnectionError
		playErr *PlaybackError
	)
	switch {
	case errors.As(err, &userErr):
		return userErr.Msg
	case errors.As(err, &resErr):
		return fmt.Sprintf("**_ERROR_** : %v", resErr.Err)
	case errors.As(err, &connErr):
		return fmt.Sprintf("I couldn't join your voice channel: %v", connErr.Err)
	case errors.As(err, &playErr):
		return fmt.Sprintf("**_ERROR_** : couldn't play `%s`: %v", playErr.Title, playErr.Err)
	default:
		return fmt.Sprintf("**_ERROR_** : %v", err)
	}
}
