package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrInvalidAction is returned when an action has an unknown type or a malformed payload.
var ErrInvalidAction = errors.New("invalid action")

// ErrUnknownKey is returned when a key token cannot be mapped to an action.
var ErrUnknownKey = errors.New("unknown key")
