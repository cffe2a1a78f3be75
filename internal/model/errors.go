package model

import "errors"

// Common errors used across the application
var (
	// Room errors
	ErrRoomNotFound       = errors.New("room not found")
	ErrGameAlreadyStarted = errors.New("game already started")
	ErrRoomFull           = errors.New("room is full")
	ErrCodeSpaceExhausted = errors.New("could not generate an unused room code")

	// Protocol errors
	ErrMalformedEvent = errors.New("malformed event")

	// Wallet errors
	ErrUserNotFound    = errors.New("user not found")
	ErrMissingIdentity = errors.New("missing identity")
)
