package model

import "errors"

// Common errors used across the application
var (
	// Validation errors
	ErrEmptyUsername = errors.New("username must not be empty")
	ErrEmptyGameID   = errors.New("game id must not be empty")
	ErrEmptyAnswer   = errors.New("answer must not be empty")

	// User errors
	ErrUserNotFound = errors.New("user not found")

	// Game errors
	ErrGameNotFound     = errors.New("game not found")
	ErrAlreadyJoined    = errors.New("user is already in this game")
	ErrNotInGame        = errors.New("user is not in this game")
	ErrNotHost          = errors.New("only the host can start the game")
	ErrInvalidGameState = errors.New("action not allowed in current game state")
	ErrGameNotComplete  = errors.New("not every prompt has been answered")

	// Sheet errors
	ErrSheetNotFound  = errors.New("game sheet not found")
	ErrPromptNotFound = errors.New("prompt not found on sheet")
	ErrPromptAnswered = errors.New("prompt has already been answered")
	ErrOutOfTurn      = errors.New("prompt must be answered in order by the designated player")

	// Session errors
	ErrInvalidSessionState = errors.New("action not allowed in current session state")
)
