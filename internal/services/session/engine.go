package session

import (
	"log/slog"
	"sync"

	"github.com/edward93/project-joke-web/internal/model"
)

// Engine tracks one participant's progress from connecting to playing.
// One instance exists per connection; the dispatcher drives it. The game it
// holds is a read-only mirror of the canonical copy, applied by version.
type Engine struct {
	mu      sync.RWMutex
	session model.Session
	userID  model.UserID
	logger  *slog.Logger
}

// NewEngine creates a session engine for the given connection identity
func NewEngine(userID model.UserID, logger *slog.Logger) *Engine {
	return &Engine{
		session: model.Session{State: model.SessionStateInitiated},
		userID:  userID,
		logger: logger.With(
			slog.String("component", "session"),
			slog.String("user_id", string(userID)),
		),
	}
}

// UserID returns the connection-scoped user id
func (e *Engine) UserID() model.UserID {
	return e.userID
}

// Snapshot returns a copy of the current session
func (e *Engine) Snapshot() model.Session {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.session
}

// State returns the current session state
func (e *Engine) State() model.SessionState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.session.State
}

// SetConnected toggles the transport-availability flag. Connectivity is
// orthogonal to the state progression and never resets it.
func (e *Engine) SetConnected(connected bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.session.Connected = connected
}

// SubmitUsername records the participant's chosen username and moves the
// session from INITIATED to USERNAME_CREATED
func (e *Engine) SubmitUsername(name string) (*model.User, error) {
	if name == "" {
		return nil, model.ErrEmptyUsername
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session.State != model.SessionStateInitiated {
		return nil, model.ErrInvalidSessionState
	}

	user := &model.User{ID: e.userID, Username: name}
	e.session.State = model.SessionStateUsernameCreated
	e.session.CurrentUser = user

	e.logger.Info("username created", slog.String("username", name))

	return user, nil
}

// CurrentUser returns the session's user, or nil before a username is chosen
func (e *Engine) CurrentUser() *model.User {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.session.CurrentUser
}

// CanJoinGame reports whether the session may create or join a game.
// LEFT_GAME counts the same as USERNAME_CREATED: a participant who left one
// game can enter another without resubmitting a username.
func (e *Engine) CanJoinGame() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.session.State == model.SessionStateUsernameCreated ||
		e.session.State == model.SessionStateLeftGame
}

// JoinedGame mirrors the game into the session and moves it to JOINED_GAME
func (e *Engine) JoinedGame(game *model.Game) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session.State != model.SessionStateUsernameCreated &&
		e.session.State != model.SessionStateLeftGame {
		return model.ErrInvalidSessionState
	}

	e.session.State = model.SessionStateJoinedGame
	e.session.CurrentGame = game

	e.logger.Info("joined game", slog.String("game_id", string(game.ID)))

	return nil
}

// ApplyGameUpdate folds a broadcast snapshot into the mirrored game.
// Stale or replayed snapshots (version not newer than the mirror's) are
// ignored, so out-of-order delivery cannot corrupt local state.
func (e *Engine) ApplyGameUpdate(game *model.Game) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session.State != model.SessionStateJoinedGame {
		return false
	}
	if e.session.CurrentGame != nil &&
		e.session.CurrentGame.ID == game.ID &&
		game.Version <= e.session.CurrentGame.Version {
		return false
	}

	e.session.CurrentGame = game
	return true
}

// CurrentGame returns the mirrored game, or nil when not in one
func (e *Engine) CurrentGame() *model.Game {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.session.CurrentGame
}

// LeaveGame drops the mirrored game and moves the session to LEFT_GAME
func (e *Engine) LeaveGame() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session.State != model.SessionStateJoinedGame {
		return model.ErrInvalidSessionState
	}

	e.session.State = model.SessionStateLeftGame
	e.session.CurrentGame = nil

	e.logger.Info("left game")

	return nil
}
