package game

import (
	"context"
	"log/slog"
	"sync"

	"github.com/edward93/project-joke-web/internal/dependencies/clock"
	"github.com/edward93/project-joke-web/internal/dependencies/random"
	"github.com/edward93/project-joke-web/internal/model"
	"github.com/edward93/project-joke-web/internal/storage"
)

const (
	// GameIDLength is the length of generated game ids
	GameIDLength = 8
	// GameIDAlphabet is the characters used in game ids (avoid confusing chars)
	GameIDAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// Controller owns the canonical game life cycle. Every mutating operation
// on one game is serialized through a per-game mutex, so readiness
// aggregation and state transitions cannot race.
type Controller struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger

	mu    sync.Mutex
	locks map[model.GameID]*sync.Mutex
}

// NewController creates a new game Controller
func NewController(
	storage storage.Storage,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage: storage,
		clock:   clock,
		random:  random,
		logger:  logger.With(slog.String("component", "game")),
		locks:   make(map[model.GameID]*sync.Mutex),
	}
}

// gameLock returns the mutex serializing operations for the given game id
func (c *Controller) gameLock(id model.GameID) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	lock, ok := c.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[id] = lock
	}
	return lock
}

// dropLock discards the mutex for a deleted game
func (c *Controller) dropLock(id model.GameID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.locks, id)
}

// save stamps and persists a mutated game
func (c *Controller) save(ctx context.Context, game *model.Game) error {
	game.Version++
	game.UpdatedAt = c.clock.Now()
	return c.storage.SaveGame(ctx, game)
}

// CreateGame allocates a new game with the given user as host and sole player
func (c *Controller) CreateGame(ctx context.Context, host model.User) (*model.Game, error) {
	now := c.clock.Now()

	// Generate unique game id
	var id model.GameID
	for {
		id = model.GameID(c.random.String(GameIDLength, GameIDAlphabet))
		exists, err := c.storage.GameExists(ctx, id)
		if err != nil {
			return nil, err
		}
		if !exists {
			break
		}
	}

	game := &model.Game{
		ID:    id,
		Host:  host.ID,
		State: model.GameStateWaiting,
		Players: map[model.UserID]model.Player{
			host.ID: model.NewPlayer(host),
		},
		GameSheets: map[model.UserID]model.GameSheet{},
		JoinOrder:  []model.UserID{host.ID},
		Version:    1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := c.storage.SaveGame(ctx, game); err != nil {
		return nil, err
	}

	c.logger.Info("game created",
		slog.String("game_id", string(id)),
		slog.String("host", string(host.ID)),
	)

	return game, nil
}

// GetGame retrieves a game by id
func (c *Controller) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	return c.storage.GetGame(ctx, id)
}

// JoinGame adds a user to a game as an unready player. Joining a READY game
// reverts it to WAITING and resets every player's readiness: a new arrival
// invalidates the previous readiness round.
func (c *Controller) JoinGame(ctx context.Context, id model.GameID, user model.User) (*model.Game, error) {
	lock := c.gameLock(id)
	lock.Lock()
	defer lock.Unlock()

	game, err := c.storage.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}

	if game.State != model.GameStateWaiting && game.State != model.GameStateReady {
		return nil, model.ErrInvalidGameState
	}
	if game.GetPlayer(user.ID) != nil {
		return nil, model.ErrAlreadyJoined
	}

	game.Players[user.ID] = model.NewPlayer(user)
	game.JoinOrder = append(game.JoinOrder, user.ID)

	if game.State == model.GameStateReady {
		game.State = model.GameStateWaiting
		game.ResetReadiness()
	}

	if err := c.save(ctx, game); err != nil {
		return nil, err
	}

	c.logger.Info("player joined",
		slog.String("game_id", string(id)),
		slog.String("user_id", string(user.ID)),
		slog.Int("player_count", len(game.Players)),
	)

	return game, nil
}

// LeaveGame removes a player from a game. The emptied game is deleted and a
// nil game returned. A departed host is replaced by the earliest remaining
// joiner. Leaving never flips WAITING to READY by itself; the remaining
// players still have to signal readiness.
func (c *Controller) LeaveGame(ctx context.Context, id model.GameID, userID model.UserID) (*model.Game, error) {
	lock := c.gameLock(id)
	lock.Lock()
	defer lock.Unlock()

	game, err := c.storage.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}

	if game.GetPlayer(userID) == nil {
		return nil, model.ErrNotInGame
	}

	delete(game.Players, userID)
	for i, pid := range game.JoinOrder {
		if pid == userID {
			game.JoinOrder = append(game.JoinOrder[:i], game.JoinOrder[i+1:]...)
			break
		}
	}

	if len(game.Players) == 0 {
		if err := c.storage.DeleteGame(ctx, id); err != nil {
			return nil, err
		}
		c.dropLock(id)
		c.logger.Info("game deleted", slog.String("game_id", string(id)))
		return nil, nil
	}

	if game.Host == userID {
		game.Host = game.JoinOrder[0]
	}

	if err := c.save(ctx, game); err != nil {
		return nil, err
	}

	c.logger.Info("player left",
		slog.String("game_id", string(id)),
		slog.String("user_id", string(userID)),
		slog.Int("player_count", len(game.Players)),
	)

	return game, nil
}

// SetReady marks a player as ready. When every player is ready the game
// transitions WAITING -> READY.
func (c *Controller) SetReady(ctx context.Context, id model.GameID, userID model.UserID) (*model.Game, error) {
	lock := c.gameLock(id)
	lock.Lock()
	defer lock.Unlock()

	game, err := c.storage.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}

	if game.State != model.GameStateWaiting {
		return nil, model.ErrInvalidGameState
	}

	player := game.GetPlayer(userID)
	if player == nil {
		return nil, model.ErrNotInGame
	}

	player.Ready = true
	game.Players[userID] = *player

	if game.AllPlayersReady() {
		game.State = model.GameStateReady
	}

	if err := c.save(ctx, game); err != nil {
		return nil, err
	}

	c.logger.Info("player ready",
		slog.String("game_id", string(id)),
		slog.String("user_id", string(userID)),
		slog.String("state", string(game.State)),
	)

	return game, nil
}

// StartGame transitions a READY game to STARTED, seeding one sheet per
// player with the six catalog prompts in order. Only the host may start.
func (c *Controller) StartGame(ctx context.Context, id model.GameID, requesterID model.UserID) (*model.Game, error) {
	lock := c.gameLock(id)
	lock.Lock()
	defer lock.Unlock()

	game, err := c.storage.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}

	if requesterID != game.Host {
		return nil, model.ErrNotHost
	}
	if game.State != model.GameStateReady {
		return nil, model.ErrInvalidGameState
	}

	game.State = model.GameStateStarted
	for _, playerID := range game.JoinOrder {
		seeded, ok := model.CreateGameSheet(game, playerID)
		if !ok {
			return nil, model.ErrGameNotFound
		}
		game = seeded

		sheet := game.GameSheets[playerID]
		sheet.Prompts = model.InitPrompts()
		game.GameSheets[playerID] = sheet
	}

	if err := c.save(ctx, game); err != nil {
		return nil, err
	}

	c.logger.Info("game started",
		slog.String("game_id", string(id)),
		slog.Int("player_count", len(game.Players)),
	)

	return game, nil
}

// AnswerPrompt records an answer on the given sheet. The prompt must exist
// and be unanswered; an already-answered prompt is rejected unchanged.
// Prompts are answered in catalog order by the rotating designated player;
// anything else is rejected as out of turn.
// PrevAnsweredBy is stamped from the preceding prompt on the same sheet,
// preserving who held the sheet before it was passed on.
// When the last prompt of the last sheet is answered the game finishes.
func (c *Controller) AnswerPrompt(
	ctx context.Context,
	id model.GameID,
	sheetOwner model.UserID,
	promptID model.PromptID,
	answer string,
	answeredBy model.UserID,
) (*model.Game, error) {
	if answer == "" {
		return nil, model.ErrEmptyAnswer
	}

	lock := c.gameLock(id)
	lock.Lock()
	defer lock.Unlock()

	game, err := c.storage.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}

	if game.State != model.GameStateStarted {
		return nil, model.ErrInvalidGameState
	}
	if game.GetPlayer(answeredBy) == nil {
		return nil, model.ErrNotInGame
	}

	sheet, ok := game.GameSheets[sheetOwner]
	if !ok {
		return nil, model.ErrSheetNotFound
	}

	idx := -1
	for i := range sheet.Prompts {
		if sheet.Prompts[i].ID == promptID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, model.ErrPromptNotFound
	}

	prompt := &sheet.Prompts[idx]
	if prompt.Answered() {
		return nil, model.ErrPromptAnswered
	}

	// Sheets pass round-robin: answers land in catalog order and the
	// prompt's position fixes who may write it
	next := -1
	for i := range sheet.Prompts {
		if !sheet.Prompts[i].Answered() {
			next = i
			break
		}
	}
	if idx != next {
		return nil, model.ErrOutOfTurn
	}
	if designated, ok := game.DesignatedAnswerer(sheetOwner); ok && designated != answeredBy {
		return nil, model.ErrOutOfTurn
	}

	prompt.Answer = answer
	prompt.AnsweredBy = answeredBy
	if idx > 0 {
		prompt.PrevAnsweredBy = sheet.Prompts[idx-1].AnsweredBy
	}
	game.GameSheets[sheetOwner] = sheet

	if game.IsComplete() {
		game.State = model.GameStateFinished
		c.logger.Info("game finished", slog.String("game_id", string(id)))
	}

	if err := c.save(ctx, game); err != nil {
		return nil, err
	}

	return game, nil
}

// FinishGame transitions a STARTED game to FINISHED when every sheet's
// every prompt has an answer. An incomplete game is returned unchanged
// with a false completion flag.
func (c *Controller) FinishGame(ctx context.Context, id model.GameID) (*model.Game, bool, error) {
	lock := c.gameLock(id)
	lock.Lock()
	defer lock.Unlock()

	game, err := c.storage.GetGame(ctx, id)
	if err != nil {
		return nil, false, err
	}

	if game.State == model.GameStateFinished {
		return game, true, nil
	}
	if game.State != model.GameStateStarted {
		return nil, false, model.ErrInvalidGameState
	}
	if !game.IsComplete() {
		return game, false, nil
	}

	game.State = model.GameStateFinished
	if err := c.save(ctx, game); err != nil {
		return nil, false, err
	}

	c.logger.Info("game finished", slog.String("game_id", string(id)))

	return game, true, nil
}

// Interface for dependency injection
type ControllerInterface interface {
	CreateGame(ctx context.Context, host model.User) (*model.Game, error)
	GetGame(ctx context.Context, id model.GameID) (*model.Game, error)
	JoinGame(ctx context.Context, id model.GameID, user model.User) (*model.Game, error)
	LeaveGame(ctx context.Context, id model.GameID, userID model.UserID) (*model.Game, error)
	SetReady(ctx context.Context, id model.GameID, userID model.UserID) (*model.Game, error)
	StartGame(ctx context.Context, id model.GameID, requesterID model.UserID) (*model.Game, error)
	AnswerPrompt(ctx context.Context, id model.GameID, sheetOwner model.UserID, promptID model.PromptID, answer string, answeredBy model.UserID) (*model.Game, error)
	FinishGame(ctx context.Context, id model.GameID) (*model.Game, bool, error)
}

var _ ControllerInterface = (*Controller)(nil)
