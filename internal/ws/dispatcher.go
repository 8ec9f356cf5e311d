package ws

import (
	"context"
	"log/slog"
	"sync"

	"github.com/edward93/project-joke-web/internal/model"
	"github.com/edward93/project-joke-web/internal/services/game"
	"github.com/edward93/project-joke-web/internal/services/session"
	"github.com/edward93/project-joke-web/internal/services/story"
	"github.com/edward93/project-joke-web/internal/storage"
)

// Dispatcher translates inbound transport events into engine calls and
// engine results into broadcasts. It keeps only routing tables: one session
// engine per connection and one hub per active game.
type Dispatcher struct {
	games      game.ControllerInterface
	stories    *story.Service
	storage    storage.Storage
	hubManager *HubManager
	logger     *slog.Logger

	mu       sync.RWMutex
	sessions map[model.UserID]*session.Engine
	inGame   map[model.UserID]model.GameID
}

// NewDispatcher creates a new Dispatcher
func NewDispatcher(
	games game.ControllerInterface,
	stories *story.Service,
	store storage.Storage,
	hubManager *HubManager,
	logger *slog.Logger,
) *Dispatcher {
	return &Dispatcher{
		games:      games,
		stories:    stories,
		storage:    store,
		hubManager: hubManager,
		logger:     logger.With(slog.String("component", "dispatcher")),
		sessions:   make(map[model.UserID]*session.Engine),
		inGame:     make(map[model.UserID]model.GameID),
	}
}

// Connect creates the session engine for a fresh connection and
// acknowledges it with its assigned user id
func (d *Dispatcher) Connect(client *Client) {
	engine := session.NewEngine(client.userID, d.logger)
	engine.SetConnected(true)

	d.mu.Lock()
	d.sessions[client.userID] = engine
	d.mu.Unlock()

	d.logger.Info("connection opened", slog.String("user_id", string(client.userID)))

	if env, err := NewEnvelope(model.EventConnected, model.ConnectedPayload{UserID: client.userID}); err == nil {
		client.Send(env)
	}
}

// Disconnect tears down a closed connection. The player's seat is retained
// in a STARTED or FINISHED game so completed answers survive the drop, but
// a WAITING or READY game evicts the player immediately: readiness must
// never wait on a connection that is gone.
func (d *Dispatcher) Disconnect(client *Client) {
	ctx := context.Background()

	d.mu.Lock()
	engine, ok := d.sessions[client.userID]
	gameID, wasInGame := d.inGame[client.userID]
	delete(d.sessions, client.userID)
	delete(d.inGame, client.userID)
	d.mu.Unlock()

	if !ok {
		return
	}
	engine.SetConnected(false)

	_ = d.storage.DeleteUser(ctx, client.userID)

	if wasInGame {
		if hub := d.hubManager.GetHub(gameID); hub != nil {
			hub.Unregister(client)
		}

		g, err := d.games.GetGame(ctx, gameID)
		if err == nil && (g.State == model.GameStateWaiting || g.State == model.GameStateReady) {
			d.evict(ctx, gameID, client.userID)
		}
	}

	d.logger.Info("connection closed", slog.String("user_id", string(client.userID)))
}

// evict removes a disconnected player from a not-yet-started game and
// notifies the remaining players
func (d *Dispatcher) evict(ctx context.Context, gameID model.GameID, userID model.UserID) {
	g, err := d.games.LeaveGame(ctx, gameID, userID)
	if err != nil {
		d.logger.Warn("failed to evict disconnected player",
			slog.String("game_id", string(gameID)),
			slog.String("user_id", string(userID)),
			slog.Any("error", err))
		return
	}

	if g == nil {
		d.hubManager.RemoveHub(gameID)
		return
	}

	if hub := d.hubManager.GetHub(gameID); hub != nil {
		if env, err := NewEnvelope(model.EventPlayerLeft, model.PlayerLeftPayload{UserID: userID, Game: g}); err == nil {
			d.broadcastGame(hub, env, g)
		}
	}
}

// HandleMessage routes one inbound event. Engine failures are recoverable
// and local: they are reported back to the requesting participant only and
// leave canonical state unchanged.
func (d *Dispatcher) HandleMessage(client *Client, raw []byte) {
	ctx := context.Background()

	env, err := ParseEnvelope(raw)
	if err != nil {
		d.sendError(client, err)
		return
	}

	switch env.Type {
	case model.EventNewUser:
		err = d.handleNewUser(ctx, client, env)
	case model.EventCreateGame:
		err = d.handleCreateGame(ctx, client)
	case model.EventJoinGame:
		err = d.handleJoinGame(ctx, client, env)
	case model.EventLeaveGame:
		err = d.handleLeaveGame(ctx, client, env)
	case model.EventReadyPlayer:
		err = d.handleReadyPlayer(ctx, client, env)
	case model.EventStartGame:
		err = d.handleStartGame(ctx, client, env)
	case model.EventAnswerPrompt:
		err = d.handleAnswerPrompt(ctx, client, env)
	default:
		d.logger.Warn("unknown event",
			slog.String("type", string(env.Type)),
			slog.String("user_id", string(client.userID)))
		return
	}

	if err != nil {
		d.sendError(client, err)
	}
}

func (d *Dispatcher) sendError(client *Client, err error) {
	payload := toErrorPayload(err)
	d.logger.Info("request rejected",
		slog.String("user_id", string(client.userID)),
		slog.String("code", payload.Code),
		slog.String("reason", payload.Message))

	if env, encErr := NewEnvelope(model.EventError, payload); encErr == nil {
		client.Send(env)
	}
}

// engineFor returns the session engine owning the client's connection
func (d *Dispatcher) engineFor(client *Client) (*session.Engine, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	engine, ok := d.sessions[client.userID]
	return engine, ok
}

// broadcastGame fans a committed game snapshot out to the hub and folds it
// into each member's mirrored session. Broadcast always follows, never
// interleaves with, the mutation that produced it.
func (d *Dispatcher) broadcastGame(hub *Hub, env Envelope, g *model.Game) {
	hub.BroadcastEvent(env)

	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, id := range hub.ClientIDs() {
		if engine, ok := d.sessions[id]; ok {
			engine.ApplyGameUpdate(g)
		}
	}
}

func (d *Dispatcher) handleNewUser(ctx context.Context, client *Client, env Envelope) error {
	var payload model.NewUserPayload
	if err := env.Decode(&payload); err != nil {
		return err
	}

	engine, ok := d.engineFor(client)
	if !ok {
		return model.ErrInvalidSessionState
	}

	user, err := engine.SubmitUsername(payload.Username)
	if err != nil {
		return err
	}

	if err := d.storage.SaveUser(ctx, user); err != nil {
		return err
	}

	ack, err := NewEnvelope(model.EventUserJoined, model.UserJoinedPayload{User: *user})
	if err != nil {
		return err
	}
	client.Send(ack)

	return nil
}

func (d *Dispatcher) handleCreateGame(ctx context.Context, client *Client) error {
	engine, ok := d.engineFor(client)
	if !ok || !engine.CanJoinGame() {
		return model.ErrInvalidSessionState
	}

	user := engine.CurrentUser()
	if user == nil {
		return model.ErrInvalidSessionState
	}

	g, err := d.games.CreateGame(ctx, *user)
	if err != nil {
		return err
	}

	if err := engine.JoinedGame(g); err != nil {
		return err
	}

	d.mu.Lock()
	d.inGame[client.userID] = g.ID
	d.mu.Unlock()

	hub := d.hubManager.GetOrCreateHub(g.ID)
	hub.Register(client)

	ack, err := NewEnvelope(model.EventGameCreated, model.GameCreatedPayload{Game: g})
	if err != nil {
		return err
	}
	client.Send(ack)

	return nil
}

func (d *Dispatcher) handleJoinGame(ctx context.Context, client *Client, env Envelope) error {
	var payload model.JoinGamePayload
	if err := env.Decode(&payload); err != nil {
		return err
	}
	if payload.GameID == "" {
		return model.ErrEmptyGameID
	}

	engine, ok := d.engineFor(client)
	if !ok || !engine.CanJoinGame() {
		return model.ErrInvalidSessionState
	}

	user := engine.CurrentUser()
	if user == nil {
		return model.ErrInvalidSessionState
	}

	g, err := d.games.JoinGame(ctx, payload.GameID, *user)
	if err != nil {
		return err
	}

	if err := engine.JoinedGame(g); err != nil {
		return err
	}

	d.mu.Lock()
	d.inGame[client.userID] = g.ID
	d.mu.Unlock()

	hub := d.hubManager.GetOrCreateHub(g.ID)
	hub.Register(client)

	joined, err := NewEnvelope(model.EventJoinedGame, model.JoinedGamePayload{UserID: client.userID, Game: g})
	if err != nil {
		return err
	}
	d.broadcastGame(hub, joined, g)

	return nil
}

func (d *Dispatcher) handleLeaveGame(ctx context.Context, client *Client, env Envelope) error {
	var payload model.LeaveGamePayload
	if err := env.Decode(&payload); err != nil {
		return err
	}
	if payload.GameID == "" {
		return model.ErrEmptyGameID
	}

	engine, ok := d.engineFor(client)
	if !ok {
		return model.ErrInvalidSessionState
	}

	g, err := d.games.LeaveGame(ctx, payload.GameID, client.userID)
	if err != nil {
		return err
	}

	if err := engine.LeaveGame(); err != nil {
		return err
	}

	d.mu.Lock()
	delete(d.inGame, client.userID)
	d.mu.Unlock()

	hub := d.hubManager.GetHub(payload.GameID)
	if hub != nil {
		hub.Unregister(client)
	}

	if g == nil {
		// Departure emptied the game
		d.hubManager.RemoveHub(payload.GameID)
		return nil
	}

	if hub != nil {
		left, err := NewEnvelope(model.EventPlayerLeft, model.PlayerLeftPayload{UserID: client.userID, Game: g})
		if err != nil {
			return err
		}
		d.broadcastGame(hub, left, g)
	}

	return nil
}

func (d *Dispatcher) handleReadyPlayer(ctx context.Context, client *Client, env Envelope) error {
	var payload model.ReadyPlayerPayload
	if err := env.Decode(&payload); err != nil {
		return err
	}
	if payload.GameID == "" {
		return model.ErrEmptyGameID
	}

	g, err := d.games.SetReady(ctx, payload.GameID, client.userID)
	if err != nil {
		return err
	}

	if hub := d.hubManager.GetHub(g.ID); hub != nil {
		ready, err := NewEnvelope(model.EventPlayerReady, model.PlayerReadyPayload{Game: g})
		if err != nil {
			return err
		}
		d.broadcastGame(hub, ready, g)
	}

	return nil
}

func (d *Dispatcher) handleStartGame(ctx context.Context, client *Client, env Envelope) error {
	var payload model.StartGamePayload
	if err := env.Decode(&payload); err != nil {
		return err
	}
	if payload.GameID == "" {
		return model.ErrEmptyGameID
	}

	g, err := d.games.StartGame(ctx, payload.GameID, client.userID)
	if err != nil {
		return err
	}

	if hub := d.hubManager.GetHub(g.ID); hub != nil {
		started, err := NewEnvelope(model.EventGameStarted, model.GameStartedPayload{Game: g})
		if err != nil {
			return err
		}
		d.broadcastGame(hub, started, g)
	}

	return nil
}

func (d *Dispatcher) handleAnswerPrompt(ctx context.Context, client *Client, env Envelope) error {
	var payload model.AnswerPromptPayload
	if err := env.Decode(&payload); err != nil {
		return err
	}
	if payload.GameID == "" {
		return model.ErrEmptyGameID
	}

	g, err := d.games.AnswerPrompt(ctx, payload.GameID, payload.SheetOwner, payload.PromptID, payload.Answer, client.userID)
	if err != nil {
		return err
	}

	hub := d.hubManager.GetHub(g.ID)
	if hub == nil {
		return nil
	}

	if g.State == model.GameStateFinished {
		finished, err := NewEnvelope(model.EventGameFinished, model.GameFinishedPayload{
			Game:    g,
			Stories: d.stories.BuildAll(g),
		})
		if err != nil {
			return err
		}
		d.broadcastGame(hub, finished, g)
		return nil
	}

	updated, err := NewEnvelope(model.EventGameUpdated, model.GameUpdatedPayload{Game: g})
	if err != nil {
		return err
	}
	d.broadcastGame(hub, updated, g)

	return nil
}

// SessionCount returns the number of live connections (for health reporting)
func (d *Dispatcher) SessionCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.sessions)
}
