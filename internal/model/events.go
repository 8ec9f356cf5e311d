package model

// EventType identifies a protocol event
type EventType string

// Events sent by participants to the coordinator
const (
	EventNewUser      EventType = "new-user"
	EventCreateGame   EventType = "create-game"
	EventJoinGame     EventType = "join-game"
	EventLeaveGame    EventType = "leave-game"
	EventReadyPlayer  EventType = "ready-player"
	EventStartGame    EventType = "start-game"
	EventAnswerPrompt EventType = "answer-prompt"
)

// Events sent by the coordinator to participants
const (
	EventConnected    EventType = "connected"
	EventUserJoined   EventType = "user-joined"
	EventGameCreated  EventType = "game-created"
	EventJoinedGame   EventType = "joined-game"
	EventPlayerReady  EventType = "player-ready"
	EventGameStarted  EventType = "game-started"
	EventGameUpdated  EventType = "game-updated"
	EventGameFinished EventType = "game-finished"
	EventPlayerLeft   EventType = "player-left"
	EventError        EventType = "error"
)

// NewUserPayload carries a username submission
type NewUserPayload struct {
	Username string `json:"username"`
}

// JoinGamePayload carries a request to join an existing game
type JoinGamePayload struct {
	GameID GameID `json:"gameId"`
}

// LeaveGamePayload carries a request to leave a game
type LeaveGamePayload struct {
	GameID GameID `json:"gameId"`
}

// ReadyPlayerPayload carries a readiness signal
type ReadyPlayerPayload struct {
	GameID GameID `json:"gameId"`
}

// StartGamePayload carries a host's request to start a game
type StartGamePayload struct {
	GameID GameID `json:"gameId"`
}

// AnswerPromptPayload carries a prompt answer submission
type AnswerPromptPayload struct {
	GameID     GameID   `json:"gameId"`
	SheetOwner UserID   `json:"sheetOwner"`
	PromptID   PromptID `json:"promptId"`
	Answer     string   `json:"answer"`
}

// ConnectedPayload acknowledges a new connection with its assigned id
type ConnectedPayload struct {
	UserID UserID `json:"userId"`
}

// UserJoinedPayload announces a user's presence
type UserJoinedPayload struct {
	User User `json:"user"`
}

// GameCreatedPayload carries a freshly created game to its host
type GameCreatedPayload struct {
	Game *Game `json:"game"`
}

// JoinedGamePayload carries the updated game after a player joined
type JoinedGamePayload struct {
	UserID UserID `json:"userId"`
	Game   *Game  `json:"game"`
}

// PlayerReadyPayload carries the updated game after a readiness change
type PlayerReadyPayload struct {
	Game *Game `json:"game"`
}

// GameStartedPayload carries the started game with seeded sheets
type GameStartedPayload struct {
	Game *Game `json:"game"`
}

// GameUpdatedPayload carries the game after an answer was recorded
type GameUpdatedPayload struct {
	Game *Game `json:"game"`
}

// GameFinishedPayload carries the finished game and its assembled stories,
// one per sheet in join order
type GameFinishedPayload struct {
	Game    *Game    `json:"game"`
	Stories []string `json:"stories"`
}

// PlayerLeftPayload carries the updated game after a player left.
// Game is nil when the departure emptied and deleted the game.
type PlayerLeftPayload struct {
	UserID UserID `json:"userId"`
	Game   *Game  `json:"game,omitempty"`
}

// ErrorPayload reports a rejected request back to the requesting participant
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
