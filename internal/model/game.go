package model

import "time"

// GameID uniquely identifies a game
type GameID string

// GameState represents the current phase of a game
type GameState string

const (
	GameStateWaiting  GameState = "WAITING"  // Waiting for players to ready up
	GameStateReady    GameState = "READY"    // All players are ready
	GameStateStarted  GameState = "STARTED"  // Sheets seeded, answering in progress
	GameStateFinished GameState = "FINISHED" // Every sheet fully answered
)

// Game represents one shared multiplayer match. The coordinator owns the
// canonical copy; participants hold read-only mirrors applied by version.
type Game struct {
	ID    GameID    `json:"id"`
	Host  UserID    `json:"host"`
	State GameState `json:"state"`

	Players    map[UserID]Player    `json:"players"`
	GameSheets map[UserID]GameSheet `json:"gameSheets"`

	// JoinOrder is the stable ordering of players by join time.
	// Maps are unordered, so sheet rotation and host reassignment key off this.
	JoinOrder []UserID `json:"joinOrder"`

	// Version increments on every canonical mutation; mirrors apply
	// snapshots only when the version is newer than what they hold
	Version int64 `json:"version"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Clone returns a deep copy sharing no maps or slices with the receiver.
// Snapshots handed out for broadcast must not alias canonical state.
func (g *Game) Clone() *Game {
	if g == nil {
		return nil
	}

	clone := *g

	if g.Players != nil {
		clone.Players = make(map[UserID]Player, len(g.Players))
		for id, p := range g.Players {
			clone.Players[id] = p
		}
	}

	if g.GameSheets != nil {
		clone.GameSheets = make(map[UserID]GameSheet, len(g.GameSheets))
		for owner, sheet := range g.GameSheets {
			sheet.Prompts = append([]GamePrompt(nil), sheet.Prompts...)
			clone.GameSheets[owner] = sheet
		}
	}

	clone.JoinOrder = append([]UserID(nil), g.JoinOrder...)

	return &clone
}

// GetPlayer returns the player with the given id, or nil if not joined
func (g *Game) GetPlayer(id UserID) *Player {
	if p, ok := g.Players[id]; ok {
		return &p
	}
	return nil
}

// AllPlayersReady reports whether every player is ready.
// An empty game is never ready.
func (g *Game) AllPlayersReady() bool {
	if len(g.Players) == 0 {
		return false
	}
	for _, p := range g.Players {
		if !p.Ready {
			return false
		}
	}
	return true
}

// IsComplete reports whether every sheet's every prompt has an answer
func (g *Game) IsComplete() bool {
	if len(g.GameSheets) == 0 {
		return false
	}
	for _, sheet := range g.GameSheets {
		if !sheet.Complete() {
			return false
		}
	}
	return true
}

// ResetReadiness clears every player's ready flag
func (g *Game) ResetReadiness() {
	for id, p := range g.Players {
		p.Ready = false
		g.Players[id] = p
	}
}

// CreateGameSheet returns a copy of the game with an empty sheet inserted
// for the given user. The receiver is not mutated; a nil game yields false.
func CreateGameSheet(game *Game, userID UserID) (*Game, bool) {
	if game == nil {
		return nil, false
	}

	updated := *game
	updated.GameSheets = make(map[UserID]GameSheet, len(game.GameSheets)+1)
	for owner, sheet := range game.GameSheets {
		updated.GameSheets[owner] = sheet
	}
	updated.GameSheets[userID] = GameSheet{Owner: userID, Prompts: []GamePrompt{}}

	return &updated, true
}

// DesignatedAnswerer returns who should answer the next unanswered prompt on
// the sheet owned by the given player, and false when the sheet is complete
// or the owner is unknown. Sheets pass round-robin by join order: the owner
// answers the first prompt, the next joiner the second, and so on, wrapping.
func (g *Game) DesignatedAnswerer(owner UserID) (UserID, bool) {
	ownerIdx := -1
	for i, id := range g.JoinOrder {
		if id == owner {
			ownerIdx = i
			break
		}
	}
	if ownerIdx == -1 {
		return "", false
	}

	sheet, ok := g.GameSheets[owner]
	if !ok {
		return "", false
	}

	for j := range sheet.Prompts {
		if !sheet.Prompts[j].Answered() {
			return g.JoinOrder[(ownerIdx+j)%len(g.JoinOrder)], true
		}
	}
	return "", false
}
