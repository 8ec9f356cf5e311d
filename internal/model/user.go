package model

// UserID uniquely identifies a connected user across the system.
// It is an opaque connection-scoped identifier assigned by the coordinator.
type UserID string

// User represents a connected participant who has chosen a username
type User struct {
	ID       UserID `json:"id"`
	Username string `json:"username"`
}

// Player is a User who has joined a game
type Player struct {
	User
	Ready bool `json:"ready"`
}

// NewPlayer wraps a user as an unready player
func NewPlayer(user User) Player {
	return Player{User: user, Ready: false}
}
