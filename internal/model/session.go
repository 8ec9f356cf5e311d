package model

// SessionState tracks a participant's progress from connecting to playing
type SessionState string

const (
	SessionStateInitiated       SessionState = "INITIATED"
	SessionStateUsernameCreated SessionState = "USERNAME_CREATED"
	SessionStateJoinedGame      SessionState = "JOINED_GAME"
	SessionStateLeftGame        SessionState = "LEFT_GAME"
)

// Session is one participant's connection-scoped view of the system.
// CurrentGame is a read-only mirror of the canonical game, updated only
// by inbound protocol events.
type Session struct {
	State SessionState `json:"state"`

	// Connected is an orthogonal transport-availability flag. It toggles
	// on connect/disconnect and does not reset the state progression.
	Connected bool `json:"connected"`

	CurrentUser *User `json:"currentUser,omitempty"`
	CurrentGame *Game `json:"currentGame,omitempty"`
}
