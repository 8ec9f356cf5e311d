package redis

import (
	"fmt"

	"github.com/edward93/project-joke-web/internal/model"
)

// Key prefix for all stored data
const keyPrefix = "jokeweb"

// userKey returns the Redis key for a User
func userKey(id model.UserID) string {
	return fmt.Sprintf("%s:user:%s", keyPrefix, id)
}

// gameKey returns the Redis key for a Game
func gameKey(id model.GameID) string {
	return fmt.Sprintf("%s:game:%s", keyPrefix, id)
}
