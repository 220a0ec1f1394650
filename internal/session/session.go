// Package session holds the identity of the user logged in to the CLI.
package session

import (
	"time"

	"github.com/google/uuid"

	"fintrack/internal/models"
)

// Session is created at login and passed to every call made on the user's
// behalf until logout.
type Session struct {
	ID        string
	UserID    uint
	Username  string
	StartedAt time.Time
}

// New starts a session for user.
func New(user *models.User) *Session {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return &Session{
		ID:        id.String(),
		UserID:    user.ID,
		Username:  user.Username,
		StartedAt: time.Now(),
	}
}
