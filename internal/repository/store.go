package repository

import (
	"context"

	"energy-advisor/internal/model"
)

// SessionStore is the keyed storage for conversation state. All mutation
// goes through Update, which refreshes the session's update timestamp.
// Get returns model.ErrSessionNotFound for unknown ids.
type SessionStore interface {
	Create(ctx context.Context) (string, error)
	Get(ctx context.Context, id string) (*model.Session, error)
	Update(ctx context.Context, session *model.Session) error
	Close() error
}
