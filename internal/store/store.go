package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Listener is a volunteer account allowed to take the listener role.
type Listener struct {
	ID           int64
	Email        string
	PasswordHash string
	Name         string
	CreatedAt    time.Time
}

// ListenerStore handles listener account persistence.
type ListenerStore interface {
	// CreateListener creates a new listener account with a hashed password.
	CreateListener(ctx context.Context, email, passwordHash, name string) (*Listener, error)

	// GetListenerByEmail retrieves a listener by email.
	// Returns ErrNotFound if no such account exists.
	GetListenerByEmail(ctx context.Context, email string) (*Listener, error)

	// GetListenerByID retrieves a listener by ID.
	// Returns ErrNotFound if no such account exists.
	GetListenerByID(ctx context.Context, id int64) (*Listener, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	ListenerStore

	// Close closes the underlying database connection.
	Close() error
}
