package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/quietline/quietline-server/internal/store"
)

var (
	// ErrInvalidCredentials is returned when email/password don't match.
	// Deliberately covers both unknown email and wrong password so the
	// response never reveals whether an account exists.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnavailable is returned when the credential store cannot be reached.
	ErrUnavailable = errors.New("authentication service unavailable")
)

// Identity is a verified listener identity.
type Identity struct {
	ID   int64
	Name string
}

// Service provides listener authentication operations.
type Service struct {
	store     store.ListenerStore
	jwtConfig *JWTConfig
}

// NewService creates a new authentication service.
func NewService(listenerStore store.ListenerStore, jwtConfig *JWTConfig) *Service {
	return &Service{
		store:     listenerStore,
		jwtConfig: jwtConfig,
	}
}

// Login verifies an email/password pair and returns the listener identity.
func (s *Service) Login(ctx context.Context, email, password string) (*Identity, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	listener, err := s.store.GetListenerByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	if err := ComparePassword(listener.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	return &Identity{ID: listener.ID, Name: listener.Name}, nil
}

// Token issues a session token for a verified identity.
func (s *Service) Token(identity *Identity) (string, error) {
	return GenerateToken(s.jwtConfig, identity.ID, identity.Name)
}

// VerifyToken validates a session token and returns the identity it carries.
func (s *Service) VerifyToken(tokenString string) (*Identity, error) {
	claims, err := ValidateToken(s.jwtConfig, tokenString)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	return &Identity{ID: claims.ListenerID, Name: claims.Name}, nil
}

// EnsureListener creates a listener account unless the email is already taken.
// Returns true if a new account was created. Used for startup seeding.
func (s *Service) EnsureListener(ctx context.Context, email, password, name string) (bool, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	existing, err := s.store.GetListenerByEmail(ctx, email)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return false, fmt.Errorf("lookup listener: %w", err)
	}
	if existing != nil {
		return false, nil
	}

	hash, err := HashPassword(password)
	if err != nil {
		return false, err
	}

	if _, err := s.store.CreateListener(ctx, email, hash, name); err != nil {
		return false, fmt.Errorf("create listener: %w", err)
	}
	return true, nil
}
