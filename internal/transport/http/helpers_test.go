package http

import (
	"context"
	"testing"
	"time"

	"github.com/quietline/quietline-server/internal/auth"
	"github.com/quietline/quietline-server/internal/store"
	"github.com/quietline/quietline-server/internal/store/sqlite"
)

// createTestStore creates an in-memory SQLite store with the schema applied.
func createTestStore(t *testing.T) store.Store {
	t.Helper()

	st, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	return st
}

// createTestAuthService creates an auth service with one seeded listener.
func createTestAuthService(t *testing.T, st store.Store, jwtSecret string) *auth.Service {
	t.Helper()

	jwtConfig := &auth.JWTConfig{
		Secret:   []byte(jwtSecret),
		Issuer:   "test",
		Audience: "test",
		TTL:      24 * time.Hour,
	}

	svc := auth.NewService(st, jwtConfig)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := svc.EnsureListener(ctx, "sarah@example.org", "psych2024", "Sarah"); err != nil {
		t.Fatalf("seed listener: %v", err)
	}

	return svc
}
