package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/quietline/quietline-server/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS listeners (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	name          TEXT NOT NULL,
	created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLite store and applies the schema.
// dbPath is the path to the SQLite database file.
func New(dbPath string) (*SQLiteStore, error) {
	return NewWithSetup(dbPath, func(db *sql.DB) error {
		_, err := db.Exec(schema)
		return err
	})
}

// NewWithSetup creates a new SQLite store and runs a setup function.
// Useful for tests to apply an alternate schema.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateListener creates a new listener account with a hashed password.
func (s *SQLiteStore) CreateListener(ctx context.Context, email, passwordHash, name string) (*store.Listener, error) {
	query := `
		INSERT INTO listeners (email, password_hash, name)
		VALUES (?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query, email, passwordHash, name)
	if err != nil {
		return nil, fmt.Errorf("insert listener: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	return s.GetListenerByID(ctx, id)
}

// GetListenerByEmail retrieves a listener by email.
func (s *SQLiteStore) GetListenerByEmail(ctx context.Context, email string) (*store.Listener, error) {
	query := `
		SELECT id, email, password_hash, name, created_at
		FROM listeners
		WHERE email = ?
	`
	return s.scanListener(s.db.QueryRowContext(ctx, query, email))
}

// GetListenerByID retrieves a listener by ID.
func (s *SQLiteStore) GetListenerByID(ctx context.Context, id int64) (*store.Listener, error) {
	query := `
		SELECT id, email, password_hash, name, created_at
		FROM listeners
		WHERE id = ?
	`
	return s.scanListener(s.db.QueryRowContext(ctx, query, id))
}

func (s *SQLiteStore) scanListener(row *sql.Row) (*store.Listener, error) {
	var l store.Listener
	err := row.Scan(
		&l.ID,
		&l.Email,
		&l.PasswordHash,
		&l.Name,
		&l.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("query listener: %w", err)
	}

	return &l, nil
}
