// Package store keeps per-user portal credentials in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/victorvsmirnov/udiinformer/internal/auth"
)

const schema = `
CREATE TABLE IF NOT EXISTS credentials (
	user_id    TEXT PRIMARY KEY,
	identifier TEXT NOT NULL DEFAULT '',
	secret     TEXT NOT NULL DEFAULT '',
	updated_at TIMESTAMP NOT NULL
);`

// Store is the SQLite credential store
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (and creates, if needed) the database file at path
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	// busy_timeout waits on a locked database instead of failing;
	// WAL lets monitor reads run alongside a credential update.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Path returns the filesystem path to the database file
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the stored credential of userID. ok is false when the user
// has never stored anything.
func (s *Store) Get(ctx context.Context, userID string) (cred auth.Credential, ok bool, err error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT identifier, secret FROM credentials WHERE user_id = ?`, userID)
	if err := row.Scan(&cred.Identifier, &cred.Secret); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return auth.Credential{}, false, nil
		}
		return auth.Credential{}, false, fmt.Errorf("loading credential: %w", err)
	}
	return cred, true, nil
}

// SetIdentifier stores the login identifier of userID
func (s *Store) SetIdentifier(ctx context.Context, userID, identifier string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO credentials (user_id, identifier, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET identifier = excluded.identifier, updated_at = excluded.updated_at`,
		userID, identifier, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("saving identifier: %w", err)
	}
	return nil
}

// SetSecret stores the password of userID
func (s *Store) SetSecret(ctx context.Context, userID, secret string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO credentials (user_id, secret, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET secret = excluded.secret, updated_at = excluded.updated_at`,
		userID, secret, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("saving secret: %w", err)
	}
	return nil
}

// Users lists every user with a stored record, ordered by id
func (s *Store) Users(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT user_id FROM credentials ORDER BY user_id`)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, id)
	}
	return users, rows.Err()
}

// Delete removes everything stored for userID
func (s *Store) Delete(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM credentials WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("deleting credential: %w", err)
	}
	return nil
}
