package session

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"clipforge/internal/config"
	"clipforge/internal/spaces"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; users clear the state directory to adopt the new schema.
const schemaVersion = 1

// ErrSchemaMismatch indicates the state database schema version doesn't match
// the expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// ErrStateLocked indicates another process holds the state directory.
var ErrStateLocked = errors.New("state directory is locked by another clipforge process")

// User is the authenticated identity.
type User struct {
	ID    string
	Email string
	Admin bool
}

// Store persists the session whitelist (token, user, workspaces, active
// workspace) in SQLite. It implements api.TokenStore.
type Store struct {
	db   *sql.DB
	lock *flock.Flock
	path string
}

// Open initializes or connects to the state database. The state directory is
// guarded by a file lock so concurrent CLI invocations don't interleave
// writes.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	lock := flock.New(filepath.Join(cfg.Paths.StateDir, "state.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire state lock: %w", err)
	}
	if !locked {
		return nil, ErrStateLocked
	}

	dbPath := filepath.Join(cfg.Paths.StateDir, "state.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, lock: lock, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}
	return store, nil
}

// Close releases the database and the state lock.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	var dbErr error
	if s.db != nil {
		dbErr = s.db.Close()
	}
	if s.lock != nil {
		_ = s.lock.Unlock()
	}
	return dbErr
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		return nil
	}

	var version int
	if err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to reset)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

// Token returns the stored bearer token, or empty when signed out.
func (s *Store) Token() string {
	var token string
	if err := s.db.QueryRow("SELECT token FROM session WHERE id = 1").Scan(&token); err != nil {
		return ""
	}
	return token
}

// SetToken persists a bearer token, including server-rotated replacements.
func (s *Store) SetToken(token string) error {
	_, err := s.db.Exec("UPDATE session SET token = ? WHERE id = 1", token)
	if err != nil {
		return fmt.Errorf("persist token: %w", err)
	}
	return nil
}

// Clear removes the stored token while leaving identity intact. A follow-up
// login re-establishes the session for the same user.
func (s *Store) Clear() error {
	_, err := s.db.Exec("UPDATE session SET token = '' WHERE id = 1")
	if err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

// User returns the persisted identity, or nil when signed out.
func (s *Store) User() (*User, error) {
	var user User
	var admin int
	err := s.db.QueryRow("SELECT user_id, email, is_admin FROM session WHERE id = 1").
		Scan(&user.ID, &user.Email, &admin)
	if err != nil {
		return nil, fmt.Errorf("read user: %w", err)
	}
	if user.ID == "" {
		return nil, nil
	}
	user.Admin = admin != 0
	return &user, nil
}

// SetUser persists the authenticated identity.
func (s *Store) SetUser(user User) error {
	admin := 0
	if user.Admin {
		admin = 1
	}
	_, err := s.db.Exec(
		"UPDATE session SET user_id = ?, email = ?, is_admin = ? WHERE id = 1",
		user.ID, user.Email, admin,
	)
	if err != nil {
		return fmt.Errorf("persist user: %w", err)
	}
	return nil
}

// SaveSpaces replaces the persisted workspace list, preserving order.
func (s *Store) SaveSpaces(list []spaces.Space) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin spaces tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM spaces"); err != nil {
		return fmt.Errorf("clear spaces: %w", err)
	}
	for i, space := range list {
		if _, err := tx.Exec(
			"INSERT INTO spaces (space_id, name, color, position) VALUES (?, ?, ?, ?)",
			space.ID, space.Name, space.Color, i,
		); err != nil {
			return fmt.Errorf("insert space %s: %w", space.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit spaces: %w", err)
	}
	return nil
}

// Spaces returns the persisted workspace list in saved order.
func (s *Store) Spaces() ([]spaces.Space, error) {
	rows, err := s.db.Query("SELECT space_id, name, color FROM spaces ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("read spaces: %w", err)
	}
	defer rows.Close()

	var list []spaces.Space
	for rows.Next() {
		var space spaces.Space
		if err := rows.Scan(&space.ID, &space.Name, &space.Color); err != nil {
			return nil, fmt.Errorf("scan space: %w", err)
		}
		list = append(list, space)
	}
	return list, rows.Err()
}

// SetActiveSpace persists the active workspace id.
func (s *Store) SetActiveSpace(spaceID string) error {
	_, err := s.db.Exec("UPDATE active_space SET space_id = ? WHERE id = 1", spaceID)
	if err != nil {
		return fmt.Errorf("persist active space: %w", err)
	}
	return nil
}

// ActiveSpace returns the persisted active workspace, or nil when none is
// selected or the id no longer appears in the saved list.
func (s *Store) ActiveSpace() (*spaces.Space, error) {
	var spaceID string
	if err := s.db.QueryRow("SELECT space_id FROM active_space WHERE id = 1").Scan(&spaceID); err != nil {
		return nil, fmt.Errorf("read active space: %w", err)
	}
	if spaceID == "" {
		return nil, nil
	}
	var space spaces.Space
	err := s.db.QueryRow("SELECT space_id, name, color FROM spaces WHERE space_id = ?", spaceID).
		Scan(&space.ID, &space.Name, &space.Color)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read active space row: %w", err)
	}
	return &space, nil
}

// Purge resets every persisted slice to its initial value. This is the
// single global teardown point backing logout.
func (s *Store) Purge() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin purge tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	statements := []string{
		"UPDATE session SET token = '', user_id = '', email = '', is_admin = 0 WHERE id = 1",
		"DELETE FROM spaces",
		"UPDATE active_space SET space_id = '' WHERE id = 1",
	}
	for _, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("purge state: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit purge: %w", err)
	}
	return nil
}
