package keychain

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "embed"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var Schema string

// Namespace is the namespace all QRZ entries live under.
const Namespace = "qrz"

const (
	entryUsername          = "username"
	entryPassword          = "password"
	entrySessionKey        = "session_key"
	entrySessionExpiration = "session_expiration"
)

// Store persists credentials and the current session in a sqlite database.
// A missing entry reads as the empty string.
type Store struct {
	db        *sql.DB
	namespace string
}

// Open opens (or creates) the database at `path`, ":memory:" gives a
// throwaway database.
func Open(ctx context.Context, path string) (*Store, error) {
	database, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open keychain: %w", err)
	}
	if path == ":memory:" {
		// every connection to :memory: is a separate database
		database.SetMaxOpenConns(1)
	}
	_, err = database.ExecContext(ctx, Schema)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("create keychain schema: %w", err)
	}
	return NewStore(database, Namespace), nil
}

// NewStore wraps an existing database that already has the schema applied.
func NewStore(database *sql.DB, namespace string) *Store {
	return &Store{db: database, namespace: namespace}
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) get(ctx context.Context, name string) (string, error) {
	var value string
	err := s.db.QueryRowContext(
		ctx,
		"select value from Entry where namespace = ? and name = ?",
		s.namespace, name,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get %s: %w", name, err)
	}
	return value, nil
}

func (s *Store) set(ctx context.Context, name, value string) error {
	_, err := s.db.ExecContext(
		ctx,
		`insert into Entry(namespace, name, value) values (?, ?, ?)
		on conflict (namespace, name) do update set value = excluded.value`,
		s.namespace, name, value,
	)
	if err != nil {
		return fmt.Errorf("set %s: %w", name, err)
	}
	return nil
}

func (s *Store) has(ctx context.Context, name string) (bool, error) {
	value, err := s.get(ctx, name)
	return value != "", err
}

// Clear removes every entry in the store's namespace.
func (s *Store) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "delete from Entry where namespace = ?", s.namespace)
	return err
}

func (s *Store) Username(ctx context.Context) (string, error) {
	return s.get(ctx, entryUsername)
}

func (s *Store) Password(ctx context.Context) (string, error) {
	return s.get(ctx, entryPassword)
}

func (s *Store) SessionKey(ctx context.Context) (string, error) {
	return s.get(ctx, entrySessionKey)
}

func (s *Store) SessionExpiration(ctx context.Context) (string, error) {
	return s.get(ctx, entrySessionExpiration)
}

func (s *Store) SetUsername(ctx context.Context, username string) error {
	return s.set(ctx, entryUsername, username)
}

func (s *Store) SetPassword(ctx context.Context, password string) error {
	return s.set(ctx, entryPassword, password)
}

func (s *Store) SetSessionKey(ctx context.Context, key string) error {
	return s.set(ctx, entrySessionKey, key)
}

func (s *Store) SetSessionExpiration(ctx context.Context, expiration string) error {
	return s.set(ctx, entrySessionExpiration, expiration)
}

func (s *Store) HasSessionKey(ctx context.Context) (bool, error) {
	return s.has(ctx, entrySessionKey)
}

func (s *Store) HasSessionExpiration(ctx context.Context) (bool, error) {
	return s.has(ctx, entrySessionExpiration)
}
