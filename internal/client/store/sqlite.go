package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/mkaranov/brospace/internal/dbx"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

const (
	keyUserID       = "user_id"
	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
)

// SqliteStore keeps the session as key/value rows in a local sqlite file.
type SqliteStore struct {
	db *sql.DB
}

var _ SessionStore = &SqliteStore{}

// NewSqliteStore opens (or creates) the database file and applies migrations.
func NewSqliteStore(ctx context.Context, path string) (*SqliteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening db: %w", err)
	}

	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return nil, fmt.Errorf("error setting dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return nil, fmt.Errorf("error running migrations: %w", err)
	}

	return &SqliteStore{db: db}, nil
}

func (s *SqliteStore) get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM session_state WHERE key = ?", key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return value, nil
}

func (s *SqliteStore) set(ctx context.Context, tx dbx.DBTX, key, value string) error {
	_, err := tx.ExecContext(ctx,
		"INSERT INTO session_state (key, value) VALUES (?, ?) ON CONFLICT (key) DO UPDATE SET value = excluded.value",
		key, value)
	return err
}

func (s *SqliteStore) Load(ctx context.Context) (*StoredSession, error) {
	userID, err := s.get(ctx, keyUserID)
	if err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, nil
	}

	access, err := s.get(ctx, keyAccessToken)
	if err != nil {
		return nil, err
	}
	refresh, err := s.get(ctx, keyRefreshToken)
	if err != nil {
		return nil, err
	}

	return &StoredSession{UserID: userID, AccessToken: access, RefreshToken: refresh}, nil
}

func (s *SqliteStore) Save(ctx context.Context, sess *StoredSession) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.set(ctx, tx, keyUserID, sess.UserID); err != nil {
			return err
		}
		if err := s.set(ctx, tx, keyAccessToken, sess.AccessToken); err != nil {
			return err
		}
		return s.set(ctx, tx, keyRefreshToken, sess.RefreshToken)
	})
}

func (s *SqliteStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM session_state")
	return err
}

func (s *SqliteStore) Close() error {
	return s.db.Close()
}
