// Package store persists the client's session material between runs, so a
// signed-in user stays signed in across restarts.
package store

import "context"

// StoredSession is the persisted auth state of the local client.
type StoredSession struct {
	UserID       string
	AccessToken  string
	RefreshToken string
}

// SessionStore loads and saves the persisted session. Load returns (nil, nil)
// when nothing is stored.
type SessionStore interface {
	Load(ctx context.Context) (*StoredSession, error)
	Save(ctx context.Context, s *StoredSession) error
	Clear(ctx context.Context) error
	Close() error
}
