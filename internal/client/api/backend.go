// Package api defines the client's contract with the Brospace backend —
// credential auth, auth-change notifications, the profiles record surface,
// and mood entries — plus the HTTP implementation of that contract.
package api

import (
	"context"
	"time"
)

// User is the opaque identity handle of a signed-in account.
type User struct {
	ID string
}

// Session mirrors the backend-issued authentication state for the current
// connection. The token material is carried, not inspected.
type Session struct {
	AccessToken  string
	RefreshToken string
	User         *User
}

// Profile is the durable per-user wellness record.
type Profile struct {
	ID            string
	Username      *string
	Age           *int
	MoodStreak    int
	JoinedCircles []string
	CreatedAt     time.Time
	LastActive    time.Time
}

// ProfilePatch carries the fields of a partial profile update; nil members
// are left untouched by the backend.
type ProfilePatch struct {
	Username      *string
	Age           *int
	MoodStreak    *int
	JoinedCircles []string
	LastActive    *time.Time
}

// SignUpResult reports the outcome of account creation. EmailConfirmedAt is
// non-nil when the account is immediately active (no verification pending).
type SignUpResult struct {
	UserID           string
	EmailConfirmedAt *time.Time
}

// MoodEntry is a single mood check-in journal record.
type MoodEntry struct {
	ID           string
	UserID       string
	Mood         string
	MoodLevel    int
	JournalEntry *string
	IsAnonymous  bool
	CreatedAt    time.Time
}

// AuthEvent names the kind of auth-state change carried by a notification.
type AuthEvent string

const (
	EventSignedIn       AuthEvent = "SIGNED_IN"
	EventSignedOut      AuthEvent = "SIGNED_OUT"
	EventTokenRefreshed AuthEvent = "TOKEN_REFRESHED"
)

// AuthChangeListener receives auth-change notifications. session is nil for
// EventSignedOut. Listeners are invoked from a single dispatch goroutine in
// emission order and must not block for long.
type AuthChangeListener func(event AuthEvent, session *Session)

// Backend is the Auth & Data Backend contract.
//
// Contract:
//   - CurrentSession: return the resumable session, or nil when signed out.
//   - OnAuthChange: register a persistent listener; returns an unsubscribe.
//   - SignInWithPassword / SignUp / SignOut: credential operations; state
//     updates reach consumers through OnAuthChange, not return values.
//   - GetProfile: point lookup; absence is ErrProfileNotFound, not a
//     generic failure.
//   - EnsureProfile: create-if-absent with defaults; idempotent, safe to
//     call concurrently for the same ID.
//   - UpdateProfile: partial update keyed by profile ID.
//   - CreateMoodEntry / ListMoodEntries: mood journal records.
//
// All methods must honor context cancellation/timeouts.
type Backend interface {
	CurrentSession(ctx context.Context) (*Session, error)
	OnAuthChange(l AuthChangeListener) (unsubscribe func())

	SignInWithPassword(ctx context.Context, email, password string) error
	SignUp(ctx context.Context, email, password, username string) (*SignUpResult, error)
	SignOut(ctx context.Context) error

	GetProfile(ctx context.Context, id string) (*Profile, error)
	EnsureProfile(ctx context.Context, username *string) (*Profile, error)
	UpdateProfile(ctx context.Context, id string, patch *ProfilePatch) error

	CreateMoodEntry(ctx context.Context, mood string, moodLevel int, journalEntry *string, isAnonymous bool) (*MoodEntry, error)
	ListMoodEntries(ctx context.Context, limit int) ([]*MoodEntry, error)

	Close() error
}
