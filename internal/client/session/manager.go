// Package session owns the client's identity state: the signed-in user, the
// resolved wellness profile, and the loading flag consumers read before
// trusting either. State is mutated only through backend auth-change
// notifications, never directly by the credential operations.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/mkaranov/brospace/internal/client/api"
	"github.com/mkaranov/brospace/internal/common"
	"github.com/mkaranov/brospace/internal/logging"
)

const (
	defaultGraceBase    = 500 * time.Millisecond
	defaultGraceRetries = 4
)

// Manager tracks the current user, their profile, and session validity.
//
// Invariants:
//   - user/profile/session change only inside the auth-change handler or
//     profile resolution; SignIn and SignUp return before state is updated.
//   - Loading is true from construction until the first session resolution
//     completes, success or failure.
//   - A resolved profile is installed only if it still belongs to the
//     current (or pending, mid-signup) user.
type Manager struct {
	backend api.Backend
	logger  logging.Logger

	graceBase      time.Duration
	graceRetries   uint64
	onCheckInError func(error)

	mu              sync.RWMutex
	user            *api.User
	profile         *api.Profile
	session         *api.Session
	loading         bool
	pendingUserID   string
	pendingUsername *string

	unsubscribe func()
}

// Option configures a Manager.
type Option func(*Manager)

// WithGraceBackoff tunes the retry schedule used to wait out profile
// provisioning right after sign-up.
func WithGraceBackoff(base time.Duration, retries uint64) Option {
	return func(m *Manager) {
		m.graceBase = base
		m.graceRetries = retries
	}
}

// WithCheckInErrorHook installs a callback invoked when a check-in's streak
// update fails. Check-in failures are never returned to the caller.
func WithCheckInErrorHook(hook func(error)) Option {
	return func(m *Manager) { m.onCheckInError = hook }
}

func NewManager(backend api.Backend, logger logging.Logger, opts ...Option) *Manager {
	m := &Manager{
		backend:      backend,
		logger:       logger,
		graceBase:    defaultGraceBase,
		graceRetries: defaultGraceRetries,
		loading:      true,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start subscribes to auth-change notifications and resolves the initial
// session. The subscription is registered first so no event is missed.
// Loading turns false once initial resolution finishes, even on error.
func (m *Manager) Start(ctx context.Context) error {
	m.unsubscribe = m.backend.OnAuthChange(m.handleAuthChange)

	sess, err := m.backend.CurrentSession(ctx)
	if err != nil {
		m.applySession(nil)
		return err
	}

	m.applySession(sess)

	if sess != nil && sess.User != nil {
		m.resolveProfile(ctx, sess.User.ID, false)
	}
	return nil
}

// Close unsubscribes from auth-change notifications.
func (m *Manager) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
}

func (m *Manager) handleAuthChange(event api.AuthEvent, sess *api.Session) {
	m.applySession(sess)

	if event == api.EventTokenRefreshed {
		return
	}
	if sess != nil && sess.User != nil {
		m.resolveProfile(context.Background(), sess.User.ID, false)
	}
}

// applySession replaces session and user state. It is the only writer of
// those fields. The profile survives only if the user identity is unchanged.
func (m *Manager) applySession(sess *api.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.session = copySession(sess)
	m.loading = false

	if sess == nil || sess.User == nil {
		m.user = nil
		m.profile = nil
		m.pendingUserID = ""
		m.pendingUsername = nil
		return
	}

	if m.user == nil || m.user.ID != sess.User.ID {
		if m.profile != nil && m.profile.ID != sess.User.ID {
			m.profile = nil
		}
		m.user = &api.User{ID: sess.User.ID}
	}
	if m.pendingUserID == sess.User.ID {
		m.pendingUserID = ""
	}
}

// SignIn delegates to the backend. On success the new state arrives through
// the auth-change notification; this call itself changes nothing.
func (m *Manager) SignIn(ctx context.Context, email, password string) error {
	return m.backend.SignInWithPassword(ctx, email, password)
}

// SignUp creates an account. An empty username defaults to the local part of
// the email address. When the account comes back immediately confirmed, the
// profile is resolved proactively with a grace backoff, since backend-side
// provisioning may still be in flight and no change notification is
// guaranteed to fire in this flow.
func (m *Manager) SignUp(ctx context.Context, email, password, username string) error {
	if username == "" {
		username = common.DefaultUsername(email)
	}

	// The backend may sign the confirmed account in and deliver the
	// notification before this call returns, so the username has to be
	// visible to resolution before the backend call starts.
	m.mu.Lock()
	m.pendingUsername = &username
	m.mu.Unlock()

	res, err := m.backend.SignUp(ctx, email, password, username)
	if err != nil {
		m.mu.Lock()
		m.pendingUsername = nil
		m.mu.Unlock()
		return err
	}

	if res.EmailConfirmedAt == nil {
		m.mu.Lock()
		m.pendingUsername = nil
		m.mu.Unlock()
		return nil
	}

	m.mu.Lock()
	m.pendingUserID = res.UserID
	m.mu.Unlock()

	m.resolveProfile(ctx, res.UserID, true)
	return nil
}

// SignOut revokes the session. The profile is cleared proactively on success
// so consumers never observe a signed-out user with a lingering profile;
// the rest of the state is cleared by the notification. On failure local
// state is left untouched and the error is returned.
func (m *Manager) SignOut(ctx context.Context) error {
	if err := m.backend.SignOut(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	m.profile = nil
	m.mu.Unlock()
	return nil
}

// RecordCheckIn bumps the mood streak and last-active timestamp. Without a
// signed-in user and resolved profile it is a logged no-op. The cached
// profile advances only after the backend write succeeds, without
// re-fetching; a failure leaves it unchanged and is logged and handed to
// the check-in error hook, never returned.
func (m *Manager) RecordCheckIn(ctx context.Context) {
	m.mu.Lock()
	if m.user == nil || m.profile == nil {
		m.mu.Unlock()
		m.logger.Debug(ctx, "check-in skipped: no signed-in profile")
		return
	}

	userID := m.user.ID
	streak := m.profile.MoodStreak + 1
	now := time.Now().UTC()
	m.mu.Unlock()

	patch := &api.ProfilePatch{MoodStreak: &streak, LastActive: &now}
	if err := m.backend.UpdateProfile(ctx, userID, patch); err != nil {
		m.logger.Warn(ctx, "check-in streak update failed", "user_id", userID, "error", err.Error())
		if m.onCheckInError != nil {
			m.onCheckInError(err)
		}
		return
	}

	m.mu.Lock()
	if m.profile != nil && m.profile.ID == userID {
		updated := copyProfile(m.profile)
		updated.MoodStreak = streak
		updated.LastActive = now
		m.profile = updated
	}
	m.mu.Unlock()
}

// resolveProfile fetches the user's profile, creating the default row when
// the lookup comes back empty. With grace enabled, not-found lookups are
// retried on an exponential backoff before falling through to creation.
func (m *Manager) resolveProfile(ctx context.Context, userID string, grace bool) {
	profile, err := m.lookupProfile(ctx, userID, grace)
	if err != nil {
		if !errors.Is(err, api.ErrProfileNotFound) {
			m.logger.Warn(ctx, "profile resolution failed", "user_id", userID, "error", err.Error())
			return
		}

		m.mu.RLock()
		username := m.pendingUsername
		m.mu.RUnlock()

		profile, err = m.backend.EnsureProfile(ctx, username)
		if err != nil {
			m.logger.Warn(ctx, "profile creation failed", "user_id", userID, "error", err.Error())
			return
		}
	}

	m.installProfile(userID, profile)
}

func (m *Manager) lookupProfile(ctx context.Context, userID string, grace bool) (*api.Profile, error) {
	if !grace {
		return m.backend.GetProfile(ctx, userID)
	}

	var profile *api.Profile
	b := retry.WithMaxRetries(m.graceRetries, retry.NewExponential(m.graceBase))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		p, err := m.backend.GetProfile(ctx, userID)
		if err != nil {
			if errors.Is(err, api.ErrProfileNotFound) {
				return retry.RetryableError(err)
			}
			return err
		}
		profile = p
		return nil
	})
	return profile, err
}

// installProfile publishes a resolved profile unless the identity moved on
// while the resolution was in flight.
func (m *Manager) installProfile(userID string, profile *api.Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.user != nil {
		if m.user.ID != userID {
			return
		}
	} else if m.pendingUserID != userID {
		return
	}

	m.profile = copyProfile(profile)
	m.pendingUsername = nil
}

// --- read accessors; all return copies ---

func (m *Manager) CurrentUser() *api.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

func (m *Manager) Profile() *api.Profile {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copyProfile(m.profile)
}

func (m *Manager) Session() *api.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copySession(m.session)
}

func (m *Manager) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

func copySession(s *api.Session) *api.Session {
	if s == nil {
		return nil
	}
	out := *s
	if s.User != nil {
		u := *s.User
		out.User = &u
	}
	return &out
}

func copyProfile(p *api.Profile) *api.Profile {
	if p == nil {
		return nil
	}
	out := *p
	if p.Username != nil {
		v := *p.Username
		out.Username = &v
	}
	if p.Age != nil {
		v := *p.Age
		out.Age = &v
	}
	if p.JoinedCircles != nil {
		out.JoinedCircles = append([]string(nil), p.JoinedCircles...)
	}
	return &out
}
