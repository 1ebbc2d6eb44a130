package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mkaranov/brospace/internal/client/api"
	"github.com/mkaranov/brospace/internal/logging"
)

// fakeBackend is a deterministic in-memory Backend. Auth-change events are
// delivered synchronously so tests observe state transitions without races.
type fakeBackend struct {
	mu        sync.Mutex
	listeners []api.AuthChangeListener

	session  *api.Session
	profiles map[string]*api.Profile

	// GetProfile returns ErrProfileNotFound for the first failGetUntil[id]
	// calls even when the profile exists, to imitate provisioning lag.
	failGetUntil map[string]int
	getCalls     map[string]int
	getErr       error

	ensureUserID   string
	ensureUsername *string
	ensureCalls    int
	ensureErr      error

	updates   []*api.ProfilePatch
	updateErr error

	signInErr    error
	signUpResult *api.SignUpResult
	signUpErr    error
	signOutErr   error

	// signUpEmits delivers a SignedIn event before SignUp returns,
	// mirroring a backend that signs the confirmed account in itself.
	signUpEmits bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		profiles:     make(map[string]*api.Profile),
		failGetUntil: make(map[string]int),
		getCalls:     make(map[string]int),
	}
}

func (f *fakeBackend) emit(event api.AuthEvent, sess *api.Session) {
	f.mu.Lock()
	f.session = sess
	listeners := append([]api.AuthChangeListener(nil), f.listeners...)
	f.mu.Unlock()
	for _, l := range listeners {
		l(event, sess)
	}
}

func (f *fakeBackend) CurrentSession(_ context.Context) (*api.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.session, nil
}

func (f *fakeBackend) OnAuthChange(l api.AuthChangeListener) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listeners = append(f.listeners, l)
	return func() {}
}

func (f *fakeBackend) SignInWithPassword(_ context.Context, _, _ string) error {
	return f.signInErr
}

func (f *fakeBackend) SignUp(_ context.Context, _, _, _ string) (*api.SignUpResult, error) {
	if f.signUpErr != nil {
		return nil, f.signUpErr
	}
	if f.signUpEmits {
		f.emit(api.EventSignedIn, sessionFor(f.signUpResult.UserID))
	}
	return f.signUpResult, nil
}

func (f *fakeBackend) SignOut(_ context.Context) error {
	if f.signOutErr != nil {
		return f.signOutErr
	}
	f.emit(api.EventSignedOut, nil)
	return nil
}

func (f *fakeBackend) GetProfile(_ context.Context, id string) (*api.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls[id]++
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.getCalls[id] <= f.failGetUntil[id] {
		return nil, api.ErrProfileNotFound
	}
	p, ok := f.profiles[id]
	if !ok {
		return nil, api.ErrProfileNotFound
	}
	return p, nil
}

func (f *fakeBackend) EnsureProfile(_ context.Context, username *string) (*api.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensureCalls++
	f.ensureUsername = username
	if f.ensureErr != nil {
		return nil, f.ensureErr
	}
	id := f.ensureUserID
	if p, ok := f.profiles[id]; ok {
		return p, nil
	}
	p := &api.Profile{
		ID:            id,
		Username:      username,
		JoinedCircles: []string{},
		CreatedAt:     time.Now().UTC(),
		LastActive:    time.Now().UTC(),
	}
	f.profiles[id] = p
	return p, nil
}

func (f *fakeBackend) UpdateProfile(_ context.Context, id string, patch *api.ProfilePatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, patch)
	if f.updateErr != nil {
		return f.updateErr
	}
	if p, ok := f.profiles[id]; ok {
		if patch.MoodStreak != nil {
			p.MoodStreak = *patch.MoodStreak
		}
		if patch.LastActive != nil {
			p.LastActive = *patch.LastActive
		}
	}
	return nil
}

func (f *fakeBackend) CreateMoodEntry(_ context.Context, _ string, _ int, _ *string, _ bool) (*api.MoodEntry, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeBackend) ListMoodEntries(_ context.Context, _ int) ([]*api.MoodEntry, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeBackend) Close() error { return nil }

func sessionFor(userID string) *api.Session {
	return &api.Session{AccessToken: "at", RefreshToken: "rt", User: &api.User{ID: userID}}
}

func strptr(s string) *string { return &s }

func newTestManager(f *fakeBackend, opts ...Option) *Manager {
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	opts = append([]Option{WithGraceBackoff(time.Millisecond, 4)}, opts...)
	return NewManager(f, logger, opts...)
}

func TestManager_StartSignedOut(t *testing.T) {
	f := newFakeBackend()
	m := newTestManager(f)
	defer m.Close()

	require.True(t, m.Loading())

	require.NoError(t, m.Start(context.Background()))

	require.False(t, m.Loading())
	require.Nil(t, m.CurrentUser())
	require.Nil(t, m.Profile())
	require.Nil(t, m.Session())
}

func TestManager_StartResumesSession(t *testing.T) {
	f := newFakeBackend()
	f.session = sessionFor("u1")
	f.profiles["u1"] = &api.Profile{ID: "u1", Username: strptr("alex"), MoodStreak: 5}

	m := newTestManager(f)
	defer m.Close()

	require.NoError(t, m.Start(context.Background()))

	require.False(t, m.Loading())
	require.Equal(t, "u1", m.CurrentUser().ID)
	require.NotNil(t, m.Session())

	profile := m.Profile()
	require.NotNil(t, profile)
	require.Equal(t, 5, profile.MoodStreak)
}

func TestManager_StartCreatesMissingProfile(t *testing.T) {
	f := newFakeBackend()
	f.session = sessionFor("u1")
	f.ensureUserID = "u1"

	m := newTestManager(f)
	defer m.Close()

	require.NoError(t, m.Start(context.Background()))

	require.Equal(t, 1, f.ensureCalls)
	require.Nil(t, f.ensureUsername)

	profile := m.Profile()
	require.NotNil(t, profile)
	require.Equal(t, "u1", profile.ID)
	require.Equal(t, 0, profile.MoodStreak)
}

func TestManager_SignInUpdatesOnlyViaNotification(t *testing.T) {
	f := newFakeBackend()
	f.profiles["u1"] = &api.Profile{ID: "u1", Username: strptr("alex")}

	m := newTestManager(f)
	defer m.Close()
	require.NoError(t, m.Start(context.Background()))

	require.NoError(t, m.SignIn(context.Background(), "alex@example.com", "secret123"))

	// no notification delivered yet
	require.Nil(t, m.CurrentUser())
	require.Nil(t, m.Profile())

	f.emit(api.EventSignedIn, sessionFor("u1"))

	require.Equal(t, "u1", m.CurrentUser().ID)
	require.NotNil(t, m.Profile())
	require.Equal(t, "alex", *m.Profile().Username)
}

func TestManager_SignInError(t *testing.T) {
	f := newFakeBackend()
	f.signInErr = api.ErrAuthentication

	m := newTestManager(f)
	defer m.Close()
	require.NoError(t, m.Start(context.Background()))

	err := m.SignIn(context.Background(), "alex@example.com", "wrong")
	require.ErrorIs(t, err, api.ErrAuthentication)
	require.Nil(t, m.CurrentUser())
}

func TestManager_SignUpWaitsOutProvisioning(t *testing.T) {
	now := time.Now().UTC()
	f := newFakeBackend()
	f.signUpResult = &api.SignUpResult{UserID: "u-new", EmailConfirmedAt: &now}
	f.profiles["u-new"] = &api.Profile{ID: "u-new", Username: strptr("new")}
	f.failGetUntil["u-new"] = 2

	m := newTestManager(f)
	defer m.Close()
	require.NoError(t, m.Start(context.Background()))

	require.NoError(t, m.SignUp(context.Background(), "new@example.com", "secret123", ""))

	// profile resolved despite the first two not-found lookups, without creating
	require.Equal(t, 0, f.ensureCalls)
	require.Equal(t, 3, f.getCalls["u-new"])

	profile := m.Profile()
	require.NotNil(t, profile)
	require.Equal(t, "new", *profile.Username)
}

func TestManager_SignUpCreatesProfileWithDerivedUsername(t *testing.T) {
	now := time.Now().UTC()
	f := newFakeBackend()
	f.signUpResult = &api.SignUpResult{UserID: "u-new", EmailConfirmedAt: &now}
	f.ensureUserID = "u-new"
	f.failGetUntil["u-new"] = 100 // provisioning never lands

	m := newTestManager(f, WithGraceBackoff(time.Millisecond, 2))
	defer m.Close()
	require.NoError(t, m.Start(context.Background()))

	require.NoError(t, m.SignUp(context.Background(), "new@example.com", "secret123", ""))

	require.Equal(t, 1, f.ensureCalls)
	require.NotNil(t, f.ensureUsername)
	require.Equal(t, "new", *f.ensureUsername)

	profile := m.Profile()
	require.NotNil(t, profile)
	require.Equal(t, "new", *profile.Username)
}

func TestManager_SignUpNotificationCarriesUsername(t *testing.T) {
	now := time.Now().UTC()
	f := newFakeBackend()
	f.signUpResult = &api.SignUpResult{UserID: "u-new", EmailConfirmedAt: &now}
	f.signUpEmits = true
	f.ensureUserID = "u-new"

	m := newTestManager(f)
	defer m.Close()
	require.NoError(t, m.Start(context.Background()))

	require.NoError(t, m.SignUp(context.Background(), "new@example.com", "secret123", ""))

	// the notification-path resolution runs inside the sign-up call and
	// must already see the defaulted username when it creates the profile
	require.NotNil(t, f.ensureUsername)
	require.Equal(t, "new", *f.ensureUsername)

	profile := m.Profile()
	require.NotNil(t, profile)
	require.Equal(t, "new", *profile.Username)
}

func TestManager_SignUpUnconfirmedSkipsResolution(t *testing.T) {
	f := newFakeBackend()
	f.signUpResult = &api.SignUpResult{UserID: "u-new"}

	m := newTestManager(f)
	defer m.Close()
	require.NoError(t, m.Start(context.Background()))

	require.NoError(t, m.SignUp(context.Background(), "new@example.com", "secret123", "new"))

	require.Equal(t, 0, f.getCalls["u-new"])
	require.Equal(t, 0, f.ensureCalls)
	require.Nil(t, m.CurrentUser())
	require.Nil(t, m.Profile())
}

func TestManager_SignUpRejected(t *testing.T) {
	f := newFakeBackend()
	f.signUpErr = api.ErrRegistration

	m := newTestManager(f)
	defer m.Close()
	require.NoError(t, m.Start(context.Background()))

	err := m.SignUp(context.Background(), "dup@example.com", "secret123", "dup")
	require.ErrorIs(t, err, api.ErrRegistration)
}

func TestManager_SignOutClearsState(t *testing.T) {
	f := newFakeBackend()
	f.session = sessionFor("u1")
	f.profiles["u1"] = &api.Profile{ID: "u1"}

	m := newTestManager(f)
	defer m.Close()
	require.NoError(t, m.Start(context.Background()))
	require.NotNil(t, m.Profile())

	require.NoError(t, m.SignOut(context.Background()))

	require.Nil(t, m.CurrentUser())
	require.Nil(t, m.Profile())
	require.Nil(t, m.Session())
	require.False(t, m.Loading())
}

func TestManager_SignOutFailureKeepsState(t *testing.T) {
	f := newFakeBackend()
	f.session = sessionFor("u1")
	f.profiles["u1"] = &api.Profile{ID: "u1"}

	m := newTestManager(f)
	defer m.Close()
	require.NoError(t, m.Start(context.Background()))

	f.signOutErr = api.ErrSignOut
	err := m.SignOut(context.Background())
	require.ErrorIs(t, err, api.ErrSignOut)

	require.Equal(t, "u1", m.CurrentUser().ID)
	require.NotNil(t, m.Profile())
}

func TestManager_RecordCheckInSignedOut(t *testing.T) {
	f := newFakeBackend()
	m := newTestManager(f)
	defer m.Close()
	require.NoError(t, m.Start(context.Background()))

	m.RecordCheckIn(context.Background())

	require.Empty(t, f.updates)
}

func TestManager_RecordCheckInIncrementsStreak(t *testing.T) {
	f := newFakeBackend()
	f.session = sessionFor("u1")
	f.profiles["u1"] = &api.Profile{ID: "u1", MoodStreak: 3}

	m := newTestManager(f)
	defer m.Close()
	require.NoError(t, m.Start(context.Background()))

	m.RecordCheckIn(context.Background())
	m.RecordCheckIn(context.Background())

	require.Len(t, f.updates, 2)
	require.Equal(t, 4, *f.updates[0].MoodStreak)
	require.NotNil(t, f.updates[0].LastActive)
	require.Nil(t, f.updates[0].Username)
	require.Equal(t, 5, *f.updates[1].MoodStreak)

	require.Equal(t, 5, m.Profile().MoodStreak)
}

func TestManager_RecordCheckInFailureIsSwallowed(t *testing.T) {
	f := newFakeBackend()
	f.session = sessionFor("u1")
	f.profiles["u1"] = &api.Profile{ID: "u1", MoodStreak: 3}
	f.updateErr = errors.New("backend down")

	var hookErr error
	m := newTestManager(f, WithCheckInErrorHook(func(err error) { hookErr = err }))
	defer m.Close()
	require.NoError(t, m.Start(context.Background()))

	m.RecordCheckIn(context.Background())

	require.Error(t, hookErr)
	// the failed write must not advance the cached streak
	require.Equal(t, 3, m.Profile().MoodStreak)

	// a later successful check-in picks up from the unchanged value
	f.updateErr = nil
	m.RecordCheckIn(context.Background())
	require.Equal(t, 4, m.Profile().MoodStreak)
}

func TestManager_TokenRefreshKeepsProfile(t *testing.T) {
	f := newFakeBackend()
	f.session = sessionFor("u1")
	f.profiles["u1"] = &api.Profile{ID: "u1", MoodStreak: 2}

	m := newTestManager(f)
	defer m.Close()
	require.NoError(t, m.Start(context.Background()))
	require.Equal(t, 1, f.getCalls["u1"])

	refreshed := sessionFor("u1")
	refreshed.AccessToken = "at2"
	f.emit(api.EventTokenRefreshed, refreshed)

	require.Equal(t, "at2", m.Session().AccessToken)
	require.NotNil(t, m.Profile())
	// no re-resolution on refresh
	require.Equal(t, 1, f.getCalls["u1"])
}

func TestManager_StaleResolutionIsDropped(t *testing.T) {
	f := newFakeBackend()
	f.profiles["u-a"] = &api.Profile{ID: "u-a", Username: strptr("a")}
	f.profiles["u-b"] = &api.Profile{ID: "u-b", Username: strptr("b")}

	m := newTestManager(f)
	defer m.Close()
	require.NoError(t, m.Start(context.Background()))

	f.emit(api.EventSignedIn, sessionFor("u-b"))
	require.Equal(t, "b", *m.Profile().Username)

	// a resolution for the previous user finishing late must not clobber
	m.resolveProfile(context.Background(), "u-a", false)

	require.Equal(t, "u-b", m.CurrentUser().ID)
	require.Equal(t, "b", *m.Profile().Username)
}

func TestManager_UserSwitchReplacesProfile(t *testing.T) {
	f := newFakeBackend()
	f.session = sessionFor("u-a")
	f.profiles["u-a"] = &api.Profile{ID: "u-a", Username: strptr("a")}
	f.profiles["u-b"] = &api.Profile{ID: "u-b", Username: strptr("b")}

	m := newTestManager(f)
	defer m.Close()
	require.NoError(t, m.Start(context.Background()))
	require.Equal(t, "a", *m.Profile().Username)

	f.emit(api.EventSignedIn, sessionFor("u-b"))

	require.Equal(t, "u-b", m.CurrentUser().ID)
	require.Equal(t, "b", *m.Profile().Username)
}

func TestManager_AccessorsReturnCopies(t *testing.T) {
	f := newFakeBackend()
	f.session = sessionFor("u1")
	f.profiles["u1"] = &api.Profile{ID: "u1", MoodStreak: 1, JoinedCircles: []string{"c1"}}

	m := newTestManager(f)
	defer m.Close()
	require.NoError(t, m.Start(context.Background()))

	p := m.Profile()
	p.MoodStreak = 99
	p.JoinedCircles[0] = "mutated"

	require.Equal(t, 1, m.Profile().MoodStreak)
	require.Equal(t, "c1", m.Profile().JoinedCircles[0])
}
