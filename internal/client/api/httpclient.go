package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/mkaranov/brospace/internal/client/store"
	"github.com/mkaranov/brospace/internal/common"
	"github.com/mkaranov/brospace/internal/logging"
)

// Error code the retry logic branches on; other codes surface as display text.
const codeTokenExpired = "token_expired"

// HTTPClient implements Backend over the server's JSON API. It owns the
// token material: requests are signed with the access token, and a request
// rejected with an expired-token code is retried once after a refresh.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	store      store.SessionStore
	logger     logging.Logger
	dispatcher *dispatcher

	mu      sync.Mutex
	session *Session
}

var _ Backend = &HTTPClient{}

func NewHTTPClient(baseURL string, timeout time.Duration, st store.SessionStore, logger logging.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		store:      st,
		logger:     logger,
		dispatcher: newDispatcher(),
	}
}

type errorPayload struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type tokenPayload struct {
	UserID       string `json:"user_id"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type profilePayload struct {
	ID            string    `json:"id"`
	Username      *string   `json:"username"`
	Age           *int      `json:"age"`
	MoodStreak    int       `json:"mood_streak"`
	JoinedCircles []string  `json:"joined_circles"`
	CreatedAt     time.Time `json:"created_at"`
	LastActive    time.Time `json:"last_active"`
}

type moodEntryPayload struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Mood         string    `json:"mood"`
	MoodLevel    int       `json:"mood_level"`
	JournalEntry *string   `json:"journal_entry"`
	IsAnonymous  bool      `json:"is_anonymous"`
	CreatedAt    time.Time `json:"created_at"`
}

func toProfile(p *profilePayload) *Profile {
	circles := p.JoinedCircles
	if circles == nil {
		circles = []string{}
	}
	return &Profile{
		ID:            p.ID,
		Username:      p.Username,
		Age:           p.Age,
		MoodStreak:    p.MoodStreak,
		JoinedCircles: circles,
		CreatedAt:     p.CreatedAt,
		LastActive:    p.LastActive,
	}
}

func toMoodEntry(p *moodEntryPayload) *MoodEntry {
	return &MoodEntry{
		ID:           p.ID,
		UserID:       p.UserID,
		Mood:         p.Mood,
		MoodLevel:    p.MoodLevel,
		JournalEntry: p.JournalEntry,
		IsAnonymous:  p.IsAnonymous,
		CreatedAt:    p.CreatedAt,
	}
}

// send performs one request. Transport-level failures map to ErrUnavailable;
// HTTP status handling is the caller's business.
func (c *HTTPClient) send(ctx context.Context, method, path, accessToken string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return resp, nil
}

func decodeErrorPayload(resp *http.Response) errorPayload {
	var p errorPayload
	_ = json.NewDecoder(resp.Body).Decode(&p)
	if p.Error == "" {
		p.Error = resp.Status
	}
	return p
}

// authedDo signs the request with the current access token and retries once
// after refreshing the session when the server reports an expired token.
func (c *HTTPClient) authedDo(ctx context.Context, method, path string, body any) (*http.Response, error) {
	c.mu.Lock()
	sess := c.session
	c.mu.Unlock()
	if sess == nil {
		return nil, ErrUnauthorized
	}

	resp, err := c.send(ctx, method, path, sess.AccessToken, body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	p := decodeErrorPayload(resp)
	_ = resp.Body.Close()
	if p.Code != codeTokenExpired {
		return nil, fmt.Errorf("%w: %s", ErrUnauthorized, p.Error)
	}

	if err := c.refresh(ctx); err != nil {
		return nil, err
	}

	c.mu.Lock()
	sess = c.session
	c.mu.Unlock()
	if sess == nil {
		return nil, ErrUnauthorized
	}
	return c.send(ctx, method, path, sess.AccessToken, body)
}

// refresh rotates the token pair using the stored refresh token.
func (c *HTTPClient) refresh(ctx context.Context) error {
	c.mu.Lock()
	sess := c.session
	c.mu.Unlock()
	if sess == nil || sess.RefreshToken == "" {
		return ErrUnauthorized
	}

	resp, err := c.send(ctx, http.MethodPost, "/api/auth/refresh", "",
		map[string]string{"refresh_token": sess.RefreshToken})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		p := decodeErrorPayload(resp)
		return fmt.Errorf("%w: %s", ErrUnauthorized, p.Error)
	}

	var pair tokenPayload
	if err := json.NewDecoder(resp.Body).Decode(&pair); err != nil {
		return err
	}

	updated := c.setSession(sess.User.ID, pair.AccessToken, pair.RefreshToken)
	c.persist(ctx, updated)
	c.dispatcher.emit(EventTokenRefreshed, copySession(updated))
	return nil
}

func (c *HTTPClient) setSession(userID, accessToken, refreshToken string) *Session {
	s := &Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         &User{ID: userID},
	}
	c.mu.Lock()
	c.session = s
	c.mu.Unlock()
	return s
}

func (c *HTTPClient) clearSession(ctx context.Context) {
	c.mu.Lock()
	c.session = nil
	c.mu.Unlock()
	if err := c.store.Clear(ctx); err != nil {
		c.logger.Warn(ctx, "clearing session store failed", "error", err.Error())
	}
}

func (c *HTTPClient) persist(ctx context.Context, s *Session) {
	err := c.store.Save(ctx, &store.StoredSession{
		UserID:       s.User.ID,
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
	})
	if err != nil {
		c.logger.Warn(ctx, "persisting session failed", "error", err.Error())
	}
}

func copySession(s *Session) *Session {
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

// CurrentSession resumes the persisted session. A stored token pair is
// validated against the server (refreshing if needed); tokens the server no
// longer accepts are discarded and (nil, nil) is returned.
func (c *HTTPClient) CurrentSession(ctx context.Context) (*Session, error) {
	c.mu.Lock()
	if c.session != nil {
		s := copySession(c.session)
		c.mu.Unlock()
		return s, nil
	}
	c.mu.Unlock()

	stored, err := c.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, nil
	}

	c.setSession(stored.UserID, stored.AccessToken, stored.RefreshToken)

	resp, err := c.authedDo(ctx, http.MethodGet, "/api/auth/session", nil)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			c.logger.Info(ctx, "Stored session no longer valid, discarding")
			c.clearSession(ctx)
			return nil, nil
		}
		c.mu.Lock()
		c.session = nil
		c.mu.Unlock()
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.clearSession(ctx)
		return nil, nil
	}

	c.mu.Lock()
	s := copySession(c.session)
	c.mu.Unlock()
	return s, nil
}

func (c *HTTPClient) OnAuthChange(l AuthChangeListener) (unsubscribe func()) {
	return c.dispatcher.subscribe(l)
}

func (c *HTTPClient) SignInWithPassword(ctx context.Context, email, password string) error {
	resp, err := c.send(ctx, http.MethodPost, "/api/auth/login", "",
		map[string]string{"email": email, "password": password})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		p := decodeErrorPayload(resp)
		if resp.StatusCode == http.StatusUnauthorized {
			return fmt.Errorf("%w: %s", ErrAuthentication, p.Error)
		}
		return fmt.Errorf("sign in: %s", p.Error)
	}

	var pair tokenPayload
	if err := json.NewDecoder(resp.Body).Decode(&pair); err != nil {
		return err
	}

	s := c.setSession(pair.UserID, pair.AccessToken, pair.RefreshToken)
	c.persist(ctx, s)
	c.dispatcher.emit(EventSignedIn, copySession(s))
	return nil
}

// SignUp registers the account and, when the account comes back immediately
// confirmed, signs it in so the caller holds a usable session.
func (c *HTTPClient) SignUp(ctx context.Context, email, password, username string) (*SignUpResult, error) {
	resp, err := c.send(ctx, http.MethodPost, "/api/auth/register", "",
		map[string]string{"email": email, "password": password, "username": username})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		p := decodeErrorPayload(resp)
		return nil, fmt.Errorf("%w: %s", ErrRegistration, p.Error)
	}

	var reg struct {
		UserID           string     `json:"user_id"`
		EmailConfirmedAt *time.Time `json:"email_confirmed_at"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&reg); err != nil {
		return nil, err
	}

	if reg.EmailConfirmedAt != nil {
		if err := c.SignInWithPassword(ctx, email, password); err != nil {
			return nil, err
		}
	}

	return &SignUpResult{UserID: reg.UserID, EmailConfirmedAt: reg.EmailConfirmedAt}, nil
}

// SignOut revokes the refresh token server-side. Local state is cleared only
// on success; a failure leaves the session untouched and is reported.
func (c *HTTPClient) SignOut(ctx context.Context) error {
	c.mu.Lock()
	sess := c.session
	c.mu.Unlock()
	if sess == nil {
		return nil
	}

	resp, err := c.authedDo(ctx, http.MethodPost, "/api/auth/logout",
		map[string]string{"refresh_token": sess.RefreshToken})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSignOut, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		p := decodeErrorPayload(resp)
		return fmt.Errorf("%w: %s", ErrSignOut, p.Error)
	}

	c.clearSession(ctx)
	c.dispatcher.emit(EventSignedOut, nil)
	return nil
}

func (c *HTTPClient) GetProfile(ctx context.Context, id string) (*Profile, error) {
	resp, err := c.authedDo(ctx, http.MethodGet, "/api/profiles/"+id, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrProfileNotFound
	default:
		p := decodeErrorPayload(resp)
		return nil, fmt.Errorf("get profile: %s", p.Error)
	}

	var p profilePayload
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, err
	}
	return toProfile(&p), nil
}

func (c *HTTPClient) EnsureProfile(ctx context.Context, username *string) (*Profile, error) {
	resp, err := c.authedDo(ctx, http.MethodPost, "/api/profiles",
		map[string]*string{"username": username})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		p := decodeErrorPayload(resp)
		return nil, fmt.Errorf("ensure profile: %s", p.Error)
	}

	var p profilePayload
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, err
	}
	return toProfile(&p), nil
}

func (c *HTTPClient) UpdateProfile(ctx context.Context, id string, patch *ProfilePatch) error {
	body := map[string]any{}
	if patch.Username != nil {
		body["username"] = *patch.Username
	}
	if patch.Age != nil {
		body["age"] = *patch.Age
	}
	if patch.MoodStreak != nil {
		body["mood_streak"] = *patch.MoodStreak
	}
	if patch.JoinedCircles != nil {
		body["joined_circles"] = patch.JoinedCircles
	}
	if patch.LastActive != nil {
		body["last_active"] = patch.LastActive.Format(time.RFC3339Nano)
	}

	resp, err := c.authedDo(ctx, http.MethodPatch, "/api/profiles/"+id, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return ErrProfileNotFound
	default:
		p := decodeErrorPayload(resp)
		return fmt.Errorf("update profile: %s", p.Error)
	}
}

func (c *HTTPClient) CreateMoodEntry(ctx context.Context, mood string, moodLevel int, journalEntry *string, isAnonymous bool) (*MoodEntry, error) {
	body := map[string]any{
		"mood":         mood,
		"mood_level":   moodLevel,
		"is_anonymous": isAnonymous,
	}
	if journalEntry != nil {
		body["journal_entry"] = *journalEntry
	}

	resp, err := c.authedDo(ctx, http.MethodPost, "/api/moods", body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		p := decodeErrorPayload(resp)
		return nil, fmt.Errorf("create mood entry: %s", p.Error)
	}

	var p moodEntryPayload
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, err
	}
	return toMoodEntry(&p), nil
}

func (c *HTTPClient) ListMoodEntries(ctx context.Context, limit int) ([]*MoodEntry, error) {
	path := "/api/moods"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}

	resp, err := c.authedDo(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		p := decodeErrorPayload(resp)
		return nil, fmt.Errorf("list mood entries: %s", p.Error)
	}

	var list struct {
		Entries []moodEntryPayload `json:"entries"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, err
	}

	out := make([]*MoodEntry, 0, len(list.Entries))
	for i := range list.Entries {
		out = append(out, toMoodEntry(&list.Entries[i]))
	}
	return out, nil
}

func (c *HTTPClient) Close() error {
	c.dispatcher.close()
	return c.store.Close()
}
