// Package services holds client-side application services built on top of
// the session manager and the backend API.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/mkaranov/brospace/internal/client/api"
	"github.com/mkaranov/brospace/internal/client/session"
	"github.com/mkaranov/brospace/internal/logging"
)

var (
	// ErrNotSignedIn: the operation needs a signed-in user.
	ErrNotSignedIn = errors.New("not signed in")

	// ErrInvalidMood: the mood payload failed local validation.
	ErrInvalidMood = errors.New("invalid mood entry")
)

const (
	minMoodLevel = 1
	maxMoodLevel = 10
)

// MoodService records and lists mood check-ins. A successful check-in also
// bumps the profile's mood streak through the session manager.
type MoodService struct {
	backend api.Backend
	manager *session.Manager
	logger  logging.Logger
}

func NewMoodService(backend api.Backend, manager *session.Manager, logger logging.Logger) *MoodService {
	return &MoodService{backend: backend, manager: manager, logger: logger}
}

// CheckIn stores a mood journal entry and records the daily check-in on the
// profile. Streak-update failures do not fail the check-in.
func (s *MoodService) CheckIn(ctx context.Context, mood string, moodLevel int, journalEntry *string, isAnonymous bool) (*api.MoodEntry, error) {
	if s.manager.CurrentUser() == nil {
		return nil, ErrNotSignedIn
	}
	if mood == "" {
		return nil, fmt.Errorf("%w: mood is required", ErrInvalidMood)
	}
	if moodLevel < minMoodLevel || moodLevel > maxMoodLevel {
		return nil, fmt.Errorf("%w: mood level must be between %d and %d", ErrInvalidMood, minMoodLevel, maxMoodLevel)
	}

	entry, err := s.backend.CreateMoodEntry(ctx, mood, moodLevel, journalEntry, isAnonymous)
	if err != nil {
		return nil, err
	}

	s.manager.RecordCheckIn(ctx)
	return entry, nil
}

// History returns the user's most recent mood entries, newest first.
func (s *MoodService) History(ctx context.Context, limit int) ([]*api.MoodEntry, error) {
	if s.manager.CurrentUser() == nil {
		return nil, ErrNotSignedIn
	}
	return s.backend.ListMoodEntries(ctx, limit)
}
