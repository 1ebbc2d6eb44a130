package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/mkaranov/brospace/internal/logging"
	"github.com/mkaranov/brospace/internal/server/models"
	"github.com/mkaranov/brospace/internal/server/repositories/repomanager"
)

// ProfileService exposes the profiles table the way the client contract
// expects: point lookup, create-if-absent with defaults, partial update.
type ProfileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewProfileService(db *sql.DB, m repomanager.RepositoryManager, l logging.Logger) *ProfileService {
	return &ProfileService{db: db, repomanager: m, logger: l.With("module", "profiles")}
}

// Get returns the profile row for id, or common.ErrNotFound.
func (s *ProfileService) Get(ctx context.Context, id string) (*models.Profile, error) {
	repo := s.repomanager.Profiles(s.db)
	return repo.Get(ctx, id)
}

// Ensure creates the default profile row for id unless one exists and
// returns the winning row. Concurrent calls for one id all observe the
// same single row.
func (s *ProfileService) Ensure(ctx context.Context, id string, username *string) (*models.Profile, error) {
	repo := s.repomanager.Profiles(s.db)
	return repo.EnsureExists(ctx, &models.Profile{
		ID:            id,
		Username:      username,
		MoodStreak:    0,
		JoinedCircles: []string{},
		LastActive:    time.Now(),
	})
}

// Update applies a partial update to the profile row.
func (s *ProfileService) Update(ctx context.Context, id string, patch *models.ProfilePatch) error {
	repo := s.repomanager.Profiles(s.db)
	return repo.Update(ctx, id, patch)
}
