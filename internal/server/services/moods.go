package services

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/mkaranov/brospace/internal/server/models"
	"github.com/mkaranov/brospace/internal/server/repositories/repomanager"
)

const defaultMoodListLimit = 10

// MoodService records and lists mood journal entries.
type MoodService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewMoodService(db *sql.DB, m repomanager.RepositoryManager) *MoodService {
	return &MoodService{db: db, repomanager: m}
}

// Create inserts a mood entry for userID and returns the stored row.
func (s *MoodService) Create(ctx context.Context, userID, mood string, moodLevel int, journalEntry *string, isAnonymous bool) (*models.MoodEntry, error) {
	repo := s.repomanager.MoodEntries(s.db)
	return repo.Create(ctx, &models.MoodEntry{
		ID:           uuid.NewString(),
		UserID:       userID,
		Mood:         mood,
		MoodLevel:    moodLevel,
		JournalEntry: journalEntry,
		IsAnonymous:  isAnonymous,
	})
}

// List returns the user's entries newest first. A non-positive limit falls
// back to the default page size.
func (s *MoodService) List(ctx context.Context, userID string, limit int) ([]*models.MoodEntry, error) {
	if limit <= 0 {
		limit = defaultMoodListLimit
	}
	repo := s.repomanager.MoodEntries(s.db)
	return repo.ListByUser(ctx, userID, limit)
}
