// Package moodentries provides the mood-journal repository.
package moodentries

import (
	"context"

	"github.com/mkaranov/brospace/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, entry *models.MoodEntry) (*models.MoodEntry, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]*models.MoodEntry, error)
}
