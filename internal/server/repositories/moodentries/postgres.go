package moodentries

import (
	"context"
	"fmt"

	"github.com/mkaranov/brospace/internal/dbx"
	"github.com/mkaranov/brospace/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, entry *models.MoodEntry) (*models.MoodEntry, error) {
	query := `
		INSERT INTO mood_entries (id, user_id, mood, mood_level, journal_entry, is_anonymous)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		entry.ID, entry.UserID, entry.Mood, entry.MoodLevel, entry.JournalEntry, entry.IsAnonymous).Scan(&entry.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return entry, nil
}

// ListByUser returns the user's entries newest first, at most limit rows.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*models.MoodEntry, error) {
	query := `
		SELECT id, user_id, mood, mood_level, journal_entry, is_anonymous, created_at
		FROM mood_entries
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var entries []*models.MoodEntry
	for rows.Next() {
		entry := &models.MoodEntry{}
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.Mood, &entry.MoodLevel,
			&entry.JournalEntry, &entry.IsAnonymous, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return entries, nil
}
