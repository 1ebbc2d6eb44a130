package profiles

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mkaranov/brospace/internal/common"
	"github.com/mkaranov/brospace/internal/dbx"
	"github.com/mkaranov/brospace/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX.
// joined_circles is stored as JSONB and (un)marshalled here.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Profile, error) {
	query := `
		SELECT id, username, age, mood_streak, joined_circles, created_at, last_active
		FROM user_profiles
		WHERE id = $1
	`
	return scanProfile(r.db.QueryRowContext(ctx, query, id))
}

// EnsureExists inserts the row with ON CONFLICT DO NOTHING, then re-reads.
// When two callers race on a fresh ID exactly one insert wins and both
// observe the same row afterwards.
func (r *PostgresRepository) EnsureExists(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	circles, err := marshalCircles(profile.JoinedCircles)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO user_profiles (id, username, age, mood_streak, joined_circles, last_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query,
		profile.ID, profile.Username, profile.Age, profile.MoodStreak, circles, profile.LastActive); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return r.Get(ctx, profile.ID)
}

// Update applies the non-nil fields of patch to the profile row.
func (r *PostgresRepository) Update(ctx context.Context, id string, patch *models.ProfilePatch) error {
	set := make([]string, 0, 5)
	args := make([]any, 0, 6)

	add := func(column string, value any) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Username != nil {
		add("username", *patch.Username)
	}
	if patch.Age != nil {
		add("age", *patch.Age)
	}
	if patch.MoodStreak != nil {
		add("mood_streak", *patch.MoodStreak)
	}
	if patch.JoinedCircles != nil {
		circles, err := marshalCircles(patch.JoinedCircles)
		if err != nil {
			return err
		}
		add("joined_circles", circles)
	}
	if patch.LastActive != nil {
		add("last_active", *patch.LastActive)
	}

	if len(set) == 0 {
		return nil
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE user_profiles SET %s WHERE id = $%d`,
		joinSet(set), len(args))

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func scanProfile(row *sql.Row) (*models.Profile, error) {
	profile := &models.Profile{}
	var circles []byte

	err := row.Scan(&profile.ID, &profile.Username, &profile.Age, &profile.MoodStreak,
		&circles, &profile.CreatedAt, &profile.LastActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if err := json.Unmarshal(circles, &profile.JoinedCircles); err != nil {
		return nil, fmt.Errorf("joined_circles decode error: %w", err)
	}
	return profile, nil
}

func marshalCircles(circles []string) ([]byte, error) {
	if circles == nil {
		circles = []string{}
	}
	b, err := json.Marshal(circles)
	if err != nil {
		return nil, fmt.Errorf("joined_circles encode error: %w", err)
	}
	return b, nil
}

func joinSet(set []string) string {
	out := set[0]
	for _, s := range set[1:] {
		out += ", " + s
	}
	return out
}
