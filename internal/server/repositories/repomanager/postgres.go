package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/mkaranov/brospace/internal/dbx"
	"github.com/mkaranov/brospace/internal/server/migrations"
	"github.com/mkaranov/brospace/internal/server/repositories/moodentries"
	"github.com/mkaranov/brospace/internal/server/repositories/profiles"
	"github.com/mkaranov/brospace/internal/server/repositories/refreshtokens"
	"github.com/mkaranov/brospace/internal/server/repositories/users"
)

// PostgresManager is the production RepositoryManager.
type PostgresManager struct{}

func NewPostgresManager() *PostgresManager {
	return &PostgresManager{}
}

func (m *PostgresManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

func (m *PostgresManager) Profiles(db dbx.DBTX) profiles.Repository {
	return profiles.NewPostgresRepository(db)
}

func (m *PostgresManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	return refreshtokens.NewPostgresRepository(db)
}

func (m *PostgresManager) MoodEntries(db dbx.DBTX) moodentries.Repository {
	return moodentries.NewPostgresRepository(db)
}

// OpenDatabase opens the Postgres pool via the pgx stdlib driver and applies
// the embedded goose migrations.
func OpenDatabase(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("goose dialect error: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return db, nil
}
