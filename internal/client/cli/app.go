// Package cli implements the interactive Brospace client: a small REPL over
// the session manager and mood journal service.
package cli

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/mkaranov/brospace/internal/client/api"
	"github.com/mkaranov/brospace/internal/client/config"
	"github.com/mkaranov/brospace/internal/client/services"
	"github.com/mkaranov/brospace/internal/client/session"
	"github.com/mkaranov/brospace/internal/client/store"
	"github.com/mkaranov/brospace/internal/logging"
)

type App struct {
	config  *config.Config
	backend api.Backend
	manager *session.Manager
	moods   *services.MoodService
	logger  logging.Logger
	reader  *bufio.Reader
	out     io.Writer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	st, err := store.NewSqliteStore(ctx, c.DatabasePath)
	if err != nil {
		return nil, err
	}

	backend := api.NewHTTPClient(c.ServerEndpointURL, c.RequestTimeout, st, logger)

	app := &App{
		config:  c,
		backend: backend,
		logger:  logger,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}

	app.manager = session.NewManager(backend, logger,
		session.WithCheckInErrorHook(func(err error) {
			app.printf("Note: your streak could not be updated right now (%v)\n", err)
		}))
	app.moods = services.NewMoodService(backend, app.manager, logger)

	return app, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.Close()

	if err := a.manager.Start(ctx); err != nil {
		a.logger.Warn(ctx, "session resume failed", "error", err.Error())
	}

	a.Root(ctx)
}

func (a *App) Close() {
	a.manager.Close()
	if err := a.backend.Close(); err != nil {
		a.logger.Warn(context.Background(), "closing backend failed", "error", err.Error())
	}
}

func (a *App) isSignedIn() bool {
	return a.manager.CurrentUser() != nil
}
