// Package tasks implements the scheduled maintenance tasks of the bot.
// It includes task definitions, dependencies, and registration mechanisms.
package tasks

import (
	"context"
	"log/slog"

	"github.com/splitleh/splitlehbot/internal/config"
	"github.com/splitleh/splitlehbot/internal/session"
)

// Pinger is satisfied by the backend client.
type Pinger interface {
	Ping(ctx context.Context) error
}

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger   *slog.Logger
	Sessions session.Store
	Backend  Pinger
	Config   *config.Config
}
