// Package bot implements the lifecycle management and component
// orchestration of the SplitLeh Telegram bot.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	tgbot "github.com/go-telegram/bot"
	"golang.org/x/sync/errgroup"

	"github.com/splitleh/splitlehbot/internal/session"
)

const closeTimeout = 15 * time.Second

// Runner is a long-running component stopped by cancelling ctx.
type Runner interface {
	Run(ctx context.Context) error
}

// BackendCloser is satisfied by the backend client.
type BackendCloser interface {
	Close(ctx context.Context) error
}

// Bot owns the running components and releases them on shutdown.
type Bot struct {
	logger    *slog.Logger
	tgBot     *tgbot.Bot
	webhook   bool
	scheduler *Scheduler
	server    Runner
	backend   BackendCloser
	sessions  session.Store
}

// Options lists the components the orchestrator runs. Webhook selects
// webhook delivery; otherwise updates are long-polled. Server may be nil.
type Options struct {
	TgBot     *tgbot.Bot
	Webhook   bool
	Scheduler *Scheduler
	Server    Runner
	Backend   BackendCloser
	Sessions  session.Store
}

func NewBot(logger *slog.Logger, opts Options) *Bot {
	return &Bot{
		logger:    logger.With("component", "bot_orchestrator"),
		tgBot:     opts.TgBot,
		webhook:   opts.Webhook,
		scheduler: opts.Scheduler,
		server:    opts.Server,
		backend:   opts.Backend,
		sessions:  opts.Sessions,
	}
}

// Run starts every component and blocks until ctx is cancelled or one of
// them fails. The backend client and session store are closed on the way
// out, after update processing has stopped.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("Starting bot orchestrator...", "webhook", b.webhook)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if b.webhook {
			b.logger.Info("Starting Telegram webhook worker...")
			b.tgBot.StartWebhook(gCtx)
		} else {
			b.logger.Info("Starting Telegram long polling...")
			b.tgBot.Start(gCtx)
		}
		b.logger.Info("Telegram update processing stopped.")

		if gCtx.Err() == nil {
			return fmt.Errorf("telegram listener stopped unexpectedly")
		}
		return nil
	})

	if b.scheduler != nil {
		g.Go(func() error {
			if err := b.scheduler.Start(); err != nil {
				return fmt.Errorf("failed to start scheduler: %w", err)
			}

			<-gCtx.Done()
			b.logger.Info("Shutdown signal received, stopping scheduler...")
			if err := b.scheduler.Stop(); err != nil {
				b.logger.Error("Error stopping scheduler", "error", err)
			}
			return nil
		})
	}

	if b.server != nil {
		g.Go(func() error {
			return b.server.Run(gCtx)
		})
	}

	b.logger.Info("Bot orchestrator running. Waiting for shutdown signal or error...")
	err := g.Wait()

	b.release()

	if err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Error("Bot orchestrator stopped due to error", "error", err)
		return err
	}

	b.logger.Info("Bot orchestrator stopped gracefully.")
	return nil
}

func (b *Bot) release() {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	if b.backend != nil {
		if err := b.backend.Close(ctx); err != nil {
			b.logger.Error("Failed to close backend client", "error", err)
		}
	}
	if b.sessions != nil {
		if err := b.sessions.Close(); err != nil {
			b.logger.Error("Failed to close session store", "error", err)
		}
	}
}
