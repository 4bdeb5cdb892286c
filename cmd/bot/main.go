// Package main contains the entrypoint for the SplitLeh Telegram bot.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/splitleh/splitlehbot/internal/backend"
	"github.com/splitleh/splitlehbot/internal/bot"
	"github.com/splitleh/splitlehbot/internal/bot/handlers"
	"github.com/splitleh/splitlehbot/internal/bot/tasks"
	"github.com/splitleh/splitlehbot/internal/config"
	"github.com/splitleh/splitlehbot/internal/logger"
	"github.com/splitleh/splitlehbot/internal/metrics"
	"github.com/splitleh/splitlehbot/internal/server"
	"github.com/splitleh/splitlehbot/internal/session"
	"github.com/splitleh/splitlehbot/internal/telegram"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run wires the components, runs them until ctx is cancelled and returns
// the process exit code.
func run(ctx context.Context) int {
	envFile := flag.String("env-file", ".env", "Path to an optional .env file")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		slog.Error("Failed to load configuration", "env_file", *envFile, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON, "env", cfg.Env)
	metrics.MustRegister()

	backendClient, err := backend.New(backend.Config{
		BaseURL: cfg.Backend.BaseURL,
		APIKey:  cfg.Backend.APIKey,
		Timeout: cfg.Backend.Timeout,
	}, log)
	if err != nil {
		log.Error("Failed to create backend client", "error", err)
		return 1
	}

	sessions, err := openSessions(ctx, cfg.Session, log)
	if err != nil {
		log.Error("Failed to open session store", "error", err)
		return 1
	}
	// fail releases the session store on setup errors; after Run starts the
	// orchestrator owns it.
	fail := func(msg string, err error) int {
		log.Error(msg, "error", err)
		_ = sessions.Close()
		return 1
	}

	botOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Middleware(log)),
		tgbot.WithErrorsHandler(logger.ErrorsHandler(log)),
		tgbot.WithCheckInitTimeout(cfg.Telegram.RequestTimeout),
		tgbot.WithDefaultHandler(func(ctx context.Context, _ *tgbot.Bot, update *models.Update) {
			log.DebugContext(ctx, "Ignoring unhandled update", "update_id", update.ID)
		}),
	}
	if cfg.Logger.Level == "debug" {
		botOpts = append(botOpts, tgbot.WithDebug(), tgbot.WithDebugHandler(logger.DebugHandler(log)))
	}
	if cfg.UseWebhook() {
		botOpts = append(botOpts, tgbot.WithWebhookSecretToken(cfg.Telegram.WebhookSecret))
	}
	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, botOpts...)
	if err != nil {
		return fail("Failed to create Telegram bot", err)
	}

	setupCtx, cancel := context.WithTimeout(ctx, cfg.Telegram.RequestTimeout)
	defer cancel()

	identity, err := telegram.Identity(setupCtx, tg)
	if err != nil {
		return fail("Failed to get bot info", err)
	}
	log.Info("Retrieved bot info", "bot_id", identity.ID, "bot_username", identity.Username)

	hDeps := handlers.HandlerDeps{
		Logger:   log,
		Config:   cfg,
		Backend:  backendClient,
		Sessions: sessions,
		Bot:      identity,
	}
	if err := telegram.RegisterHandlers(tg, log, handlers.RegisterAllHandlers(hDeps)); err != nil {
		return fail("Failed to register Telegram handlers", err)
	}
	if err := telegram.SetCommands(setupCtx, tg, log); err != nil {
		log.Warn("Failed to publish command menus", "error", err)
	}

	webhook := telegram.WebhookConfig{}
	if cfg.UseWebhook() {
		webhook = telegram.WebhookConfig{URL: cfg.Telegram.WebhookURL, Secret: cfg.Telegram.WebhookSecret}
	}
	if err := telegram.ConfigureDelivery(setupCtx, tg, log, webhook); err != nil {
		return fail("Failed to configure update delivery", err)
	}

	tDeps := tasks.TaskDeps{
		Logger:   log,
		Sessions: sessions,
		Backend:  backendClient,
		Config:   cfg,
	}
	sched, err := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tDeps))
	if err != nil {
		return fail("Failed to create scheduler", err)
	}

	srvOpts := server.Options{
		Port:    cfg.Telegram.Port,
		Metrics: metrics.Handler(),
		Backend: backendClient,
	}
	if cfg.UseWebhook() {
		srvOpts.WebhookPath = cfg.WebhookPath()
		srvOpts.Webhook = tg.WebhookHandler()
	}

	app := bot.NewBot(log, bot.Options{
		TgBot:     tg,
		Webhook:   cfg.UseWebhook(),
		Scheduler: sched,
		Server:    server.New(srvOpts, log),
		Backend:   backendClient,
		Sessions:  sessions,
	})

	log.Info("Starting bot...")
	runErr := app.Run(ctx)

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	return 0
}

// openSessions picks Redis when a URL is configured, process memory otherwise.
func openSessions(ctx context.Context, cfg config.SessionConfig, log *slog.Logger) (session.Store, error) {
	if cfg.RedisURL == "" {
		log.Info("Using in-memory session store", "ttl", cfg.TTL)
		return session.NewMemoryStore(cfg.TTL), nil
	}

	client, err := session.OpenRedis(ctx, cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	log.Info("Using Redis session store", "ttl", cfg.TTL)
	return session.NewRedisStore(client, cfg.TTL), nil
}
