// Package telegram handles the setup of the Telegram bot: construction,
// handler registration, command menus and the update delivery mode.
package telegram

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/splitleh/splitlehbot/internal/bot/handlers"
)

// NewTelegramBot creates a new Telegram bot instance using the go-telegram/bot library.
func NewTelegramBot(token string, logger *slog.Logger, opts ...bot.Option) (*bot.Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram bot token cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "telegram_bot")

	b, err := bot.New(token, opts...)
	if err != nil {
		log.Error("Failed to create Telegram bot instance", "error", err)
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	log.Info("Telegram bot instance created successfully", "token_prefix", tokenPrefix(token))
	return b, nil
}

func tokenPrefix(token string) string {
	if len(token) <= 8 {
		return "..."
	}
	return token[:8] + "..."
}

// Identity resolves the bot's own account.
func Identity(ctx context.Context, b *bot.Bot) (handlers.BotIdentity, error) {
	me, err := b.GetMe(ctx)
	if err != nil {
		return handlers.BotIdentity{}, fmt.Errorf("failed to get bot identity: %w", err)
	}
	return handlers.BotIdentity{ID: me.ID, Username: me.Username}, nil
}

// RegisterHandlers registers the handlers in order, each with its own
// middleware.
func RegisterHandlers(b *bot.Bot, logger *slog.Logger, registered []handlers.RegisteredHandler) error {
	if b == nil {
		return fmt.Errorf("bot instance cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "handler_registry")

	if len(registered) == 0 {
		log.Warn("No handlers provided for registration.")
		return nil
	}

	for _, h := range registered {
		if h.Handler == nil || h.Match == nil {
			log.Warn("Skipping registration for incomplete handler", "name", h.Name)
			continue
		}
		b.RegisterHandlerMatchFunc(h.Match, h.Handler, h.Middleware...)
		log.Debug("Registered handler", "name", h.Name, "middleware_count", len(h.Middleware))
	}

	log.Info("Registered Telegram handlers successfully", "count", len(registered))
	return nil
}

// SetCommands publishes the command menus for private chats and groups.
func SetCommands(ctx context.Context, b *bot.Bot, logger *slog.Logger) error {
	private, group := handlers.CommandMenu()

	scopes := []struct {
		name     string
		scope    models.BotCommandScope
		commands []models.BotCommand
	}{
		{name: "private", scope: &models.BotCommandScopeAllPrivateChats{}, commands: private},
		{name: "group", scope: &models.BotCommandScopeAllGroupChats{}, commands: group},
	}

	for _, s := range scopes {
		if _, err := b.SetMyCommands(ctx, &bot.SetMyCommandsParams{Commands: s.commands, Scope: s.scope}); err != nil {
			return fmt.Errorf("failed to set %s commands: %w", s.name, err)
		}
		logger.Debug("Set bot commands", "scope", s.name, "count", len(s.commands))
	}
	return nil
}

// WebhookConfig describes the public webhook endpoint. An empty URL means
// long polling.
type WebhookConfig struct {
	URL    string
	Secret string
}

// ConfigureDelivery points Telegram at the webhook, or removes any webhook
// so long polling can receive updates.
func ConfigureDelivery(ctx context.Context, b *bot.Bot, logger *slog.Logger, cfg WebhookConfig) error {
	if cfg.URL == "" {
		if _, err := b.DeleteWebhook(ctx, &bot.DeleteWebhookParams{}); err != nil {
			return fmt.Errorf("failed to delete webhook: %w", err)
		}
		logger.Info("Webhook removed, using long polling")
		return nil
	}

	_, err := b.SetWebhook(ctx, &bot.SetWebhookParams{
		URL:            cfg.URL,
		SecretToken:    cfg.Secret,
		AllowedUpdates: []string{"message"},
	})
	if err != nil {
		return fmt.Errorf("failed to set webhook: %w", err)
	}
	logger.Info("Webhook registered", "url", cfg.URL)
	return nil
}
