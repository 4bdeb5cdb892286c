package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/splitleh/splitlehbot/internal/backend"
	"github.com/splitleh/splitlehbot/internal/config"
	"github.com/splitleh/splitlehbot/internal/session"
)

// Backend is the subset of the backend client used by the workflows.
type Backend interface {
	CreateUser(ctx context.Context, payload backend.CreateUserPayload) backend.Outcome[backend.CreateUserResult]
	GetUser(ctx context.Context, payload backend.GetUserPayload) backend.Outcome[backend.GetUserResult]
	CreateChat(ctx context.Context, payload backend.CreateChatPayload) backend.Outcome[backend.CreateChatResult]
	AddMember(ctx context.Context, payload backend.AddMemberPayload) backend.Outcome[backend.AddMemberResult]
}

// Messenger is the part of the Telegram API the workflows call.
// *bot.Bot satisfies it.
type Messenger interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	SendChatAction(ctx context.Context, params *bot.SendChatActionParams) (bool, error)
	PinChatMessage(ctx context.Context, params *bot.PinChatMessageParams) (bool, error)
	GetChat(ctx context.Context, params *bot.GetChatParams) (*models.ChatFullInfo, error)
	GetFile(ctx context.Context, params *bot.GetFileParams) (*models.File, error)
	FileDownloadLink(f *models.File) string
}

var _ Messenger = (*bot.Bot)(nil)

// BotIdentity is the bot's own account, resolved once at startup.
type BotIdentity struct {
	ID       int64
	Username string
}

// HandlerDeps provides dependencies for Telegram update handlers.
type HandlerDeps struct {
	Logger   *slog.Logger
	Config   *config.Config
	Backend  Backend
	Sessions session.Store
	Bot      BotIdentity
	Now      func() time.Time
}

func (d HandlerDeps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}
