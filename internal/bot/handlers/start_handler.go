package handlers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/splitleh/splitlehbot/internal/backend"
	"github.com/splitleh/splitlehbot/internal/metrics"
)

const workflowRegistration = "registration"

// NewStartHandler returns a handler for the bare /start command.
func NewStartHandler(deps HandlerDeps) bot.HandlerFunc {
	return startHandler{deps}.Handle
}

// startHandler registers private users with the backend and greets groups.
type startHandler struct {
	deps HandlerDeps
}

func (h startHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.handle(ctx, b, update)
}

func (h startHandler) handle(ctx context.Context, m Messenger, update *models.Update) {
	log := h.deps.Logger.With("handler", "start")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Start handler received update with nil message or sender", "update_id", update.ID)
		return
	}
	msg := update.Message

	log.InfoContext(ctx, "Handling /start command", "chat_id", msg.Chat.ID, "user_id", msg.From.ID, "chat_type", msg.Chat.Type)
	sendTyping(ctx, m, log, msg.Chat.ID)

	if msg.Chat.Type == models.ChatTypePrivate {
		if !h.register(ctx, m, log, msg) {
			return
		}
	} else {
		h.greetGroup(ctx, m, log, msg.Chat.ID)
	}

	pinExpenses(ctx, h.deps, m, log, msg.Chat)
}

// register runs the lookup-then-create flow and reports whether the user
// ended up registered and welcomed.
func (h startHandler) register(ctx context.Context, m Messenger, log *slog.Logger, msg *models.Message) bool {
	msgs := h.deps.Config.Messages
	from := msg.From
	chatID := msg.Chat.ID
	addButton := urlButton(msgs.AddToGroupButton, groupAddURL(h.deps.Bot.Username))

	lookup := h.deps.Backend.GetUser(ctx, backend.GetUserPayload{UserID: from.ID})
	if !lookup.Ok() {
		log.ErrorContext(ctx, "Failed to look up user", "error", lookup.Err, "user_id", from.ID)
		metrics.IncWorkflow(workflowRegistration, "lookup_failed")
		h.reply(ctx, m, log, chatID, msgs.CheckUserErr, nil)
		return false
	}

	if user := lookup.Value.User; user != nil {
		log.InfoContext(ctx, "User already registered", "user_id", user.ID, "registered_at", user.CreatedAt)
		metrics.IncWorkflow(workflowRegistration, "existing")
		h.reply(ctx, m, log, chatID, fmt.Sprintf(msgs.WelcomeBack, from.FirstName), addButton)
		return true
	}

	created := h.deps.Backend.CreateUser(ctx, backend.CreateUserPayload{
		UserID:    from.ID,
		FirstName: from.FirstName,
		LastName:  optional(from.LastName),
		Username:  optional(from.Username),
	})
	if !created.Ok() {
		log.ErrorContext(ctx, "Failed to create user", "error", created.Err, "user_id", from.ID)
		metrics.IncWorkflow(workflowRegistration, "create_failed")
		h.reply(ctx, m, log, chatID, msgs.CreateUserErr, nil)
		return false
	}

	log.InfoContext(ctx, "User created", "user_id", from.ID, "backend_message", created.Value.Message)
	metrics.IncWorkflow(workflowRegistration, "created")
	h.reply(ctx, m, log, chatID, fmt.Sprintf(msgs.WelcomeNew, from.FirstName), addButton)
	return true
}

func (h startHandler) greetGroup(ctx context.Context, m Messenger, log *slog.Logger, chatID int64) {
	msgs := h.deps.Config.Messages
	metrics.IncWorkflow("group_start", "greeted")
	h.reply(ctx, m, log, chatID, msgs.WelcomeGroup, urlButton(msgs.RegisterButton, registerURL(h.deps.Bot.Username)))
}

func (h startHandler) reply(ctx context.Context, m Messenger, log *slog.Logger, chatID int64, text string, markup models.ReplyMarkup) {
	params := &bot.SendMessageParams{ChatID: chatID, Text: text}
	if markup != nil {
		params.ReplyMarkup = markup
	}
	if _, err := m.SendMessage(ctx, params); err != nil {
		log.ErrorContext(ctx, "Failed to send start reply", "error", err, "chat_id", chatID)
	}
}

// sendTyping shows the "typing…" indicator; failures only get logged.
func sendTyping(ctx context.Context, m Messenger, log *slog.Logger, chatID int64) {
	if _, err := m.SendChatAction(ctx, &bot.SendChatActionParams{ChatID: chatID, Action: models.ChatActionTyping}); err != nil {
		log.DebugContext(ctx, "Failed to send typing action", "error", err, "chat_id", chatID)
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
