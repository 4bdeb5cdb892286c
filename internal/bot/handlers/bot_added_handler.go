package handlers

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/samber/lo"

	"github.com/splitleh/splitlehbot/internal/backend"
	"github.com/splitleh/splitlehbot/internal/metrics"
)

const workflowChatBootstrap = "chat_bootstrap"

// NewBotAddedHandler returns a handler for new_chat_members updates. It only
// acts when the bot itself is one of the new members.
func NewBotAddedHandler(deps HandlerDeps) bot.HandlerFunc {
	return botAddedHandler{deps}.Handle
}

// botAddedHandler registers a chat with the backend the first time the bot
// joins it.
type botAddedHandler struct {
	deps HandlerDeps
}

func (h botAddedHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.handle(ctx, b, update)
}

func (h botAddedHandler) handle(ctx context.Context, m Messenger, update *models.Update) {
	log := h.deps.Logger.With("handler", "bot_added")

	msg := update.Message
	if msg == nil || len(msg.NewChatMembers) == 0 {
		return
	}
	if !lo.ContainsBy(msg.NewChatMembers, h.isSelf) {
		log.DebugContext(ctx, "New chat members do not include the bot", "chat_id", msg.Chat.ID, "count", len(msg.NewChatMembers))
		return
	}
	chat := msg.Chat
	if chat.Type == models.ChatTypePrivate {
		return
	}

	log.InfoContext(ctx, "Bot added to chat", "chat_id", chat.ID, "chat_type", chat.Type)

	payload := backend.CreateChatPayload{
		ChatID:       chat.ID,
		ChatTitle:    chatTitle(chat),
		ChatType:     string(chat.Type),
		ChatPhotoURL: h.photoURL(ctx, m, log, chat.ID),
	}

	msgs := h.deps.Config.Messages
	text := msgs.ChatReady
	res := h.deps.Backend.CreateChat(ctx, payload)
	if res.Ok() {
		metrics.IncWorkflow(workflowChatBootstrap, "created")
		log.InfoContext(ctx, "Chat created", "chat_id", chat.ID, "title", payload.ChatTitle, "backend_message", res.Value.Message)
	} else {
		metrics.IncWorkflow(workflowChatBootstrap, "failed")
		log.ErrorContext(ctx, "Failed to create chat", "error", res.Err, "chat_id", chat.ID)
		text = msgs.ChatInitError
	}

	if _, err := m.SendMessage(ctx, &bot.SendMessageParams{ChatID: chat.ID, Text: text}); err != nil {
		log.ErrorContext(ctx, "Failed to send chat bootstrap reply", "error", err, "chat_id", chat.ID)
	}
}

func (h botAddedHandler) isSelf(u models.User) bool {
	if h.deps.Bot.ID != 0 && u.ID == h.deps.Bot.ID {
		return true
	}
	return h.deps.Bot.Username != "" && strings.EqualFold(u.Username, h.deps.Bot.Username)
}

// photoURL resolves the chat photo to a downloadable link. Any failure
// along the way yields nil; the chat is created without a photo.
func (h botAddedHandler) photoURL(ctx context.Context, m Messenger, log *slog.Logger, chatID int64) *string {
	info, err := m.GetChat(ctx, &bot.GetChatParams{ChatID: chatID})
	if err != nil {
		log.WarnContext(ctx, "Failed to get chat info", "error", err, "chat_id", chatID)
		return nil
	}
	if info == nil || info.Photo == nil || info.Photo.BigFileID == "" {
		return nil
	}

	file, err := m.GetFile(ctx, &bot.GetFileParams{FileID: info.Photo.BigFileID})
	if err != nil {
		log.WarnContext(ctx, "Failed to get chat photo file", "error", err, "chat_id", chatID)
		return nil
	}
	return optional(m.FileDownloadLink(file))
}

// chatTitle falls back to "Group:<id>" for untitled chats.
func chatTitle(chat models.Chat) string {
	if title := strings.TrimSpace(chat.Title); title != "" {
		return title
	}
	return "Group:" + strconv.FormatInt(chat.ID, 10)
}
