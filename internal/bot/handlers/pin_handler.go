package handlers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewPinHandler returns a handler for the /pin command.
func NewPinHandler(deps HandlerDeps) bot.HandlerFunc {
	return pinHandler{deps}.Handle
}

// pinHandler posts and pins the mini-app entry message on demand.
type pinHandler struct {
	deps HandlerDeps
}

func (h pinHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.handle(ctx, b, update)
}

func (h pinHandler) handle(ctx context.Context, m Messenger, update *models.Update) {
	log := h.deps.Logger.With("handler", "pin")

	if update.Message == nil {
		log.WarnContext(ctx, "Pin handler received update with nil message", "update_id", update.ID)
		return
	}

	log.InfoContext(ctx, "Handling /pin command", "chat_id", update.Message.Chat.ID)
	pinExpenses(ctx, h.deps, m, log, update.Message.Chat)
}

// pinExpenses sends the "Expenses" mini-app button and tries to pin it.
// A refused pin is downgraded to a reply asking for a manual pin.
func pinExpenses(ctx context.Context, deps HandlerDeps, m Messenger, log *slog.Logger, chat models.Chat) {
	msgs := deps.Config.Messages
	link := miniAppURL(
		deps.Config.Telegram.MiniAppLink,
		deps.Bot.Username,
		miniAppMode,
		encodeChatContext(chat.ID, string(chat.Type)),
	)

	pinMsg, err := m.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chat.ID,
		Text:        msgs.PinText,
		ReplyMarkup: urlButton(msgs.PinButton, link),
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send pin message", "error", err, "chat_id", chat.ID)
		return
	}

	_, err = m.PinChatMessage(ctx, &bot.PinChatMessageParams{
		ChatID:    chat.ID,
		MessageID: pinMsg.ID,
	})
	if err == nil {
		log.DebugContext(ctx, "Pinned expenses message", "chat_id", chat.ID, "message_id", pinMsg.ID)
		return
	}

	log.WarnContext(ctx, "Failed to pin expenses message", "error", err, "chat_id", chat.ID)
	_, err = m.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:          chat.ID,
		Text:            fmt.Sprintf(msgs.PinFallback, deps.Bot.Username),
		ReplyParameters: &models.ReplyParameters{MessageID: pinMsg.ID},
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send pin fallback message", "error", err, "chat_id", chat.ID)
	}
}

// urlButton is a single-button inline keyboard opening link.
func urlButton(text, link string) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: text, URL: link}},
		},
	}
}
