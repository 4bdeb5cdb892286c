package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// balanceCommand is the mini-app view listing a group's balances.
const balanceCommand = "group"

// NewBalanceHandler returns a handler for the /balance command.
func NewBalanceHandler(deps HandlerDeps) bot.HandlerFunc {
	return balanceHandler{deps}.Handle
}

// balanceHandler points the group at the mini-app balance breakdown.
type balanceHandler struct {
	deps HandlerDeps
}

func (h balanceHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.handle(ctx, b, update)
}

func (h balanceHandler) handle(ctx context.Context, m Messenger, update *models.Update) {
	log := h.deps.Logger.With("handler", "balance")

	if update.Message == nil {
		log.WarnContext(ctx, "Balance handler received update with nil message", "update_id", update.ID)
		return
	}
	chat := update.Message.Chat
	msgs := h.deps.Config.Messages

	log.InfoContext(ctx, "Handling /balance command", "chat_id", chat.ID)

	link := miniAppURL(h.deps.Config.Telegram.MiniAppLink, h.deps.Bot.Username, miniAppMode, balanceCommand)
	text := msgs.BalanceHeader + "\n\n" + fmt.Sprintf(msgs.BalanceBody, escapeLinkTarget(link))

	_, err := m.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:             chat.ID,
		Text:               text,
		ParseMode:          models.ParseModeMarkdown,
		LinkPreviewOptions: &models.LinkPreviewOptions{IsDisabled: bot.True()},
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send balance message", "error", err, "chat_id", chat.ID)
	}
}
