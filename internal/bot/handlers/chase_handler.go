package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/splitleh/splitlehbot/internal/metrics"
)

const workflowChase = "chase"

// NewChaseHandler returns a handler for the /chase command.
func NewChaseHandler(deps HandlerDeps) bot.HandlerFunc {
	return chaseHandler{deps}.Handle
}

// chaseHandler lets a user nudge someone who owes them money. It presents a
// single-user picker and DMs the chosen user once the selection comes back.
type chaseHandler struct {
	deps HandlerDeps
}

func (h chaseHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.handle(ctx, b, update)
}

func (h chaseHandler) handle(ctx context.Context, m Messenger, update *models.Update) {
	log := h.deps.Logger.With("handler", "chase")

	if update.Message == nil {
		log.WarnContext(ctx, "Chase handler received update with nil message", "update_id", update.ID)
		return
	}
	chat := update.Message.Chat
	msgs := h.deps.Config.Messages

	log.InfoContext(ctx, "Handling /chase command", "chat_id", chat.ID, "chat_type", chat.Type)

	if chat.Type != models.ChatTypePrivate {
		h.reply(ctx, m, log, chat.ID, msgs.ChaseGroupOnly, nil)
		return
	}

	picker := &models.ReplyKeyboardMarkup{
		Keyboard: [][]models.KeyboardButton{{{
			Text: msgs.ChaseButton,
			RequestUsers: &models.KeyboardButtonRequestUsers{
				RequestID:       chaseRequestID,
				RequestName:     true,
				RequestUsername: true,
				MaxQuantity:     1,
			},
		}}},
		OneTimeKeyboard: true,
		ResizeKeyboard:  true,
	}
	h.reply(ctx, m, log, chat.ID, msgs.ChaseSelect, picker)
}

// complete sends the reminder to the picked user and reports the delivery
// result back to the requester.
func (h chaseHandler) complete(ctx context.Context, m Messenger, msg *models.Message, shared *models.UsersShared) {
	log := h.deps.Logger.With("handler", "chase")
	msgs := h.deps.Config.Messages

	if len(shared.Users) == 0 {
		log.WarnContext(ctx, "Chase selection carried no users", "user_id", msg.From.ID)
		return
	}
	target := shared.Users[0]
	name := displayName(target.Username, target.FirstName, target.UserID)

	_, err := m.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: target.UserID,
		Text:   fmt.Sprintf(msgs.ChaseReminder, displayName(msg.From.Username, msg.From.FirstName, msg.From.ID)),
	})

	var text, outcome string
	switch {
	case err == nil:
		text, outcome = fmt.Sprintf(msgs.ChaseSent, name), "sent"
		log.InfoContext(ctx, "Sent chase reminder", "user_id", msg.From.ID, "target_id", target.UserID)
	case errors.Is(err, bot.ErrorForbidden):
		text, outcome = fmt.Sprintf(msgs.ChaseBlocked, name), "blocked"
		log.WarnContext(ctx, "Chase target blocked the bot", "error", err, "target_id", target.UserID)
	case errors.Is(err, bot.ErrorBadRequest):
		text, outcome = fmt.Sprintf(msgs.ChaseNoChat, name), "no_chat"
		log.WarnContext(ctx, "Chase target has no conversation with the bot", "error", err, "target_id", target.UserID)
	default:
		text, outcome = msgs.GeneralErr, "failed"
		log.ErrorContext(ctx, "Failed to send chase reminder", "error", err, "target_id", target.UserID)
	}
	metrics.IncWorkflow(workflowChase, outcome)

	h.reply(ctx, m, log, msg.Chat.ID, text, removeKeyboard())
}

// displayName prefers the @username, then the first name, then the id.
func displayName(username, firstName string, id int64) string {
	switch {
	case username != "":
		return "@" + username
	case firstName != "":
		return firstName
	default:
		return strconv.FormatInt(id, 10)
	}
}

func (h chaseHandler) reply(ctx context.Context, m Messenger, log *slog.Logger, chatID int64, text string, markup models.ReplyMarkup) {
	params := &bot.SendMessageParams{ChatID: chatID, Text: text}
	if markup != nil {
		params.ReplyMarkup = markup
	}
	if _, err := m.SendMessage(ctx, params); err != nil {
		log.ErrorContext(ctx, "Failed to send chase reply", "error", err, "chat_id", chatID)
	}
}
