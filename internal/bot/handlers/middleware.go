// Package handlers contains Telegram bot command and message handlers,
// along with their registration logic and middleware.
package handlers

import (
	"context"
	"fmt"
	"runtime/debug"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/splitleh/splitlehbot/internal/metrics"
)

// Recover creates a middleware that turns a panicking handler into a logged
// error and a generic apology in the originating chat.
func Recover(deps HandlerDeps) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				log := deps.Logger.With("middleware", "Recover")
				log.ErrorContext(ctx, "Handler panicked",
					"error", fmt.Sprint(r),
					"update_id", update.ID,
					"stack", string(debug.Stack()))
				metrics.IncWorkflow("handler", "panic")

				if update.Message == nil || bot == nil {
					return
				}
				_, err := bot.SendMessage(ctx, &tgbot.SendMessageParams{
					ChatID: update.Message.Chat.ID,
					Text:   deps.Config.Messages.GeneralErr,
				})
				if err != nil {
					log.ErrorContext(ctx, "Failed to send error message", "error", err, "chat_id", update.Message.Chat.ID)
				}
			}()

			next(ctx, bot, update)
		}
	}
}
