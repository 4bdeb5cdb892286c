package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/splitleh/splitlehbot/internal/backend"
	"github.com/splitleh/splitlehbot/internal/metrics"
	"github.com/splitleh/splitlehbot/internal/session"
)

const (
	// AddMemberPrefix marks a /start payload that opens the member picker,
	// e.g. "/start ADD_MEMBER-100123456".
	AddMemberPrefix = "ADD_MEMBER"

	// Telegram allows at most 10 users per picker.
	maxPickedUsers = 10

	workflowAddMember = "add_member"
)

// Picker request ids, echoed back in users_shared.
const (
	chaseRequestID     = 0
	addMemberRequestID = 1
)

// NewAddMemberHandler returns a handler for "/start ADD_MEMBER<chat id>".
func NewAddMemberHandler(deps HandlerDeps) bot.HandlerFunc {
	return addMemberHandler{deps}.Handle
}

// addMemberHandler owns both phases of the member-addition workflow: it
// opens the users picker and, later, applies the selection.
type addMemberHandler struct {
	deps HandlerDeps
}

func (h addMemberHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.handle(ctx, b, update)
}

func (h addMemberHandler) handle(ctx context.Context, m Messenger, update *models.Update) {
	log := h.deps.Logger.With("handler", "add_member")

	msg := update.Message
	if msg == nil || msg.From == nil {
		log.WarnContext(ctx, "Add member handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	_, args, _ := parseCommand(msg.Text, h.deps.Bot.Username)
	if len(args) == 0 {
		log.ErrorContext(ctx, "Empty add member arguments", "user_id", msg.From.ID)
		return
	}
	chatID, err := parseAddMemberToken(args[len(args)-1])
	if err != nil {
		log.ErrorContext(ctx, "Invalid add member parameter", "error", err, "user_id", msg.From.ID)
		return
	}

	req := session.NewMemberAdditionRequest(msg.From.ID, chatID, h.deps.now())
	if err := h.deps.Sessions.Put(ctx, msg.From.ID, req); err != nil {
		log.ErrorContext(ctx, "Failed to store member addition request", "error", err, "user_id", msg.From.ID)
		h.reply(ctx, m, log, msg.Chat.ID, h.deps.Config.Messages.GeneralErr, nil)
		return
	}
	log.InfoContext(ctx, "Stored member addition request", "request_id", req.ID, "user_id", msg.From.ID, "target_chat_id", chatID)

	msgs := h.deps.Config.Messages
	picker := &models.ReplyKeyboardMarkup{
		Keyboard: [][]models.KeyboardButton{{{
			Text: msgs.SelectUsersButton,
			RequestUsers: &models.KeyboardButtonRequestUsers{
				RequestID:       addMemberRequestID,
				RequestName:     true,
				RequestUsername: true,
				MaxQuantity:     maxPickedUsers,
			},
		}}},
		OneTimeKeyboard: true,
		ResizeKeyboard:  true,
	}
	h.reply(ctx, m, log, msg.Chat.ID, fmt.Sprintf(msgs.ChooseUsersToAdd, chatID), picker)
}

// parseAddMemberToken validates and strips the ADD_MEMBER prefix.
func parseAddMemberToken(token string) (int64, error) {
	if !strings.HasPrefix(token, AddMemberPrefix) {
		return 0, fmt.Errorf("token %q lacks %s prefix", token, AddMemberPrefix)
	}
	raw := strings.TrimPrefix(token, AddMemberPrefix)
	chatID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("token %q has invalid chat id: %w", token, err)
	}
	return chatID, nil
}

// complete handles the users_shared answer to the picker opened above.
func (h addMemberHandler) complete(ctx context.Context, m Messenger, msg *models.Message, shared *models.UsersShared) {
	log := h.deps.Logger.With("handler", "add_member")

	req, ok, err := h.deps.Sessions.Take(ctx, msg.From.ID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load member addition request", "error", err, "user_id", msg.From.ID)
		h.reply(ctx, m, log, msg.Chat.ID, h.deps.Config.Messages.GeneralErr, removeKeyboard())
		return
	}
	if !ok {
		log.WarnContext(ctx, "No pending member addition request, ignoring selection", "user_id", msg.From.ID)
		metrics.IncWorkflow(workflowAddMember, "stale")
		return
	}

	results := h.addAll(ctx, req.ChatID, shared.Users)
	succeeded, failed := summarizeAdditions(shared.Users, results)

	log.InfoContext(ctx, "Member addition finished",
		"request_id", req.ID,
		"target_chat_id", req.ChatID,
		"requested", len(shared.Users),
		"added", len(succeeded),
		"failed", len(failed))
	for i, res := range results {
		if !res.Ok() {
			log.WarnContext(ctx, "Failed to add member", "error", res.Err, "target_chat_id", req.ChatID, "member_id", shared.Users[i].UserID)
		}
	}
	metrics.IncWorkflow(workflowAddMember, additionOutcome(len(succeeded), len(failed)))

	text := fmt.Sprintf(h.deps.Config.Messages.AddMemberSummary,
		strings.Join(succeeded, ", "), req.ChatID, strings.Join(failed, ", "))
	h.reply(ctx, m, log, msg.Chat.ID, text, removeKeyboard())
}

// addAll issues one AddMember per user concurrently and waits for every call
// to settle. Results are indexed like users. No call cancels another.
func (h addMemberHandler) addAll(ctx context.Context, chatID int64, users []models.SharedUser) []backend.Outcome[backend.AddMemberResult] {
	results := make([]backend.Outcome[backend.AddMemberResult], len(users))

	var g errgroup.Group
	for i, u := range users {
		g.Go(func() error {
			results[i] = h.deps.Backend.AddMember(ctx, backend.AddMemberPayload{ChatID: chatID, UserID: u.UserID})
			return nil
		})
	}
	_ = g.Wait()

	return results
}

type addition struct {
	name string
	ok   bool
}

// summarizeAdditions splits picked users into added and failed display
// names, keeping the picker order.
func summarizeAdditions(users []models.SharedUser, results []backend.Outcome[backend.AddMemberResult]) (succeeded, failed []string) {
	additions := lo.Map(users, func(u models.SharedUser, i int) addition {
		return addition{name: sharedUserName(u), ok: i < len(results) && results[i].Ok()}
	})
	succeeded = lo.FilterMap(additions, func(a addition, _ int) (string, bool) { return a.name, a.ok })
	failed = lo.FilterMap(additions, func(a addition, _ int) (string, bool) { return a.name, !a.ok })
	return succeeded, failed
}

func additionOutcome(added, failed int) string {
	switch {
	case failed == 0:
		return "all_added"
	case added == 0:
		return "all_failed"
	default:
		return "partial"
	}
}

// sharedUserName prefers the first name, then the id.
func sharedUserName(u models.SharedUser) string {
	if u.FirstName != "" {
		return u.FirstName
	}
	return strconv.FormatInt(u.UserID, 10)
}

func removeKeyboard() *models.ReplyKeyboardRemove {
	return &models.ReplyKeyboardRemove{RemoveKeyboard: true}
}

func (h addMemberHandler) reply(ctx context.Context, m Messenger, log *slog.Logger, chatID int64, text string, markup models.ReplyMarkup) {
	params := &bot.SendMessageParams{ChatID: chatID, Text: text}
	if markup != nil {
		params.ReplyMarkup = markup
	}
	if _, err := m.SendMessage(ctx, params); err != nil {
		log.ErrorContext(ctx, "Failed to send add member reply", "error", err, "chat_id", chatID)
	}
}
