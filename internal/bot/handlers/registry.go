package handlers

import (
	"strings"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// RegisteredHandler pairs an update matcher with its handler and middleware.
type RegisteredHandler struct {
	Name       string
	Match      tgbot.MatchFunc
	Handler    tgbot.HandlerFunc
	Middleware []tgbot.Middleware
}

// RegisterAllHandlers returns every handler in dispatch order. Matchers are
// mutually exclusive, so a parameterized /start carrying the add-member
// token never reaches the plain start handler.
func RegisterAllHandlers(deps HandlerDeps) []RegisteredHandler {
	mw := []tgbot.Middleware{Recover(deps)}
	self := deps.Bot.Username

	return []RegisteredHandler{
		{Name: "help", Match: isCommand("help", self), Handler: NewHelpHandler(deps), Middleware: mw},
		{Name: "pin", Match: isCommand("pin", self), Handler: NewPinHandler(deps), Middleware: mw},
		{Name: "balance", Match: isCommand("balance", self), Handler: NewBalanceHandler(deps), Middleware: mw},
		{Name: "chase", Match: isCommand("chase", self), Handler: NewChaseHandler(deps), Middleware: mw},
		{Name: "users_shared", Match: isUsersShared, Handler: NewUsersSharedHandler(deps), Middleware: mw},
		{Name: "new_chat_members", Match: hasNewChatMembers, Handler: NewBotAddedHandler(deps), Middleware: mw},
		{Name: "add_member_start", Match: isAddMemberStart(self), Handler: NewAddMemberHandler(deps), Middleware: mw},
		{Name: "start", Match: isPlainStart(self), Handler: NewStartHandler(deps), Middleware: mw},
	}
}

// CommandMenu lists the commands shown in private chats and in groups.
func CommandMenu() (private, group []models.BotCommand) {
	start := models.BotCommand{Command: "start", Description: "Register with SplitLeh"}
	help := models.BotCommand{Command: "help", Description: "How to use the bot"}
	pin := models.BotCommand{Command: "pin", Description: "Pin the expenses app"}

	private = []models.BotCommand{
		start,
		help,
		pin,
		{Command: "chase", Description: "Remind someone to pay you back"},
	}
	group = []models.BotCommand{
		start,
		help,
		pin,
		{Command: "balance", Description: "Show who owes whom"},
	}
	return private, group
}

// isCommand matches /name and /name@botUsername.
func isCommand(name, botUsername string) tgbot.MatchFunc {
	return func(update *models.Update) bool {
		if update.Message == nil {
			return false
		}
		cmd, _, ok := parseCommand(update.Message.Text, botUsername)
		return ok && cmd == name
	}
}

func isAddMemberStart(botUsername string) tgbot.MatchFunc {
	isStart := isCommand("start", botUsername)
	return func(update *models.Update) bool {
		if !isStart(update) {
			return false
		}
		_, args, _ := parseCommand(update.Message.Text, botUsername)
		return len(args) > 0 && strings.HasPrefix(args[len(args)-1], AddMemberPrefix)
	}
}

func isPlainStart(botUsername string) tgbot.MatchFunc {
	isStart := isCommand("start", botUsername)
	isAddMember := isAddMemberStart(botUsername)
	return func(update *models.Update) bool {
		return isStart(update) && !isAddMember(update)
	}
}

func isUsersShared(update *models.Update) bool {
	return update.Message != nil && update.Message.UsersShared != nil
}

func hasNewChatMembers(update *models.Update) bool {
	return update.Message != nil && len(update.Message.NewChatMembers) > 0
}
