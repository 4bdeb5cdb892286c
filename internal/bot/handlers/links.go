package handlers

import (
	"encoding/base64"
	"encoding/json"
	"net/url"
	"strings"
)

const (
	groupAddPayload = "group_add"
	registerPayload = "register"
	miniAppMode     = "compact"
)

// groupAddURL opens the "add to group" picker for the bot.
func groupAddURL(botUsername string) string {
	return "https://t.me/" + botUsername + "?startgroup=" + url.QueryEscape(groupAddPayload)
}

// registerURL opens a private chat with the bot carrying a start payload.
func registerURL(botUsername string) string {
	return "https://t.me/" + botUsername + "?start=" + url.QueryEscape(registerPayload)
}

// miniAppURL fills the configured deep-link template. Supported
// placeholders are {botusername}, {mode} and {command}.
func miniAppURL(template, botUsername, mode, command string) string {
	return strings.NewReplacer(
		"{botusername}", botUsername,
		"{mode}", mode,
		"{command}", command,
	).Replace(template)
}

var linkTargetEscaper = strings.NewReplacer(`\`, `\\`, `)`, `\)`)

// escapeLinkTarget escapes the characters MarkdownV2 reserves inside the
// (...) part of an inline link.
func escapeLinkTarget(u string) string {
	return linkTargetEscaper.Replace(u)
}

type chatContext struct {
	ChatID   int64  `json:"chat_id"`
	ChatType string `json:"chat_type"`
}

// encodeChatContext is the start parameter the mini-app uses to find the chat.
func encodeChatContext(chatID int64, chatType string) string {
	raw, _ := json.Marshal(chatContext{ChatID: chatID, ChatType: chatType})
	return base64.StdEncoding.EncodeToString(raw)
}

// parseCommand splits "/cmd@bot arg1 arg2" into its lower-cased name and
// arguments. ok is false when text is not a command or is addressed to a bot
// other than botUsername.
func parseCommand(text, botUsername string) (name string, args []string, ok bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "", nil, false
	}
	name = strings.TrimPrefix(fields[0], "/")
	if at := strings.IndexByte(name, '@'); at >= 0 {
		if !strings.EqualFold(name[at+1:], botUsername) {
			return "", nil, false
		}
		name = name[:at]
	}
	if name == "" {
		return "", nil, false
	}
	return strings.ToLower(name), fields[1:], true
}
