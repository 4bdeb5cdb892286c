package handlers

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func matching(t *testing.T, handlers []RegisteredHandler, update *models.Update) []string {
	t.Helper()
	var names []string
	for _, h := range handlers {
		if h.Match(update) {
			names = append(names, h.Name)
		}
	}
	return names
}

func TestRegisterAllHandlersDispatch(t *testing.T) {
	t.Parallel()

	handlers := RegisterAllHandlers(newTestDeps(t, &fakeBackend{}))

	withShared := privateMessage(42, "Alice", "")
	withShared.Message.UsersShared = &models.UsersShared{RequestID: 1}
	withMembers := groupMessage(-100, 42, "")
	withMembers.Message.NewChatMembers = []models.User{{ID: testBotID}}

	tests := []struct {
		name   string
		update *models.Update
		want   []string
	}{
		{name: "bare start", update: privateMessage(42, "Alice", "/start"), want: []string{"start"}},
		{name: "start with other payload", update: privateMessage(42, "Alice", "/start register"), want: []string{"start"}},
		{name: "add member start", update: privateMessage(42, "Alice", "/start ADD_MEMBER777"), want: []string{"add_member_start"}},
		{name: "addressed start", update: groupMessage(-100, 42, "/start@SplitLehBot"), want: []string{"start"}},
		{name: "help", update: privateMessage(42, "Alice", "/help"), want: []string{"help"}},
		{name: "pin", update: groupMessage(-100, 42, "/pin"), want: []string{"pin"}},
		{name: "balance", update: groupMessage(-100, 42, "/balance@SplitLehBot"), want: []string{"balance"}},
		{name: "chase", update: privateMessage(42, "Alice", "/chase"), want: []string{"chase"}},
		{name: "users shared", update: withShared, want: []string{"users_shared"}},
		{name: "new members", update: withMembers, want: []string{"new_chat_members"}},
		{name: "start for another bot", update: groupMessage(-100, 42, "/start@OtherBot"), want: nil},
		{name: "pin for another bot", update: groupMessage(-100, 42, "/pin@OtherBot"), want: nil},
		{name: "help for another bot", update: groupMessage(-100, 42, "/help@OtherBot"), want: nil},
		{name: "addressed case-insensitively", update: groupMessage(-100, 42, "/pin@splitlehbot"), want: []string{"pin"}},
		{name: "plain text", update: privateMessage(42, "Alice", "hello"), want: nil},
		{name: "unknown command", update: privateMessage(42, "Alice", "/settle"), want: nil},
		{name: "callback only", update: &models.Update{CallbackQuery: &models.CallbackQuery{ID: "x"}}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, matching(t, handlers, tt.update))
		})
	}
}

func TestCommandMenu(t *testing.T) {
	t.Parallel()

	private, group := CommandMenu()

	names := func(cmds []models.BotCommand) []string {
		out := make([]string, 0, len(cmds))
		for _, c := range cmds {
			out = append(out, c.Command)
		}
		return out
	}
	assert.Equal(t, []string{"start", "help", "pin", "chase"}, names(private))
	assert.Equal(t, []string{"start", "help", "pin", "balance"}, names(group))
}

func TestParseCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text     string
		wantName string
		wantArgs []string
		wantOK   bool
	}{
		{text: "/start", wantName: "start", wantArgs: []string{}, wantOK: true},
		{text: "/START@SplitLehBot ADD_MEMBER1", wantName: "start", wantArgs: []string{"ADD_MEMBER1"}, wantOK: true},
		{text: "/pin@OtherBot", wantOK: false},
		{text: "/pin@", wantOK: false},
		{text: "  /pin  ", wantName: "pin", wantArgs: []string{}, wantOK: true},
		{text: "start", wantOK: false},
		{text: "/", wantOK: false},
		{text: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			t.Parallel()

			name, args, ok := parseCommand(tt.text, testBotUsername)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantName, name)
				assert.Equal(t, tt.wantArgs, args)
			}
		})
	}
}

func TestEncodeChatContext(t *testing.T) {
	t.Parallel()

	raw, err := base64.StdEncoding.DecodeString(encodeChatContext(-100123, "supergroup"))
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, map[string]any{"chat_id": float64(-100123), "chat_type": "supergroup"}, got)
}

func TestMiniAppURL(t *testing.T) {
	t.Parallel()

	got := miniAppURL("https://t.me/{botusername}/app?mode={mode}&startapp={command}", "SplitLehBot", "compact", "group")
	assert.Equal(t, "https://t.me/SplitLehBot/app?mode=compact&startapp=group", got)
}

func TestEscapeLinkTarget(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "https://t.me/SplitLehBot/app", escapeLinkTarget("https://t.me/SplitLehBot/app"))
	assert.Equal(t, `https://x.test/a_\(b\)?q=\\`, escapeLinkTarget(`https://x.test/a_(b)?q=\`))
}
