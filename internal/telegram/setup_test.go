package telegram

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitleh/splitlehbot/internal/bot/handlers"
	"github.com/splitleh/splitlehbot/internal/logger"
)

func discard() *slog.Logger {
	return logger.Discard()
}

func TestNewTelegramBotRejectsEmptyToken(t *testing.T) {
	t.Parallel()

	_, err := NewTelegramBot("", discard())
	assert.Error(t, err)
}

func TestTokenPrefix(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "12345678...", tokenPrefix("12345678:secret"))
	assert.Equal(t, "...", tokenPrefix("short"))
}

func TestRegisterHandlersDispatchesByMatch(t *testing.T) {
	t.Parallel()

	b, err := NewTelegramBot("123456789:test-token", discard(), bot.WithSkipGetMe())
	require.NoError(t, err)

	var (
		mu  sync.Mutex
		got []string
	)
	record := func(name string) bot.HandlerFunc {
		return func(context.Context, *bot.Bot, *models.Update) {
			mu.Lock()
			defer mu.Unlock()
			got = append(got, name)
		}
	}
	textIs := func(text string) bot.MatchFunc {
		return func(u *models.Update) bool { return u.Message != nil && u.Message.Text == text }
	}

	require.NoError(t, RegisterHandlers(b, discard(), []handlers.RegisteredHandler{
		{Name: "a", Match: textIs("a"), Handler: record("a")},
		{Name: "b", Match: textIs("b"), Handler: record("b")},
		{Name: "incomplete", Match: textIs("c")},
	}))

	b.ProcessUpdate(context.Background(), &models.Update{Message: &models.Message{Text: "b"}})

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1 && got[0] == "b"
	}, time.Second, 10*time.Millisecond)
}

func TestRegisterHandlersRequiresBot(t *testing.T) {
	t.Parallel()

	assert.Error(t, RegisterHandlers(nil, discard(), nil))
}
