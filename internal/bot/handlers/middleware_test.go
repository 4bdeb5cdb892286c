package handlers

import (
	"context"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
)

func TestRecoverSwallowsPanics(t *testing.T) {
	t.Parallel()

	deps := newTestDeps(t, &fakeBackend{})
	panicking := func(context.Context, *bot.Bot, *models.Update) { panic("boom") }

	h := Recover(deps)(panicking)

	assert.NotPanics(t, func() {
		h(context.Background(), nil, privateMessage(42, "Alice", "/start"))
	})
}

func TestRecoverPassesThrough(t *testing.T) {
	t.Parallel()

	deps := newTestDeps(t, &fakeBackend{})
	var called bool
	h := Recover(deps)(func(context.Context, *bot.Bot, *models.Update) { called = true })

	h(context.Background(), nil, &models.Update{})

	assert.True(t, called)
}
