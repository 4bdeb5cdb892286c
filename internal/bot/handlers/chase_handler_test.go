package handlers

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChaseOnlyInPrivateChat(t *testing.T) {
	t.Parallel()

	deps := newTestDeps(t, &fakeBackend{})
	m := newFakeMessenger()

	chaseHandler{deps}.handle(context.Background(), m, groupMessage(-100, 42, "/chase"))

	require.Len(t, m.sent, 1)
	assert.Equal(t, deps.Config.Messages.ChaseGroupOnly, m.sent[0].Text)
	assert.Nil(t, m.sent[0].ReplyMarkup)
}

func TestChaseOpensSingleUserPicker(t *testing.T) {
	t.Parallel()

	deps := newTestDeps(t, &fakeBackend{})
	m := newFakeMessenger()

	chaseHandler{deps}.handle(context.Background(), m, privateMessage(42, "Alice", "/chase"))

	msg := m.last()
	require.NotNil(t, msg)
	assert.Equal(t, deps.Config.Messages.ChaseSelect, msg.Text)
	picker, ok := msg.ReplyMarkup.(*models.ReplyKeyboardMarkup)
	require.True(t, ok)
	req := picker.Keyboard[0][0].RequestUsers
	require.NotNil(t, req)
	assert.EqualValues(t, chaseRequestID, req.RequestID)
	assert.Equal(t, 1, req.MaxQuantity)
}

func TestChaseDeliveryOutcomes(t *testing.T) {
	t.Parallel()

	const targetID = int64(7)
	tests := []struct {
		name    string
		sendErr error
		want    func(HandlerDeps) string
	}{
		{
			name: "delivered",
			want: func(d HandlerDeps) string { return fmt.Sprintf(d.Config.Messages.ChaseSent, "@bobby") },
		},
		{
			name:    "blocked by target",
			sendErr: fmt.Errorf("%w: bot was blocked by the user", bot.ErrorForbidden),
			want:    func(d HandlerDeps) string { return fmt.Sprintf(d.Config.Messages.ChaseBlocked, "@bobby") },
		},
		{
			name:    "no conversation yet",
			sendErr: fmt.Errorf("%w: chat not found", bot.ErrorBadRequest),
			want:    func(d HandlerDeps) string { return fmt.Sprintf(d.Config.Messages.ChaseNoChat, "@bobby") },
		},
		{
			name:    "other failure",
			sendErr: errors.New("connection reset"),
			want:    func(d HandlerDeps) string { return d.Config.Messages.GeneralErr },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			deps := newTestDeps(t, &fakeBackend{})
			m := newFakeMessenger()
			if tt.sendErr != nil {
				m.sendErrs[targetID] = tt.sendErr
			}
			shared := usersSharedHandler{deps: deps, addMember: addMemberHandler{deps}, chase: chaseHandler{deps}}

			shared.handle(context.Background(), m, usersShared(42, chaseRequestID, models.SharedUser{UserID: targetID, FirstName: "Bob", Username: "bobby"}))

			reply := m.last()
			require.NotNil(t, reply)
			assert.Equal(t, int64(42), reply.ChatID)
			assert.Equal(t, tt.want(deps), reply.Text)

			if tt.sendErr == nil {
				require.Len(t, m.sent, 2)
				assert.Equal(t, targetID, m.sent[0].ChatID)
				assert.Equal(t, fmt.Sprintf(deps.Config.Messages.ChaseReminder, "Requester"), m.sent[0].Text)
			}
		})
	}
}

func TestDisplayName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "@bob", displayName("bob", "Bob", 7))
	assert.Equal(t, "Bob", displayName("", "Bob", 7))
	assert.Equal(t, "7", displayName("", "", 7))
}

func TestUsersSharedUnknownRequestIgnored(t *testing.T) {
	t.Parallel()

	be := &fakeBackend{}
	deps := newTestDeps(t, be)
	m := newFakeMessenger()
	shared := usersSharedHandler{deps: deps, addMember: addMemberHandler{deps}, chase: chaseHandler{deps}}

	shared.handle(context.Background(), m, usersShared(42, 9, pickedUsers...))

	assert.Empty(t, m.texts())
	assert.Empty(t, be.addedMembers)
}
