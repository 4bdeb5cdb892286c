package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewUsersSharedHandler returns a handler for picker selections. The
// request id chosen when the picker was opened decides which workflow the
// selection belongs to.
func NewUsersSharedHandler(deps HandlerDeps) bot.HandlerFunc {
	return usersSharedHandler{
		deps:      deps,
		addMember: addMemberHandler{deps},
		chase:     chaseHandler{deps},
	}.Handle
}

type usersSharedHandler struct {
	deps      HandlerDeps
	addMember addMemberHandler
	chase     chaseHandler
}

func (h usersSharedHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	h.handle(ctx, b, update)
}

func (h usersSharedHandler) handle(ctx context.Context, m Messenger, update *models.Update) {
	log := h.deps.Logger.With("handler", "users_shared")

	msg := update.Message
	if msg == nil || msg.From == nil || msg.UsersShared == nil {
		log.WarnContext(ctx, "Users shared handler received update without a selection", "update_id", update.ID)
		return
	}
	shared := msg.UsersShared

	log.DebugContext(ctx, "Received users selection", "user_id", msg.From.ID, "request_id", shared.RequestID, "count", len(shared.Users))

	switch shared.RequestID {
	case addMemberRequestID:
		h.addMember.complete(ctx, m, msg, shared)
	case chaseRequestID:
		h.chase.complete(ctx, m, msg, shared)
	default:
		log.WarnContext(ctx, "Unknown users selection request id", "request_id", shared.RequestID, "user_id", msg.From.ID)
	}
}
