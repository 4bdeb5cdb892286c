// Package session keeps the short-lived state that links the two halves of
// a picker workflow: the command that opens the users picker and the
// users_shared update that answers it.
package session

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DefaultTTL is how long a pending request stays usable.
const DefaultTTL = 15 * time.Minute

// MemberAdditionRequest records which chat a user is adding members to.
type MemberAdditionRequest struct {
	ID          string    `json:"id"`
	RequesterID int64     `json:"requester_id"`
	ChatID      int64     `json:"chat_id"`
	RequestedAt time.Time `json:"requested_at"`
}

// NewMemberAdditionRequest stamps a new request with a fresh id.
func NewMemberAdditionRequest(requesterID, chatID int64, now time.Time) MemberAdditionRequest {
	return MemberAdditionRequest{
		ID:          uuid.NewString(),
		RequesterID: requesterID,
		ChatID:      chatID,
		RequestedAt: now.UTC(),
	}
}

// Store holds at most one pending request per requesting user.
//
// Keys are always the requester's Telegram user id: the picker is shown in
// the requester's private chat whatever group is targeted.
type Store interface {
	// Put stores req under key, replacing any pending request.
	Put(ctx context.Context, key int64, req MemberAdditionRequest) error
	// Take removes and returns the pending request for key. ok is false when
	// there is none or it has expired.
	Take(ctx context.Context, key int64) (req MemberAdditionRequest, ok bool, err error)
	// Sweep drops expired entries and reports how many were removed.
	Sweep(ctx context.Context) (int, error)
	Close() error
}
