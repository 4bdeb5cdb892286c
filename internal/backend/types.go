package backend

import "time"

// Result is the common part of every successful response.
type Result struct {
	Status  int
	Message string
}

// User is the backend's view of a registered Telegram user.
type User struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CreateUserPayload struct {
	UserID    int64   `json:"user_id"`
	FirstName string  `json:"first_name"`
	LastName  *string `json:"last_name"`
	Username  *string `json:"username"`
}

type CreateUserResult struct {
	Result
}

type GetUserPayload struct {
	UserID int64 `json:"user_id"`
}

// GetUserResult carries a nil User when the backend does not know the user.
type GetUserResult struct {
	Result
	User *User
}

type CreateChatPayload struct {
	ChatID       int64   `json:"chat_id"`
	ChatTitle    string  `json:"chat_title"`
	ChatType     string  `json:"chat_type"`
	ChatPhotoURL *string `json:"chat_photo_url"`
}

type CreateChatResult struct {
	Result
}

type AddMemberPayload struct {
	ChatID int64 `json:"-"`
	UserID int64 `json:"user_id"`
}

type AddMemberResult struct {
	Result
}
