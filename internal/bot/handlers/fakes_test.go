package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/splitleh/splitlehbot/internal/backend"
	"github.com/splitleh/splitlehbot/internal/config"
	"github.com/splitleh/splitlehbot/internal/session"
)

const (
	testBotID       = int64(999)
	testBotUsername = "SplitLehBot"
)

var errBackendDown = errors.New("backend down")

// fakeMessenger records outbound calls. Sends to a chat listed in sendErrs
// fail with that error.
type fakeMessenger struct {
	mu       sync.Mutex
	nextID   int
	sent     []*bot.SendMessageParams
	actions  []*bot.SendChatActionParams
	pinned   []*bot.PinChatMessageParams
	sendErrs map[int64]error
	pinErr   error
	chat     *models.ChatFullInfo
	chatErr  error
	file     *models.File
	fileErr  error
}

func newFakeMessenger() *fakeMessenger {
	return &fakeMessenger{nextID: 100, sendErrs: map[int64]error{}}
}

func (f *fakeMessenger) SendMessage(_ context.Context, p *bot.SendMessageParams) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	chatID, _ := p.ChatID.(int64)
	if err := f.sendErrs[chatID]; err != nil {
		return nil, err
	}
	f.nextID++
	f.sent = append(f.sent, p)
	return &models.Message{ID: f.nextID, Chat: models.Chat{ID: chatID}, Text: p.Text}, nil
}

func (f *fakeMessenger) SendChatAction(_ context.Context, p *bot.SendChatActionParams) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actions = append(f.actions, p)
	return true, nil
}

func (f *fakeMessenger) PinChatMessage(_ context.Context, p *bot.PinChatMessageParams) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pinErr != nil {
		return false, f.pinErr
	}
	f.pinned = append(f.pinned, p)
	return true, nil
}

func (f *fakeMessenger) GetChat(_ context.Context, _ *bot.GetChatParams) (*models.ChatFullInfo, error) {
	if f.chatErr != nil {
		return nil, f.chatErr
	}
	if f.chat == nil {
		return &models.ChatFullInfo{}, nil
	}
	return f.chat, nil
}

func (f *fakeMessenger) GetFile(_ context.Context, p *bot.GetFileParams) (*models.File, error) {
	if f.fileErr != nil {
		return nil, f.fileErr
	}
	if f.file != nil {
		return f.file, nil
	}
	return &models.File{FileID: p.FileID, FilePath: "photos/" + p.FileID + ".jpg"}, nil
}

func (f *fakeMessenger) FileDownloadLink(file *models.File) string {
	return "https://files.example/" + file.FilePath
}

func (f *fakeMessenger) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.sent))
	for _, p := range f.sent {
		out = append(out, p.Text)
	}
	return out
}

func (f *fakeMessenger) last() *bot.SendMessageParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return nil
	}
	return f.sent[len(f.sent)-1]
}

// fakeBackend answers from canned outcomes and records every call.
type fakeBackend struct {
	mu sync.Mutex

	user          *backend.User
	getUserErr    error
	createUserErr error
	createChatErr error
	// addMemberErrs fails AddMember for the listed user ids.
	addMemberErrs map[int64]error
	addMemberWait time.Duration

	createdUsers []backend.CreateUserPayload
	createdChats []backend.CreateChatPayload
	addedMembers []backend.AddMemberPayload
	getUserCalls int
}

func (b *fakeBackend) GetUser(_ context.Context, p backend.GetUserPayload) backend.Outcome[backend.GetUserResult] {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.getUserCalls++
	if b.getUserErr != nil {
		return backend.Failure[backend.GetUserResult](b.getUserErr)
	}
	if b.user == nil {
		return backend.Success(backend.GetUserResult{
			Result: backend.Result{Status: 404, Message: fmt.Sprintf("user %d not found", p.UserID)},
		})
	}
	return backend.Success(backend.GetUserResult{Result: backend.Result{Status: 200}, User: b.user})
}

func (b *fakeBackend) CreateUser(_ context.Context, p backend.CreateUserPayload) backend.Outcome[backend.CreateUserResult] {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.createdUsers = append(b.createdUsers, p)
	if b.createUserErr != nil {
		return backend.Failure[backend.CreateUserResult](b.createUserErr)
	}
	return backend.Success(backend.CreateUserResult{Result: backend.Result{Status: 201, Message: "created"}})
}

func (b *fakeBackend) CreateChat(_ context.Context, p backend.CreateChatPayload) backend.Outcome[backend.CreateChatResult] {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.createdChats = append(b.createdChats, p)
	if b.createChatErr != nil {
		return backend.Failure[backend.CreateChatResult](b.createChatErr)
	}
	return backend.Success(backend.CreateChatResult{Result: backend.Result{Status: 201, Message: "created"}})
}

func (b *fakeBackend) AddMember(_ context.Context, p backend.AddMemberPayload) backend.Outcome[backend.AddMemberResult] {
	if b.addMemberWait > 0 {
		time.Sleep(b.addMemberWait)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.addedMembers = append(b.addedMembers, p)
	if err := b.addMemberErrs[p.UserID]; err != nil {
		return backend.Failure[backend.AddMemberResult](err)
	}
	return backend.Success(backend.AddMemberResult{Result: backend.Result{Status: 200, Message: "added"}})
}

func testConfig() *config.Config {
	return &config.Config{
		Env: config.EnvDevelopment,
		Telegram: config.TelegramConfig{
			MiniAppLink: "https://t.me/{botusername}/app?mode={mode}&startapp={command}",
		},
		Messages: config.DefaultMessages(),
	}
}

func newTestDeps(t *testing.T, be *fakeBackend) HandlerDeps {
	t.Helper()
	store := session.NewMemoryStore(session.DefaultTTL)
	t.Cleanup(func() { _ = store.Close() })
	return HandlerDeps{
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Config:   testConfig(),
		Backend:  be,
		Sessions: store,
		Bot:      BotIdentity{ID: testBotID, Username: testBotUsername},
		Now:      func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) },
	}
}

func privateMessage(userID int64, firstName, text string) *models.Update {
	return &models.Update{
		ID: 1,
		Message: &models.Message{
			ID:   10,
			From: &models.User{ID: userID, FirstName: firstName},
			Chat: models.Chat{ID: userID, Type: models.ChatTypePrivate},
			Text: text,
		},
	}
}

func groupMessage(chatID, userID int64, text string) *models.Update {
	return &models.Update{
		ID: 2,
		Message: &models.Message{
			ID:   11,
			From: &models.User{ID: userID, FirstName: "Member"},
			Chat: models.Chat{ID: chatID, Type: models.ChatTypeGroup, Title: "Trip"},
			Text: text,
		},
	}
}

func usersShared(userID int64, requestID int, users ...models.SharedUser) *models.Update {
	u := privateMessage(userID, "Requester", "")
	u.Message.UsersShared = &models.UsersShared{RequestID: requestID, Users: users}
	return u
}
