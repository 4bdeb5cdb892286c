// Package backend is the typed client for the SplitLeh account and group
// management API. Every operation returns an Outcome instead of an error so
// that callers branch on success or failure in one place.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/splitleh/splitlehbot/internal/metrics"
)

const (
	opCreateUser = "create_user"
	opGetUser    = "get_user"
	opCreateChat = "create_chat"
	opAddMember  = "add_member"
	opPing       = "ping"

	defaultTimeout = 10 * time.Second
)

// Config holds the connection settings for the backend API.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client talks to the backend over a single long-lived http.Client.
type Client struct {
	baseURL    string
	authHeader string
	httpClient *http.Client
	logger     *slog.Logger

	mu       sync.RWMutex
	closed   bool
	inflight sync.WaitGroup
}

// New creates a backend client. The bearer header is fixed at construction.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("backend base url cannot be empty")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("backend api key cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		authHeader: "Bearer " + cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With("component", "backend_client"),
	}, nil
}

// CreateUser registers a Telegram user with the backend.
func (c *Client) CreateUser(ctx context.Context, payload CreateUserPayload) Outcome[CreateUserResult] {
	status, env, err := c.call(ctx, opCreateUser, http.MethodPost, "/user", payload)
	if err != nil {
		return Failure[CreateUserResult](err)
	}
	return Success(CreateUserResult{Result{Status: status, Message: env.Message}})
}

// GetUser looks a user up by id. An unknown user is a successful outcome
// with a nil User.
func (c *Client) GetUser(ctx context.Context, payload GetUserPayload) Outcome[GetUserResult] {
	path := "/user/" + strconv.FormatInt(payload.UserID, 10)
	status, env, err := c.call(ctx, opGetUser, http.MethodGet, path, nil)
	if err != nil {
		if IsNotFound(err) {
			return Success(GetUserResult{
				Result: Result{
					Status:  http.StatusNotFound,
					Message: fmt.Sprintf("user %d not found", payload.UserID),
				},
			})
		}
		return Failure[GetUserResult](err)
	}

	res := GetUserResult{Result: Result{Status: status, Message: env.Message}}
	if len(env.Data) > 0 && !bytes.Equal(env.Data, []byte("null")) {
		var user User
		if err := json.Unmarshal(env.Data, &user); err != nil {
			return Failure[GetUserResult](&Error{Op: opGetUser, Kind: KindDecode, Status: status, Err: err})
		}
		res.User = &user
	}
	return Success(res)
}

// CreateChat records a chat the bot has just been added to.
func (c *Client) CreateChat(ctx context.Context, payload CreateChatPayload) Outcome[CreateChatResult] {
	status, env, err := c.call(ctx, opCreateChat, http.MethodPost, "/chat", payload)
	if err != nil {
		return Failure[CreateChatResult](err)
	}
	return Success(CreateChatResult{Result{Status: status, Message: env.Message}})
}

// AddMember adds one user to one chat. Batches are the caller's concern.
func (c *Client) AddMember(ctx context.Context, payload AddMemberPayload) Outcome[AddMemberResult] {
	path := "/chat/" + strconv.FormatInt(payload.ChatID, 10) + "/members"
	status, env, err := c.call(ctx, opAddMember, http.MethodPatch, path, payload)
	if err != nil {
		return Failure[AddMemberResult](err)
	}
	return Success(AddMemberResult{Result{Status: status, Message: env.Message}})
}

// Ping checks that the backend answers HTTP at all. Any response status
// counts as reachable.
func (c *Client) Ping(ctx context.Context) error {
	release, err := c.acquire(opPing)
	if err != nil {
		return err
	}
	defer release()

	req, err := c.buildRequest(ctx, http.MethodGet, "/", nil)
	if err != nil {
		return &Error{Op: opPing, Kind: KindTransport, Err: err}
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Op: opPing, Kind: KindTransport, Err: err}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return nil
}

// Close stops accepting new calls, waits for in-flight calls to settle and
// releases idle connections. It returns ctx.Err() if ctx ends first.
func (c *Client) Close(ctx context.Context) error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	done := make(chan struct{})
	go func() {
		c.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		c.logger.Warn("Backend client closed with calls still in flight", "error", ctx.Err())
		return ctx.Err()
	}

	c.httpClient.CloseIdleConnections()
	c.logger.Info("Backend client closed")
	return nil
}

func (c *Client) acquire(op string) (func(), error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return nil, &Error{Op: op, Kind: KindClosed, Err: ErrClosed}
	}
	c.inflight.Add(1)
	return c.inflight.Done, nil
}

// envelope is the shape shared by every backend response body.
type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// call performs one request and classifies the result. The returned error,
// when non-nil, is always an *Error.
func (c *Client) call(ctx context.Context, op, method, path string, body any) (int, envelope, error) {
	release, err := c.acquire(op)
	if err != nil {
		metrics.ObserveBackendCall(op, KindClosed.String(), 0)
		return 0, envelope{}, err
	}
	defer release()

	start := time.Now()
	status, env, err := c.doRequest(ctx, op, method, path, body)
	took := time.Since(start)

	outcome := callOutcome(op, err)
	metrics.ObserveBackendCall(op, outcome, took)

	log := c.logger.With("op", op, "method", method, "path", path, "status", status, "duration", took)
	switch outcome {
	case outcomeSuccess:
		log.DebugContext(ctx, "Backend call succeeded")
	case outcomeNotFound:
		log.DebugContext(ctx, "Backend user not registered")
	default:
		log.DebugContext(ctx, "Backend call failed", "error", err)
	}
	return status, env, err
}

const (
	outcomeSuccess  = "success"
	outcomeNotFound = "not_found"
)

// callOutcome labels a finished call for metrics. A get-user 404 is the
// normal answer for someone who has not signed up yet.
func callOutcome(op string, err error) string {
	if err == nil {
		return outcomeSuccess
	}
	if op == opGetUser && IsNotFound(err) {
		return outcomeNotFound
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind.String()
	}
	return KindTransport.String()
}

func (c *Client) doRequest(ctx context.Context, op, method, path string, body any) (int, envelope, error) {
	var env envelope

	req, err := c.buildRequest(ctx, method, path, body)
	if err != nil {
		return 0, env, &Error{Op: op, Kind: KindTransport, Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, env, &Error{Op: op, Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, env, &Error{Op: op, Kind: KindTransport, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := http.StatusText(resp.StatusCode)
		if len(raw) > 0 && json.Unmarshal(raw, &env) == nil && env.Message != "" {
			msg = env.Message
		}
		return resp.StatusCode, envelope{}, &Error{Op: op, Kind: KindRejected, Status: resp.StatusCode, Message: msg}
	}

	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			return resp.StatusCode, envelope{}, &Error{Op: op, Kind: KindDecode, Status: resp.StatusCode, Err: err}
		}
	}
	return resp.StatusCode, env, nil
}

// buildRequest creates a new HTTP request with the JSON and auth headers set.
func (c *Client) buildRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", c.authHeader)

	return req, nil
}
