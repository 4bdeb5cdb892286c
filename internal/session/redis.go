package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const memberAddPrefix = "member_add:"

// RedisStore shares pending requests between bot replicas. Expiry is left
// to Redis, so Sweep has nothing to do.
type RedisStore struct {
	client *goredis.Client
	ttl    time.Duration
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore wraps an existing client. A non-positive ttl uses DefaultTTL.
func NewRedisStore(client *goredis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

// OpenRedis parses a redis:// URL and checks the connection.
func OpenRedis(ctx context.Context, rawURL string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func memberAddKey(key int64) string {
	return fmt.Sprintf("%s%d", memberAddPrefix, key)
}

func (s *RedisStore) Put(ctx context.Context, key int64, req MemberAdditionRequest) error {
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal member addition request: %w", err)
	}
	if err := s.client.Set(ctx, memberAddKey(key), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("store member addition request: %w", err)
	}
	return nil
}

// Take uses GETDEL so two concurrent selections cannot both claim the request.
func (s *RedisStore) Take(ctx context.Context, key int64) (MemberAdditionRequest, bool, error) {
	data, err := s.client.GetDel(ctx, memberAddKey(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return MemberAdditionRequest{}, false, nil
	}
	if err != nil {
		return MemberAdditionRequest{}, false, fmt.Errorf("take member addition request: %w", err)
	}

	var req MemberAdditionRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return MemberAdditionRequest{}, false, fmt.Errorf("decode member addition request: %w", err)
	}
	return req, true, nil
}

func (s *RedisStore) Sweep(context.Context) (int, error) { return 0, nil }

func (s *RedisStore) Close() error { return s.client.Close() }
