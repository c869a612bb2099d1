package sessionstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "readiness:session:"

// RedisStore keeps sessions in Redis so several bot replicas can share them.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects and pings the server.
func NewRedisStore(ctx context.Context, address, password string, db int, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewRedisStoreWithClient(client, ttl), nil
}

func NewRedisStoreWithClient(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, chatID int64) (*Session, bool, error) {
	op := "RedisStore.Get"

	raw, err := s.client.Get(ctx, key(chatID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}

	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, false, fmt.Errorf("%s: decode: %w", op, err)
	}
	return &sess, true, nil
}

func (s *RedisStore) Set(ctx context.Context, chatID int64, sess *Session) error {
	op := "RedisStore.Set"

	sess.ExpiresAt = time.Now().Add(s.ttl)
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("%s: encode: %w", op, err)
	}
	if err := s.client.Set(ctx, key(chatID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, chatID int64) error {
	if err := s.client.Del(ctx, key(chatID)).Err(); err != nil {
		return fmt.Errorf("RedisStore.Clear: %w", err)
	}
	return nil
}

// Close releases the client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func key(chatID int64) string {
	return keyPrefix + strconv.FormatInt(chatID, 10)
}
