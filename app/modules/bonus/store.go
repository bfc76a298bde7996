// Package bonus tracks users who hold an externally-verified vote bonus.
// The verification itself happens outside this process; a webhook consumer
// grants the bonus here and the EXP engine doubles those users' gains while
// the grant lives.
package bonus

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Blind-Test-Club/songquiz-bot/app/shared/sharedtypes"
)

// DefaultGrantTTL is how long one verified vote keeps the bonus active.
const DefaultGrantTTL = 12 * time.Hour

const keyPrefix = "songquiz:votebonus:"

// Store answers "does this user currently hold the vote bonus".
type Store interface {
	IsBonusUser(ctx context.Context, userID sharedtypes.UserID) (bool, error)
	Grant(ctx context.Context, userID sharedtypes.UserID, ttl time.Duration) error
}

// RedisStore is the production Store.
type RedisStore struct {
	client *redis.Client
	logger *slog.Logger
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore wraps a redis client.
func NewRedisStore(client *redis.Client, logger *slog.Logger) *RedisStore {
	return &RedisStore{client: client, logger: logger}
}

// IsBonusUser reports whether the user has an unexpired grant. Lookup
// failures are reported so callers can decide to default to "no bonus".
func (s *RedisStore) IsBonusUser(ctx context.Context, userID sharedtypes.UserID) (bool, error) {
	n, err := s.client.Exists(ctx, keyPrefix+userID.String()).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check vote bonus for %s: %w", userID, err)
	}
	return n > 0, nil
}

// Grant records a verified vote with the given TTL.
func (s *RedisStore) Grant(ctx context.Context, userID sharedtypes.UserID, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultGrantTTL
	}
	if err := s.client.Set(ctx, keyPrefix+userID.String(), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to grant vote bonus for %s: %w", userID, err)
	}
	s.logger.InfoContext(ctx, "vote bonus granted",
		slog.String("user_id", userID.String()),
		slog.Duration("ttl", ttl),
	)
	return nil
}

// NoopStore always answers "no bonus"; used when redis is not configured.
type NoopStore struct{}

var _ Store = (*NoopStore)(nil)

func (NoopStore) IsBonusUser(context.Context, sharedtypes.UserID) (bool, error) { return false, nil }

func (NoopStore) Grant(context.Context, sharedtypes.UserID, time.Duration) error { return nil }
