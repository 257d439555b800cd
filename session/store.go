package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable wraps every infrastructure failure from the index so
// callers can distinguish store trouble from ordinary misses.
var ErrRedisUnavailable = errors.New("redis unavailable")

// Index is the Redis-backed session index. Keys are "<prefix>:<userID>",
// values are sets of token strings. All operations map to single atomic
// Redis commands (or one transactional pipeline for Replace); there is no
// cross-operation compare-and-swap.
type Index struct {
	redis  redis.UniversalClient
	prefix string
}

// NewIndex creates a session Index backed by the given Redis client. prefix
// namespaces the keys.
func NewIndex(client redis.UniversalClient, prefix string) *Index {
	return &Index{
		redis:  client,
		prefix: prefix,
	}
}

func (s *Index) key(userID string) string {
	return s.prefix + ":" + userID
}

// Add inserts token into the user's set of valid tokens.
func (s *Index) Add(ctx context.Context, userID, token string) error {
	if err := s.redis.SAdd(ctx, s.key(userID), token).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Remove deletes token from the user's set. Removing an absent member is a
// no-op and still succeeds.
func (s *Index) Remove(ctx context.Context, userID, token string) error {
	if err := s.redis.SRem(ctx, s.key(userID), token).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// RemoveAll clears the user's entire index entry, revoking every session.
func (s *Index) RemoveAll(ctx context.Context, userID string) error {
	if err := s.redis.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Replace clears the user's entry and reseeds it with a single token, in one
// transactional pipeline. This is the password-change revocation: every
// other session dies, the caller's survives.
func (s *Index) Replace(ctx context.Context, userID, token string) error {
	key := s.key(userID)
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.SAdd(ctx, key, token)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// IsMember reports whether token is currently valid for the user.
func (s *Index) IsMember(ctx context.Context, userID, token string) (bool, error) {
	ok, err := s.redis.SIsMember(ctx, s.key(userID), token).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return ok, nil
}

// Members returns the user's currently valid tokens.
func (s *Index) Members(ctx context.Context, userID string) ([]string, error) {
	tokens, err := s.redis.SMembers(ctx, s.key(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return tokens, nil
}

// Count returns the number of valid tokens for the user.
func (s *Index) Count(ctx context.Context, userID string) (int, error) {
	n, err := s.redis.SCard(ctx, s.key(userID)).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return int(n), nil
}

// Ping returns a point-in-time Redis availability check.
func (s *Index) Ping(ctx context.Context) error {
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}
