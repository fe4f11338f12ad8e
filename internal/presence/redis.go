// internal/presence/redis.go

package presence

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	userKeyPrefix = "presence:user:"
	onlineSetKey  = "presence:online"
)

// RedisStore shares presence across API instances. Each user has a sorted set
// of connection ids scored by lease expiry, so connections held by a crashed
// instance age out after ttl.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisStore creates a Redis-backed presence store
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, now: time.Now}
}

func userKey(userID string) string {
	return userKeyPrefix + userID
}

func (s *RedisStore) Connect(ctx context.Context, userID, connID string) error {
	return s.lease(ctx, userID, connID)
}

func (s *RedisStore) Refresh(ctx context.Context, userID, connID string) error {
	return s.lease(ctx, userID, connID)
}

func (s *RedisStore) lease(ctx context.Context, userID, connID string) error {
	expiry := s.now().Add(s.ttl)
	key := userKey(userID)

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAdd(ctx, key, &redis.Z{Score: float64(expiry.UnixMilli()), Member: connID})
		pipe.Expire(ctx, key, s.ttl)
		pipe.SAdd(ctx, onlineSetKey, userID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to record presence: %w", err)
	}
	return nil
}

func (s *RedisStore) Disconnect(ctx context.Context, userID, connID string) error {
	key := userKey(userID)
	if err := s.client.ZRem(ctx, key, connID).Err(); err != nil {
		return fmt.Errorf("failed to remove connection: %w", err)
	}

	online, err := s.IsOnline(ctx, userID)
	if err != nil {
		return err
	}
	if !online {
		if err := s.client.SRem(ctx, onlineSetKey, userID).Err(); err != nil {
			return fmt.Errorf("failed to update online set: %w", err)
		}
	}
	return nil
}

// IsOnline drops expired leases before counting the live ones
func (s *RedisStore) IsOnline(ctx context.Context, userID string) (bool, error) {
	key := userKey(userID)
	cutoff := strconv.FormatInt(s.now().UnixMilli(), 10)

	var card *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, key, "-inf", "("+cutoff)
		card = pipe.ZCard(ctx, key)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to read presence: %w", err)
	}
	return card.Val() > 0, nil
}

func (s *RedisStore) OnlineUsers(ctx context.Context) ([]string, error) {
	members, err := s.client.SMembers(ctx, onlineSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list online users: %w", err)
	}

	users := make([]string, 0, len(members))
	for _, id := range members {
		online, err := s.IsOnline(ctx, id)
		if err != nil {
			return nil, err
		}
		if online {
			users = append(users, id)
			continue
		}
		s.client.SRem(ctx, onlineSetKey, id)
	}
	sort.Strings(users)
	return users, nil
}
