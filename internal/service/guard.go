package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// AttemptGuard gates booking-flow re-entrancy: while one attempt for a
// (user, event) pair is in flight, further attempts are rejected.
type AttemptGuard interface {
	Acquire(ctx context.Context, userID, eventID uint) (bool, error)
	Release(ctx context.Context, userID, eventID uint)
}

const attemptGuardTTL = 2 * time.Minute

type RedisAttemptGuard struct {
	client *redis.Client
}

func NewRedisAttemptGuard(client *redis.Client) *RedisAttemptGuard {
	return &RedisAttemptGuard{
		client: client,
	}
}

func (g *RedisAttemptGuard) Acquire(ctx context.Context, userID, eventID uint) (bool, error) {
	ok, err := g.client.SetNX(ctx, guardKey(userID, eventID), 1, attemptGuardTTL).Result()
	if err != nil {
		return false, fmt.Errorf("g.client.SetNX -> %w", err)
	}

	return ok, nil
}

func (g *RedisAttemptGuard) Release(ctx context.Context, userID, eventID uint) {
	// Best effort, the TTL cleans up after a lost connection.
	g.client.Del(ctx, guardKey(userID, eventID))
}

func guardKey(userID, eventID uint) string {
	return fmt.Sprintf("booking-attempt:%d:%d", userID, eventID)
}

// LocalAttemptGuard is the in-process fallback used when no Redis URL
// is configured, and in tests.
type LocalAttemptGuard struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewLocalAttemptGuard() *LocalAttemptGuard {
	return &LocalAttemptGuard{
		inFlight: make(map[string]struct{}),
	}
}

func (g *LocalAttemptGuard) Acquire(_ context.Context, userID, eventID uint) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	key := guardKey(userID, eventID)
	if _, ok := g.inFlight[key]; ok {
		return false, nil
	}

	g.inFlight[key] = struct{}{}
	return true, nil
}

func (g *LocalAttemptGuard) Release(_ context.Context, userID, eventID uint) {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.inFlight, guardKey(userID, eventID))
}
