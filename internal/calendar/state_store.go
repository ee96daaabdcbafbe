package calendar

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrInvalidState is returned when an OAuth callback carries an unknown,
// expired or already used state value.
var ErrInvalidState = errors.New("calendar: invalid oauth state")

// OAuthStateTTL bounds how long an operator has to finish the consent screen.
const OAuthStateTTL = 10 * time.Minute

// StateStore tracks outstanding OAuth state values. Consume succeeds at most
// once per stored state.
type StateStore interface {
	Put(ctx context.Context, state string, ttl time.Duration) error
	Consume(ctx context.Context, state string) (bool, error)
}

// NewState returns a random state value.
func NewState() string {
	return uuid.NewString()
}

// RedisStateStore keeps states in Redis so any instance can finish the flow.
type RedisStateStore struct {
	client redis.Cmdable
	prefix string
}

func NewRedisStateStore(client redis.Cmdable) *RedisStateStore {
	if client == nil {
		panic("calendar: redis client required")
	}
	return &RedisStateStore{client: client, prefix: "calendar:oauth_state:"}
}

func (s *RedisStateStore) Put(ctx context.Context, state string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.prefix+state, "1", ttl).Err(); err != nil {
		return fmt.Errorf("calendar: store oauth state: %w", err)
	}
	return nil
}

func (s *RedisStateStore) Consume(ctx context.Context, state string) (bool, error) {
	if state == "" {
		return false, nil
	}
	_, err := s.client.GetDel(ctx, s.prefix+state).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("calendar: consume oauth state: %w", err)
	}
	return true, nil
}

// MemoryStateStore is a single-instance StateStore.
type MemoryStateStore struct {
	mu     sync.Mutex
	states map[string]time.Time
	now    func() time.Time
}

func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{states: make(map[string]time.Time), now: time.Now}
}

func (s *MemoryStateStore) Put(ctx context.Context, state string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, exp := range s.states {
		if now.After(exp) {
			delete(s.states, k)
		}
	}
	s.states[state] = now.Add(ttl)
	return nil
}

func (s *MemoryStateStore) Consume(ctx context.Context, state string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.states[state]
	if !ok {
		return false, nil
	}
	delete(s.states, state)
	return !s.now().After(exp), nil
}
