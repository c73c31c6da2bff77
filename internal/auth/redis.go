package auth

import (
	"context"       // Context for Redis operations
	"encoding/json" // JSON encoding/decoding
	"errors"
	"time"                           // Time durations
	"weight_tracker/internal/domain" // Session model

	"github.com/jonboulle/clockwork" // Clock for TTL calculation
	"github.com/redis/go-redis/v9"   // Redis client
)

// sessionKeyPrefix namespaces session keys in Redis
const sessionKeyPrefix = "session:"

// Ensure RedisSessions implements SessionRegistry
var _ SessionRegistry = (*RedisSessions)(nil)

// RedisSessions keeps sessions in Redis so they survive across server replicas.
// Expiry is delegated to Redis key TTLs.
type RedisSessions struct {
	rdb   *redis.Client
	clock clockwork.Clock
}

// NewRedisSessions creates a Redis-backed session registry
func NewRedisSessions(rdb *redis.Client, clock clockwork.Clock) *RedisSessions {
	return &RedisSessions{rdb: rdb, clock: clock}
}

// Save stores the session as JSON with a TTL matching its expiry
func (s *RedisSessions) Save(ctx context.Context, sess domain.Session) error {
	var ttl time.Duration // Zero TTL means no expiry
	if !sess.ExpiresAt.IsZero() {
		ttl = sess.ExpiresAt.Sub(s.clock.Now())
		if ttl <= 0 {
			return nil // Already expired, nothing to keep
		}
	}
	b, err := json.Marshal(sess) // Marshal value to JSON
	if err != nil {
		return err // Return error if marshaling fails
	}
	return s.rdb.Set(ctx, sessionKeyPrefix+sess.ID, b, ttl).Err() // Set value in Redis with TTL
}

// Lookup retrieves a session from Redis
func (s *RedisSessions) Lookup(ctx context.Context, id string) (domain.Session, error) {
	val, err := s.rdb.Get(ctx, sessionKeyPrefix+id).Result() // Get value from Redis
	if errors.Is(err, redis.Nil) {
		return domain.Session{}, ErrSessionNotFound // Key does not exist or expired
	} else if err != nil {
		return domain.Session{}, err // Other Redis error
	}
	var sess domain.Session
	if err := json.Unmarshal([]byte(val), &sess); err != nil {
		return domain.Session{}, err // Corrupt value
	}
	return sess, nil
}

// Revoke deletes a session key from Redis
func (s *RedisSessions) Revoke(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, sessionKeyPrefix+id).Err() // Delete key from Redis
}
