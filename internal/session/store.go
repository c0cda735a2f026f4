// Package session implements the server-side session store. A session is an
// opaque random token mapped to a user id in Redis with a TTL; nothing else
// about the user is persisted in the store. Every request re-fetches the
// full user record by id, so a deleted account simply stops resolving.
package session

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/storefront/internal/utils"
)

// ErrNotFound is returned when a token does not resolve to a session, either
// because it never existed or because it expired.
var ErrNotFound = errors.New("session not found")

const keyPrefix = "sess:"

// Store persists sessions in Redis.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewStore builds a session store. ttl controls how long a session lives
// after creation; there is no sliding renewal.
func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	return &Store{rdb: rdb, ttl: ttl}
}

// TTL reports the configured session lifetime.
func (s *Store) TTL() time.Duration { return s.ttl }

// Create issues a new session for the user and returns its token.
func (s *Store) Create(ctx context.Context, userID uint64) (string, error) {
	token, err := utils.NewSessionToken()
	if err != nil {
		return "", err
	}
	if err := s.rdb.Set(ctx, keyPrefix+token, strconv.FormatUint(userID, 10), s.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// Resolve returns the user id stored under the token. Unknown or expired
// tokens yield ErrNotFound.
func (s *Store) Resolve(ctx context.Context, token string) (uint64, error) {
	if token == "" {
		return 0, ErrNotFound
	}
	val, err := s.rdb.Get(ctx, keyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		// A corrupt value is treated as no session rather than a hard error.
		return 0, ErrNotFound
	}
	return id, nil
}

// Destroy removes the session. Destroying a token that no longer exists is
// not an error; logout is idempotent.
func (s *Store) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.rdb.Del(ctx, keyPrefix+token).Err()
}
