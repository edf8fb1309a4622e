// Package suggestioncache provides a Redis-backed suggestion.EmittedStore,
// the distributed alternative to suggestion.MemoryEmittedStore for
// multi-instance deployments (wired when REDIS_URL is configured, the same
// way internal/service/ratelimiter is).
package suggestioncache

import (
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cvqa/retrieval-engine/internal/domain"
	"github.com/cvqa/retrieval-engine/internal/suggestion"
)

// ttl bounds how long a "seen" marker survives: long enough to cover a
// realistic conversation, short enough that abandoned sessions don't leak
// memory in Redis forever.
const ttl = 24 * time.Hour

// RedisEmittedStore implements suggestion.EmittedStore against Redis sets,
// one per session, so multiple server instances share one view of which
// suggestions a session has already seen.
type RedisEmittedStore struct {
	rdb *redis.Client
}

// New builds a RedisEmittedStore. rdb must not be nil.
func New(rdb *redis.Client) *RedisEmittedStore {
	return &RedisEmittedStore{rdb: rdb}
}

func key(sessionID string) string {
	return "suggest:seen:" + sessionID
}

// Seen reports whether suggestionID was already emitted in sessionID.
func (s *RedisEmittedStore) Seen(ctx domain.Context, sessionID, suggestionID string) (bool, error) {
	return s.rdb.SIsMember(ctx, key(sessionID), suggestionID).Result()
}

// MarkSeen records suggestionID as emitted in sessionID and refreshes the
// key's TTL.
func (s *RedisEmittedStore) MarkSeen(ctx domain.Context, sessionID, suggestionID string) error {
	k := key(sessionID)
	if err := s.rdb.SAdd(ctx, k, suggestionID).Err(); err != nil {
		return err
	}
	return s.rdb.Expire(ctx, k, ttl).Err()
}

var _ suggestion.EmittedStore = (*RedisEmittedStore)(nil)
