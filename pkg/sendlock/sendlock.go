// Package sendlock guards against two operators sending the same bill
// concurrently from different sessions, using a Redis SETNX key with a TTL.
// The guard is advisory and best-effort: when Redis is unreachable the send
// proceeds unguarded, because the send log remains the authoritative record.
package sendlock

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultTTL bounds how long a crashed holder can block a row.
	DefaultTTL = 2 * time.Minute

	// keyPrefix namespaces lock keys in Redis.
	keyPrefix = "billmailer:sending:"
)

// Locker acquires per-(archive, account key) send locks.
type Locker struct {
	rdb *redis.Client
	ttl time.Duration
}

// New creates a Redis-backed locker.
func New(rdb *redis.Client) *Locker {
	return &Locker{
		rdb: rdb,
		ttl: DefaultTTL,
	}
}

// Acquire takes the lock for one (archive, account key) pair. ok=false means
// another holder has it; the caller must not start a provider call. The
// returned release function deletes the key and is safe to call once.
func (l *Locker) Acquire(ctx context.Context, archiveFilename, accountKey string) (func(), bool) {
	key := fmt.Sprintf("%s%s:%s", keyPrefix, archiveFilename, accountKey)

	// SET NX = set only if key does not exist. Returns true if the key was set.
	set, err := l.rdb.SetNX(ctx, key, 1, l.ttl).Result()
	if err != nil {
		log.Printf("[WARN] send lock unavailable, proceeding unguarded: %v", err)
		return func() {}, true
	}
	if !set {
		return nil, false
	}
	return func() {
		if err := l.rdb.Del(context.Background(), key).Err(); err != nil {
			log.Printf("[WARN] send lock release failed for %s: %v", key, err)
		}
	}, true
}

// Noop is used when no Redis URL is configured; every acquisition succeeds.
type Noop struct{}

func (Noop) Acquire(context.Context, string, string) (func(), bool) {
	return func() {}, true
}
