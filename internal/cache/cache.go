package cache

import (
	"context"
	"fmt"
	"log"
	"time"
)

// TTLs for the two cached resources. Lead lists change rarely enough to keep
// for an hour; dashboard analytics go stale faster.
const (
	LeadListTTL  = time.Hour
	AnalyticsTTL = 10 * time.Minute
)

// Store is a keyed cache with explicit TTLs. Values are opaque JSON blobs.
// The cache is never authoritative: everything in it can be rebuilt from the
// lead store.
type Store interface {
	// Get returns the cached value and whether the key was present.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// LeadListKey returns the cache key for an owner's full lead list.
func LeadListKey(userID string) string {
	return fmt.Sprintf("leads:all:%s", userID)
}

// AnalyticsKey returns the cache key for an owner's dashboard snapshot.
func AnalyticsKey(userID string) string {
	return fmt.Sprintf("analytics:dashboard:%s", userID)
}

// InvalidateOwner drops both of an owner's cache keys after a lead mutation.
// The two deletions are not atomic; a crash in between leaves one key stale
// until its TTL expires. Failures are retried once and then only logged: a
// cache problem must never fail the mutation that triggered it.
func InvalidateOwner(ctx context.Context, store Store, userID string) {
	keys := []string{LeadListKey(userID), AnalyticsKey(userID)}
	err := store.Del(ctx, keys...)
	if err != nil {
		err = store.Del(ctx, keys...)
	}
	if err != nil {
		log.Printf("cache: failed to invalidate keys for user %s: %v", userID, err)
	}
}
