package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"stackit/internal/middleware"
	"stackit/internal/observability"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

var group singleflight.Group

// Aside fills dest from the JSON cached at key. On a miss it runs fetch, which
// must populate dest, and stores the result for ttl. Concurrent misses on one
// key share a single fetch. Cache failures never fail the call.
func Aside(ctx context.Context, key string, dest interface{}, ttl time.Duration, fetch func() error) error {
	family := keyFamily(key)
	if client == nil {
		observability.CacheLookups.WithLabelValues(family, "bypass").Inc()
		return fetch()
	}

	raw, err := client.Get(ctx, key).Bytes()
	if err == nil {
		if jsonErr := json.Unmarshal(raw, dest); jsonErr == nil {
			observability.CacheLookups.WithLabelValues(family, "hit").Inc()
			return nil
		}
		client.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		middleware.Logger.WarnContext(ctx, "cache read failed", "key", key, "error", err)
	}
	observability.CacheLookups.WithLabelValues(family, "miss").Inc()

	leader := false
	v, err, shared := group.Do(key, func() (interface{}, error) {
		leader = true
		if fetchErr := fetch(); fetchErr != nil {
			return nil, fetchErr
		}
		payload, mErr := json.Marshal(dest)
		if mErr != nil {
			return nil, nil
		}
		if setErr := client.Set(ctx, key, payload, ttl).Err(); setErr != nil {
			middleware.Logger.WarnContext(ctx, "cache write failed", "key", key, "error", setErr)
		}
		return payload, nil
	})
	if leader {
		return err
	}
	if err != nil {
		return err
	}
	payload, _ := v.([]byte)
	if !shared || payload == nil {
		return fetch()
	}
	return json.Unmarshal(payload, dest)
}

func keyFamily(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return key
}
