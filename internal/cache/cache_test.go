package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

func setupRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
	return mr
}

func TestAside_CachesLoadedValue(t *testing.T) {
	mr := setupRedis(t)
	ctx := context.Background()

	var calls int32
	var first, second payload
	load := func(dest *payload) func() error {
		return func() error {
			atomic.AddInt32(&calls, 1)
			*dest = payload{ID: 1, Title: "How to implement authentication in React?"}
			return nil
		}
	}

	require.NoError(t, Aside(ctx, QuestionKey(1), &first, QuestionTTL, load(&first)))
	require.NoError(t, Aside(ctx, QuestionKey(1), &second, QuestionTTL, load(&second)))

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.True(t, mr.Exists("question:1"))
	assert.Equal(t, QuestionTTL, mr.TTL("question:1"))

	InvalidateQuestion(ctx, 1)
	assert.False(t, mr.Exists("question:1"))
}

func TestAside_LoadErrorIsNotCached(t *testing.T) {
	mr := setupRedis(t)

	var count int64
	err := Aside(context.Background(), UnreadCountKey(3), &count, UnreadCountTTL, func() error {
		return errors.New("db down")
	})
	require.Error(t, err)
	assert.False(t, mr.Exists("notifications:unread:3"))
}

func TestAside_CorruptEntryIsReloaded(t *testing.T) {
	mr := setupRedis(t)
	require.NoError(t, mr.Set("user:4", "{not json"))

	var got payload
	err := Aside(context.Background(), UserKey(4), &got, UserTTL, func() error {
		got = payload{ID: 4}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, uint(4), got.ID)
}

func TestAside_WithoutRedisCallsLoader(t *testing.T) {
	SetClient(nil)

	var calls int32
	for i := 0; i < 3; i++ {
		var v int
		err := Aside(context.Background(), "question:9", &v, QuestionTTL, func() error {
			atomic.AddInt32(&calls, 1)
			v = 9
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 9, v)
	}
	assert.Equal(t, int32(3), calls)
}

func TestAside_ConcurrentMissesShareLoad(t *testing.T) {
	setupRedis(t)

	var calls int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var v int
			err := Aside(context.Background(), "question:42", &v, QuestionTTL, func() error {
				atomic.AddInt32(&calls, 1)
				<-release
				v = 42
				return nil
			})
			assert.NoError(t, err)
			assert.Equal(t, 42, v)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.LessOrEqual(t, atomic.LoadInt32(&calls), int32(8))
	assert.GreaterOrEqual(t, atomic.LoadInt32(&calls), int32(1))
}

func TestRevokeToken(t *testing.T) {
	mr := setupRedis(t)
	ctx := context.Background()

	require.NoError(t, RevokeToken(ctx, "abc", time.Now().Add(time.Hour)))
	assert.True(t, IsRevoked(ctx, "abc"))
	assert.False(t, IsRevoked(ctx, "other"))
	assert.True(t, mr.Exists("blacklist:abc"))

	require.NoError(t, RevokeToken(ctx, "expired", time.Now().Add(-time.Minute)))
	assert.False(t, IsRevoked(ctx, "expired"))
}

func TestRevokeToken_NoRedis(t *testing.T) {
	SetClient(nil)
	assert.NoError(t, RevokeToken(context.Background(), "abc", time.Now().Add(time.Hour)))
	assert.False(t, IsRevoked(context.Background(), "abc"))
}

func TestKeyFamily(t *testing.T) {
	assert.Equal(t, "notifications", keyFamily(UnreadCountKey(1)))
	assert.Equal(t, "plain", keyFamily("plain"))
}
