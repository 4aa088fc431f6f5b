package lock

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalTryLock(t *testing.T) {
	l := NewLocal()
	ctx := context.Background()

	unlock, err := l.TryLock(ctx)
	require.NoError(t, err)

	_, err = l.TryLock(ctx)
	assert.ErrorIs(t, err, ErrLocked, "持有期间不能再次获取")

	unlock()
	unlock2, err := l.TryLock(ctx)
	require.NoError(t, err, "释放后可以重新获取")
	unlock2()
}

// 需要本地 redis：TREND_TEST_REDIS=127.0.0.1:6379
func TestRedisTryLock(t *testing.T) {
	addr := os.Getenv("TREND_TEST_REDIS")
	if addr == "" {
		t.Skip("TREND_TEST_REDIS not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()
	ctx := context.Background()
	key := "weibo-trend:test:" + uuid.NewString()

	a := NewRedis(rdb, key, time.Minute)
	b := NewRedis(rdb, key, time.Minute)

	unlock, err := a.TryLock(ctx)
	require.NoError(t, err)
	_, err = b.TryLock(ctx)
	assert.ErrorIs(t, err, ErrLocked)

	unlock()
	unlockB, err := b.TryLock(ctx)
	require.NoError(t, err)
	// a 的释放函数不能删掉 b 持有的锁
	unlock()
	assert.Equal(t, int64(1), rdb.Exists(ctx, key).Val())
	unlockB()
	assert.Equal(t, int64(0), rdb.Exists(ctx, key).Val())
}
