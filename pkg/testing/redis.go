package testing

import (
	"context"
	"net"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
)

// SessionKeyPattern matches the login session keys written by the auth service.
const SessionKeyPattern = "liftlog-session||*"

// GetRedisClientAndCtx connects to the redis at REDIS_HOST:REDIS_PORT (default localhost:6379)
// and flushes the session keys it finds when the test ends. REDIS_PASS is used as password when set.
func GetRedisClientAndCtx(t *testing.T) (context.Context, *redis.Client) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)

	redisHost := os.Getenv("REDIS_HOST")
	if redisHost == "" {
		redisHost = "localhost"
	}
	redisPort := os.Getenv("REDIS_PORT")
	if redisPort == "" {
		redisPort = "6379"
	}
	addr := net.JoinHostPort(redisHost, redisPort)
	t.Logf("using redis: [%s]", addr)

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASS"),
		DB:       0, // use default DB
	})
	t.Cleanup(func() {
		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cleanupCancel()
		keys, err := rdb.Keys(cleanupCtx, SessionKeyPattern).Result()
		if err == nil && len(keys) > 0 {
			_ = rdb.Del(cleanupCtx, keys...).Err()
		}
		_ = rdb.Close()
	})

	pingRes, err := rdb.Ping(ctx).Result()
	require.NoError(t, err)
	t.Logf("redis ping res: %s", pingRes)

	return ctx, rdb
}
