package testutil

import (
	"os"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// RedisOptions returns client options for integration tests. REDIS_TEST_ADDR
// points tests at a shared server; the default suits local development. DB 1
// keeps test keys away from any development data.
func RedisOptions() *redis.Options {
	redisAddr := os.Getenv("REDIS_TEST_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	return &redis.Options{
		Addr: redisAddr,
		DB:   1,
	}
}

// RedisClient returns a client built from RedisOptions.
func RedisClient() *redis.Client {
	return redis.NewClient(RedisOptions())
}

// MiniredisClient starts an in-process Redis server and returns a connected
// client. Both are torn down when the test finishes.
func MiniredisClient(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}
