package lease

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func TestConnect_InvalidURL(t *testing.T) {
	_, err := Connect(context.Background(), "http://not-redis")
	assert.Error(t, err)
}

func TestConnect_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := Connect(ctx, "redis://127.0.0.1:1/0")
	assert.Error(t, err)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "localfeed:lease:source:42", key(42))
}

func TestRedis_PingUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	r := NewRedis(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1}))
	defer func() { _ = r.Close() }()

	assert.Error(t, r.Ping(ctx))
	_, _, err := r.TryAcquire(ctx, 1, time.Minute)
	assert.Error(t, err)
}
