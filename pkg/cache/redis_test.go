package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func unreachableClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestRateLimiter_FailsOpen(t *testing.T) {
	client := unreachableClient()
	defer client.Close()

	limiter := NewRateLimiter(client, "login")
	for i := 0; i < 3; i++ {
		if !limiter.Allow(context.Background(), "ip:10.0.0.1", 1, time.Minute) {
			t.Fatalf("Expected request %d to be allowed when redis is down", i)
		}
	}
}

func TestIdempotencyStore_SurfacesErrors(t *testing.T) {
	client := unreachableClient()
	defer client.Close()

	store := NewIdempotencyStore(client)
	if _, err := store.Get(context.Background(), "k"); err == nil {
		t.Fatalf("Expected connection error from Get")
	}
	if err := store.Set(context.Background(), "k", "v", time.Minute); err == nil {
		t.Fatalf("Expected connection error from Set")
	}
}
