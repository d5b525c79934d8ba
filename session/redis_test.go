package session

import (
	"context"
	"os"
	"testing"

	"clearance/portal/security"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *redis.Client) {
	t.Helper()

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("set REDIS_ADDR to run")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis not reachable: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	return NewRedisStore(client, security.NewCipher(testKey)), client
}

func TestRedisStoreLifecycle(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()
	id := uuid.NewString()

	if sess := store.Get(ctx, id); !sess.IsEmpty() {
		t.Fatalf("Expected empty session, got %+v", sess)
	}

	if err := store.Set(ctx, id, studentSession()); err != nil {
		t.Fatalf("Error saving session: %v", err)
	}

	sess := store.Get(ctx, id)
	if !sess.IsAuthenticated() || sess.RefreshToken != "refresh-456" {
		t.Errorf("Expected stored session to round trip, got %+v", sess)
	}

	if err := store.Clear(ctx, id); err != nil {
		t.Fatalf("Error clearing session: %v", err)
	}
	if sess := store.Get(ctx, id); !sess.IsEmpty() {
		t.Errorf("Expected empty session after clear, got %+v", sess)
	}
}

func TestRedisStoreToleratesGarbage(t *testing.T) {
	store, client := newTestRedisStore(t)
	ctx := context.Background()
	id := uuid.NewString()

	if err := client.Set(ctx, store.key(id), "undefined", 0).Err(); err != nil {
		t.Fatalf("Error writing garbage: %v", err)
	}
	t.Cleanup(func() { client.Del(ctx, store.key(id)) })

	if sess := store.Get(ctx, id); !sess.IsEmpty() {
		t.Errorf("Expected empty session for garbage value, got %+v", sess)
	}
}
