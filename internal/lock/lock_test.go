package lock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"intervuai/backend/internal/apperr"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return mr, client
}

func TestRedisLockerExclusive(t *testing.T) {
	mr, rdb := setupTestRedis(t)
	l := NewRedisLocker(rdb, time.Minute)
	ctx := context.Background()

	release, err := l.Acquire(ctx, "iv1")
	if err != nil {
		t.Fatalf("first Acquire returned error: %v", err)
	}
	if !mr.Exists("intervuai:lock:iv1") {
		t.Fatal("expected lock key in redis")
	}

	if _, err := l.Acquire(ctx, "iv1"); !errors.Is(err, apperr.ErrSessionBusy) {
		t.Fatalf("expected ErrSessionBusy, got %v", err)
	}

	other, err := l.Acquire(ctx, "iv2")
	if err != nil {
		t.Fatalf("independent key should be free: %v", err)
	}
	other()

	release()
	if mr.Exists("intervuai:lock:iv1") {
		t.Fatal("expected lock key to be deleted on release")
	}
	again, err := l.Acquire(ctx, "iv1")
	if err != nil {
		t.Fatalf("Acquire after release returned error: %v", err)
	}
	again()
}

func TestRedisLockerReleaseKeepsForeignHolder(t *testing.T) {
	mr, rdb := setupTestRedis(t)
	l := NewRedisLocker(rdb, time.Second)

	release, err := l.Acquire(context.Background(), "iv1")
	if err != nil {
		t.Fatalf("Acquire returned error: %v", err)
	}

	// the lock expired and someone else took it
	mr.FastForward(2 * time.Second)
	mr.Set("intervuai:lock:iv1", "someone-else")

	release()
	if got, _ := mr.Get("intervuai:lock:iv1"); got != "someone-else" {
		t.Fatalf("release removed a lock it did not own, value now %q", got)
	}
}

func TestLocalLocker(t *testing.T) {
	l := NewLocalLocker()
	release, err := l.Acquire(context.Background(), "k")
	if err != nil {
		t.Fatalf("Acquire returned error: %v", err)
	}
	if _, err := l.Acquire(context.Background(), "k"); !errors.Is(err, apperr.ErrSessionBusy) {
		t.Fatalf("expected ErrSessionBusy, got %v", err)
	}
	release()
	release()
	if _, err := l.Acquire(context.Background(), "k"); err != nil {
		t.Fatalf("expected key to be free after release: %v", err)
	}
}
