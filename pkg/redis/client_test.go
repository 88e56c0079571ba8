package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := NewFromAddr(mr.Addr())
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestSetGetDel(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	key := client.RuleCacheKey("quantity", "franchise-1")
	if err := client.Set(ctx, key, "payload", time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	got, err := client.Get(ctx, key)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != "payload" {
		t.Fatalf("expected stored payload, got %q", got)
	}

	if err := client.Del(ctx, key); err != nil {
		t.Fatalf("del failed: %v", err)
	}
	if _, err := client.Get(ctx, key); err != Nil {
		t.Fatalf("expected Nil after delete, got %v", err)
	}
}

func TestIncr(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	key := client.CounterKey("estimates")
	for want := int64(1); want <= 3; want++ {
		got, err := client.Incr(ctx, key)
		if err != nil {
			t.Fatalf("incr failed: %v", err)
		}
		if got != want {
			t.Fatalf("counter = %d, want %d", got, want)
		}
	}
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{}
	if got := client.RuleCacheKey("quantity", "f1"); got != "coco:rules:quantity:f1" {
		t.Fatalf("unexpected rule cache key %s", got)
	}
	if got := client.CounterKey("estimates"); got != "coco:counter:estimates" {
		t.Fatalf("unexpected counter key %s", got)
	}
}

func TestUninitializedClient(t *testing.T) {
	var client *Client
	if err := client.Ping(context.Background()); err == nil {
		t.Fatal("expected error from nil client")
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close on nil client must be a no-op, got %v", err)
	}
}
