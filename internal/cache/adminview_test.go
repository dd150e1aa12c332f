package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/carepulse/intake-platform/pkg/logging"
)

func newTestCache(t *testing.T) (*AdminView, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewAdminViewWithClient(client, time.Minute, logging.Default()), mr
}

func TestGetViewMissReturnsNil(t *testing.T) {
	c, _ := newTestCache(t)

	body, err := c.GetView(context.Background(), "/admin")
	if err != nil {
		t.Fatalf("GetView returned error: %v", err)
	}
	if body != nil {
		t.Fatalf("expected miss, got %q", body)
	}
}

func TestSetViewThenGetView(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	payload := []byte(`{"totalCount":3}`)
	if err := c.SetView(ctx, "/admin", payload); err != nil {
		t.Fatalf("SetView returned error: %v", err)
	}

	body, err := c.GetView(ctx, "/admin")
	if err != nil {
		t.Fatalf("GetView returned error: %v", err)
	}
	if string(body) != string(payload) {
		t.Fatalf("expected cached payload, got %q", body)
	}

	if !mr.Exists("views:/admin") {
		t.Fatal("expected path-scoped key views:/admin")
	}
}

func TestSetViewExpires(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	if err := c.SetView(ctx, "/admin", []byte("stale")); err != nil {
		t.Fatalf("SetView returned error: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	body, err := c.GetView(ctx, "/admin")
	if err != nil {
		t.Fatalf("GetView returned error: %v", err)
	}
	if body != nil {
		t.Fatalf("expected expired entry, got %q", body)
	}
}

func TestRevalidateDropsEntry(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	if err := c.SetView(ctx, "/admin", []byte("old")); err != nil {
		t.Fatalf("SetView returned error: %v", err)
	}
	if err := c.Revalidate(ctx, "/admin"); err != nil {
		t.Fatalf("Revalidate returned error: %v", err)
	}
	if mr.Exists("views:/admin") {
		t.Fatal("expected key to be deleted")
	}

	body, err := c.GetView(ctx, "/admin")
	if err != nil {
		t.Fatalf("GetView returned error: %v", err)
	}
	if body != nil {
		t.Fatalf("expected miss after revalidate, got %q", body)
	}
}

func TestNilCacheIsNoOp(t *testing.T) {
	var c *AdminView
	ctx := context.Background()
	if _, err := c.GetView(ctx, "/admin"); err != nil {
		t.Fatalf("nil GetView returned error: %v", err)
	}
	if err := c.SetView(ctx, "/admin", []byte("x")); err != nil {
		t.Fatalf("nil SetView returned error: %v", err)
	}
	if err := c.Revalidate(ctx, "/admin"); err != nil {
		t.Fatalf("nil Revalidate returned error: %v", err)
	}
}

func TestNewAdminViewWithoutAddr(t *testing.T) {
	if c := NewAdminView(Options{}, logging.Default()); c != nil {
		t.Fatal("expected nil cache when no address configured")
	}
}
