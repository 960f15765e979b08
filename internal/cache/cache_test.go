package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

type item struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

func newTestCache(t *testing.T, ttl time.Duration) (Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, "todo:test:", ttl, nil, nil), mr
}

func TestCacheSetGet(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	var got item
	found, err := c.Get(ctx, "1", &got)
	if err != nil {
		t.Fatalf("Get miss: %v", err)
	}
	if found {
		t.Fatalf("expected miss on empty cache")
	}

	if err := c.Set(ctx, "1", item{ID: 1, Title: "write tests"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if !mr.Exists("todo:test:1") {
		t.Fatalf("expected prefixed key in redis")
	}
	if ttl := mr.TTL("todo:test:1"); ttl != time.Minute {
		t.Fatalf("ttl: want=1m got=%v", ttl)
	}

	found, err = c.Get(ctx, "1", &got)
	if err != nil || !found {
		t.Fatalf("Get hit: found=%v err=%v", found, err)
	}
	if got.ID != 1 || got.Title != "write tests" {
		t.Fatalf("decoded value: %+v", got)
	}

	stats := c.Stats()
	if stats.Hits != 1 || stats.Misses != 1 || stats.Errors != 0 {
		t.Fatalf("stats: %+v", stats)
	}
}

func TestCacheDeleteAndExpiry(t *testing.T) {
	c, mr := newTestCache(t, 30*time.Second)
	ctx := context.Background()

	for _, k := range []string{"1", "2", "3"} {
		if err := c.Set(ctx, k, item{Title: k}); err != nil {
			t.Fatalf("Set %s: %v", k, err)
		}
	}
	if err := c.Delete(ctx, "1", "2"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	var got item
	if found, _ := c.Get(ctx, "1", &got); found {
		t.Fatalf("key 1 should be gone")
	}
	if found, _ := c.Get(ctx, "3", &got); !found {
		t.Fatalf("key 3 should survive")
	}

	mr.FastForward(time.Minute)
	if found, _ := c.Get(ctx, "3", &got); found {
		t.Fatalf("key 3 should have expired")
	}
}

func TestCacheGenerations(t *testing.T) {
	c, mr := newTestCache(t, 30*time.Second)
	ctx := context.Background()

	gen, err := c.Generation(ctx, "gen:1")
	if err != nil || gen != 0 {
		t.Fatalf("unset generation: gen=%d err=%v", gen, err)
	}
	for want := int64(1); want <= 2; want++ {
		got, err := c.Bump(ctx, "gen:1")
		if err != nil || got != want {
			t.Fatalf("Bump: want=%d got=%d err=%v", want, got, err)
		}
	}
	if gen, _ := c.Generation(ctx, "gen:1"); gen != 2 {
		t.Fatalf("generation after bumps: %d", gen)
	}
	mr.FastForward(time.Hour)
	if gen, _ := c.Generation(ctx, "gen:1"); gen != 2 {
		t.Fatalf("generation must outlive entry ttl, got %d", gen)
	}
}

func TestCacheUnreachable(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	mr.Close()

	var got item
	if _, err := c.Get(context.Background(), "1", &got); err == nil {
		t.Fatalf("expected error from closed redis")
	}
	if c.Stats().Errors != 1 {
		t.Fatalf("stats: %+v", c.Stats())
	}
}

func TestNoopCache(t *testing.T) {
	var c Cache = Noop{}
	if err := c.Set(context.Background(), "k", item{}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if found, err := c.Get(context.Background(), "k", &item{}); found || err != nil {
		t.Fatalf("Noop Get: found=%v err=%v", found, err)
	}
	if gen, err := c.Bump(context.Background(), "g"); gen != 0 || err != nil {
		t.Fatalf("Noop Bump: gen=%d err=%v", gen, err)
	}
}
