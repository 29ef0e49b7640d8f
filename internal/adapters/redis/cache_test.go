package redisad_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	redisad "bizreview/internal/adapters/redis"
	"bizreview/internal/domain"
)

func newTestCache(t *testing.T) *redisad.Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	return redisad.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
}

func TestCache_RoundTrip(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	in := []domain.Place{{PlaceID: "p1", Name: "One", TotalReviews: 12}}
	if err := c.Set(ctx, "places:Lahore,+Pakistan:pharmacy", in, 60); err != nil {
		t.Fatalf("set: %v", err)
	}

	var out []domain.Place
	ok, err := c.Get(ctx, "places:Lahore,+Pakistan:pharmacy", &out)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if len(out) != 1 || out[0].PlaceID != "p1" || out[0].TotalReviews != 12 {
		t.Fatalf("unexpected value: %+v", out)
	}
}

func TestCache_MissAndDel(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	var out []domain.Place
	ok, err := c.Get(ctx, "absent", &out)
	if err != nil || ok {
		t.Fatalf("expected clean miss, ok=%v err=%v", ok, err)
	}

	if err := c.Set(ctx, "k", "v", 60); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := c.Del(ctx, "k"); err != nil {
		t.Fatalf("del: %v", err)
	}
	var s string
	if ok, _ := c.Get(ctx, "k", &s); ok {
		t.Fatalf("expected miss after del")
	}
}
