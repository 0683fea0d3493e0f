package rediscache

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	htmlrender "github.com/porticus-lab/go-html-render"
)

var _ htmlrender.Cache = (*Cache)(nil)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := New(context.Background(), Config{URL: "redis://" + mr.Addr()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestCache_SetGet(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	want := []byte("%PDF-1.7 fake")
	if err := c.Set(ctx, "render:pdf:abc", want, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := c.Get(ctx, "render:pdf:abc")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("Get reported a miss after Set")
	}
	if !bytes.Equal(got, want) {
		t.Errorf("Get = %q, want %q", got, want)
	}
}

func TestCache_Miss(t *testing.T) {
	c, _ := newTestCache(t)

	got, ok, err := c.Get(context.Background(), "render:png:missing")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok || got != nil {
		t.Errorf("Get = (%q, %v), want miss", got, ok)
	}
}

func TestCache_Expiry(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v"), time.Second); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if ttl := mr.TTL("k"); ttl != time.Second {
		t.Errorf("TTL = %v, want 1s", ttl)
	}
	mr.FastForward(2 * time.Second)

	if _, ok, err := c.Get(ctx, "k"); err != nil || ok {
		t.Errorf("Get after expiry = (%v, %v), want miss", ok, err)
	}
}

func TestCache_NoExpiry(t *testing.T) {
	c, mr := newTestCache(t)

	if err := c.Set(context.Background(), "k", []byte("v"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if ttl := mr.TTL("k"); ttl != 0 {
		t.Errorf("TTL = %v, want none", ttl)
	}
}

func TestCache_ServerDown(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()

	if _, _, err := c.Get(context.Background(), "k"); err == nil {
		t.Error("Get with server down: expected error")
	}
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"bad scheme", "http://localhost:6379"},
		{"unreachable", "redis://127.0.0.1:1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if c, err := New(ctx, Config{URL: tt.url, Timeout: 500 * time.Millisecond}); err == nil {
				c.Close()
				t.Fatal("expected error")
			}
		})
	}
}

func TestNewFromClient(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), DB: 2})
	c := NewFromClient(client)
	t.Cleanup(func() { c.Close() })
	ctx := context.Background()

	if err := c.Set(ctx, "render:png:k", []byte("png"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	mr.Select(2)
	if got, err := mr.Get("render:png:k"); err != nil || got != "png" {
		t.Errorf("stored %q (%v) in the client's database, want \"png\"", got, err)
	}
	if _, ok, err := c.Get(ctx, "render:png:k"); err != nil || !ok {
		t.Errorf("Get = %v, %v", ok, err)
	}
}
