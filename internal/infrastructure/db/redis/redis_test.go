package redis

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestClient(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, srv
}

func TestViewHistory_PushMovesToFront(t *testing.T) {
	client, _ := newTestClient(t)
	h := NewViewHistory(client)
	ctx := context.Background()

	for _, id := range []string{"p1", "p2", "p3", "p1"} {
		if err := h.Push(ctx, "u1", id, 10); err != nil {
			t.Fatalf("Push failed: %v", err)
		}
	}

	got, err := h.Recent(ctx, "u1")
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if strings.Join(got, ",") != "p1,p3,p2" {
		t.Fatalf("expected p1,p3,p2, got %v", got)
	}

	other, _ := h.Recent(ctx, "u2")
	if len(other) != 0 {
		t.Fatalf("histories must be per user, got %v", other)
	}
}

func TestViewHistory_CappedAtLimit(t *testing.T) {
	client, srv := newTestClient(t)
	h := NewViewHistory(client)
	ctx := context.Background()

	for i := 1; i <= 12; i++ {
		if err := h.Push(ctx, "u1", fmt.Sprintf("p%d", i), 0); err != nil {
			t.Fatalf("Push failed: %v", err)
		}
	}

	got, _ := h.Recent(ctx, "u1")
	if len(got) != 10 || got[0] != "p12" || got[9] != "p3" {
		t.Fatalf("expected the 10 newest views, got %v", got)
	}

	stored, err := srv.List("viewedProducts:u1")
	if err != nil || len(stored) != 10 {
		t.Fatalf("expected the list itself trimmed to 10, got %d (%v)", len(stored), err)
	}
}

func TestRevocationList(t *testing.T) {
	client, srv := newTestClient(t)
	l := NewRevocationList(client)
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	if err := l.Revoke(ctx, "tok-a", now.Add(time.Hour)); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}
	if err := l.Revoke(ctx, "tok-expired", now.Add(-time.Minute)); err != nil {
		t.Fatalf("Revoke of expired token failed: %v", err)
	}

	if revoked, _ := l.IsRevoked(ctx, "tok-a"); !revoked {
		t.Fatal("expected tok-a to be revoked")
	}
	if revoked, _ := l.IsRevoked(ctx, "tok-b"); revoked {
		t.Fatal("tok-b was never revoked")
	}
	if keys := srv.Keys(); len(keys) != 1 || strings.Contains(keys[0], "tok-a") {
		t.Fatalf("expected one hashed key, got %v", keys)
	}

	srv.FastForward(time.Hour + time.Second)
	if revoked, _ := l.IsRevoked(ctx, "tok-a"); revoked {
		t.Fatal("revocation must lapse with the token")
	}
}
