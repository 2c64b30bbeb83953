package localstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/vermahardware/storefront/internal/core/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "store.json"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return s
}

func TestStore_GetPutDelete(t *testing.T) {
	s := openTestStore(t)

	var v []string
	ok, err := s.Get("missing", &v)
	if err != nil || ok {
		t.Fatalf("expected absent key, got ok=%v err=%v", ok, err)
	}

	if err := s.Put("k", []string{"a", "b"}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	ok, err = s.Get("k", &v)
	if err != nil || !ok || len(v) != 2 {
		t.Fatalf("unexpected Get result ok=%v v=%v err=%v", ok, v, err)
	}

	// A second handle on the same file sees the write.
	other, _ := Open(s.Path())
	var again []string
	if ok, _ := other.Get("k", &again); !ok {
		t.Fatalf("second handle did not see the value")
	}

	if err := s.Delete("k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if ok, _ := s.Get("k", &v); ok {
		t.Fatalf("key still present after delete")
	}
	if err := s.Delete("k"); err != nil {
		t.Fatalf("deleting an absent key should not fail: %v", err)
	}
}

func TestStore_UpdateAbortsOnError(t *testing.T) {
	s := openTestStore(t)
	_ = s.Put("n", 1)

	boom := errors.New("boom")
	err := Update(s, "n", func(n *int) error {
		*n = 99
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	var n int
	_, _ = s.Get("n", &n)
	if n != 1 {
		t.Fatalf("expected value unchanged, got %d", n)
	}
}

func TestStore_UpdateAcrossHandles(t *testing.T) {
	first := openTestStore(t)
	second, err := Open(first.Path())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	const perHandle = 25
	var wg sync.WaitGroup
	for _, s := range []*Store{first, second} {
		wg.Add(1)
		go func(s *Store) {
			defer wg.Done()
			for i := 0; i < perHandle; i++ {
				if err := Update(s, "n", func(n *int) error { *n++; return nil }); err != nil {
					t.Errorf("Update failed: %v", err)
					return
				}
			}
		}(s)
	}
	wg.Wait()

	var n int
	if _, err := first.Get("n", &n); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if n != 2*perHandle {
		t.Fatalf("expected %d increments, got %d", 2*perHandle, n)
	}
}

func TestStore_CorruptFile(t *testing.T) {
	s := openTestStore(t)
	if err := os.WriteFile(s.Path(), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	var v any
	if _, err := s.Get("k", &v); err == nil {
		t.Fatalf("expected error for corrupt file")
	}
}

func TestSessionStore_RoundTrip(t *testing.T) {
	ss := NewSessionStore(openTestStore(t))
	ctx := context.Background()

	got, err := ss.Load(ctx)
	if err != nil || got != nil {
		t.Fatalf("expected no session, got %v %v", got, err)
	}

	session := domain.Session{
		User:      domain.User{ID: "u1", Username: "user", Role: domain.RoleUser, PasswordHash: "secret-hash"},
		Token:     "tkn",
		ExpiresAt: time.Date(2026, 1, 8, 0, 0, 0, 0, time.UTC),
	}
	if err := ss.Save(ctx, session); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err = ss.Load(ctx)
	if err != nil || got == nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.User.ID != "u1" || got.Token != "tkn" || got.User.Role != domain.RoleUser {
		t.Fatalf("unexpected session %+v", got)
	}
	if got.User.PasswordHash != "" {
		t.Fatalf("password hash must not be persisted")
	}

	if err := ss.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if got, _ := ss.Load(ctx); got != nil {
		t.Fatalf("expected no session after Clear")
	}
}
