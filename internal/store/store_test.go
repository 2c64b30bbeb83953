package store

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/vermahardware/storefront/internal/core/domain"
	"github.com/vermahardware/storefront/internal/core/ports"
	"github.com/vermahardware/storefront/internal/core/service"
	"github.com/vermahardware/storefront/internal/infrastructure/localstore"
)

var (
	staffUser = &domain.User{ID: "a1", Username: "admin", Role: domain.RoleAdmin}
	plainUser = &domain.User{ID: "u1", Username: "user", Role: domain.RoleUser}
)

func openStore(t *testing.T) *localstore.Store {
	t.Helper()
	s, err := localstore.Open(filepath.Join(t.TempDir(), "store.json"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return s
}

func actorOf(u **domain.User) ActorFunc {
	return func() *domain.User { return *u }
}

func newCatalog(t *testing.T, current **domain.User) *Catalog {
	t.Helper()
	repo := localstore.NewProductRepository(openStore(t))
	return NewCatalog(service.NewCatalogService(repo, zerolog.Nop()), actorOf(current))
}

func TestCatalog_CreateAppearsFirstThenDelete(t *testing.T) {
	current := staffUser
	cat := newCatalog(t, &current)
	ctx := context.Background()

	if _, err := cat.Create(ctx, ports.ProductInput{Name: "Nails", Price: 2, Category: "Fasteners"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	hammer, err := cat.Create(ctx, ports.ProductInput{Name: "Hammer", Price: 12, Category: "Tools"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	products := cat.Products()
	if len(products) != 2 || products[0].Name != "Hammer" {
		t.Fatalf("expected Hammer first, got %+v", products)
	}
	if cats := cat.Categories(); len(cats) != 2 || cats[0] != "Tools" {
		t.Fatalf("unexpected categories %v", cats)
	}

	if err := cat.Delete(ctx, hammer.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	for _, p := range cat.Products() {
		if p.ID == hammer.ID {
			t.Fatalf("deleted product still cached")
		}
	}
	if cats := cat.Categories(); len(cats) != 1 || cats[0] != "Fasteners" {
		t.Fatalf("categories not recomputed: %v", cats)
	}

	// A fresh load agrees with the cache.
	if err := cat.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(cat.Products()) != 1 {
		t.Fatalf("expected 1 product after reload")
	}
}

func TestCatalog_UpdateReplacesInPlace(t *testing.T) {
	current := staffUser
	cat := newCatalog(t, &current)
	ctx := context.Background()

	first, _ := cat.Create(ctx, ports.ProductInput{Name: "Level", Price: 15, Category: "Tools"})
	_, _ = cat.Create(ctx, ports.ProductInput{Name: "Paint", Price: 20, Category: "Paint"})

	price := int64(18)
	if _, err := cat.Update(ctx, first.ID, domain.ProductPatch{Price: &price}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	products := cat.Products()
	if products[1].ID != first.ID || products[1].Price != 18 {
		t.Fatalf("expected in-place update, got %+v", products)
	}
	if got := cat.ByCategory("Tools"); len(got) != 1 {
		t.Fatalf("expected 1 tool, got %d", len(got))
	}
}

func TestCatalog_FailureLeavesCacheUnchanged(t *testing.T) {
	current := staffUser
	cat := newCatalog(t, &current)
	ctx := context.Background()
	p, _ := cat.Create(ctx, ports.ProductInput{Name: "Saw", Price: 30, Category: "Tools"})

	current = plainUser
	if _, err := cat.Create(ctx, ports.ProductInput{Name: "Drill", Price: 90, Category: "Tools"}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := cat.Delete(ctx, p.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if len(cat.Products()) != 1 {
		t.Fatalf("cache changed after failed mutations")
	}

	current = staffUser
	if err := cat.Delete(ctx, "missing"); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
	if len(cat.Products()) != 1 {
		t.Fatalf("cache changed after failed delete")
	}
}

func TestContacts_SubmitLoadExport(t *testing.T) {
	var current *domain.User
	repo := localstore.NewContactRepository(openStore(t))
	contacts := NewContacts(service.NewContactService(repo, zerolog.Nop()), actorOf(&current))
	ctx := context.Background()

	if _, err := contacts.Submit(ctx, ports.ContactInput{Name: "Ravi", Email: "r@example.com", Message: "Hinges?"}); err != nil {
		t.Fatalf("anonymous submit failed: %v", err)
	}
	if err := contacts.Load(ctx); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}

	current = staffUser
	if err := contacts.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	list := contacts.Contacts()
	if len(list) != 1 {
		t.Fatalf("expected 1 contact, got %d", len(list))
	}

	var buf bytes.Buffer
	name, err := contacts.Export(ctx, &buf, ports.ExportOptions{})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if !strings.HasSuffix(name, ".csv") || strings.Count(buf.String(), "\n") != 1 {
		t.Fatalf("unexpected export %q %q", name, buf.String())
	}

	if err := contacts.Delete(ctx, list[0].ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if len(contacts.Contacts()) != 0 {
		t.Fatalf("expected empty cache after delete")
	}
}
