package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"github.com/vermahardware/storefront/internal/core/domain"
	"github.com/vermahardware/storefront/internal/core/ports"
)

func TestViewHistoryService_RecordAndRecent(t *testing.T) {
	products := &stubProductRepo{}
	for i := 1; i <= 12; i++ {
		products.products = append(products.products, domain.Product{ID: fmt.Sprintf("p-%d", i), Name: fmt.Sprintf("Item %d", i)})
	}
	svc := NewViewHistoryService(newStubViewStore(), products, zerolog.Nop())
	ctx := context.Background()

	for i := 1; i <= 12; i++ {
		if err := svc.Record(ctx, ports.ViewEvent{UserID: "u1", ProductID: fmt.Sprintf("p-%d", i)}); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}
	_ = svc.Record(ctx, ports.ViewEvent{UserID: "u1", ProductID: "p-5"})

	recent, err := svc.Recent(ctx, "u1")
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(recent) != domain.MaxRecentlyViewed {
		t.Fatalf("expected %d entries, got %d", domain.MaxRecentlyViewed, len(recent))
	}
	if recent[0].ID != "p-5" || recent[1].ID != "p-12" {
		t.Fatalf("unexpected order: %s, %s", recent[0].ID, recent[1].ID)
	}

	other, _ := svc.Recent(ctx, "u2")
	if len(other) != 0 {
		t.Fatalf("histories must be per user")
	}
}

func TestViewHistoryService_SkipsDeletedProducts(t *testing.T) {
	products := &stubProductRepo{products: []domain.Product{{ID: "a"}, {ID: "b"}}}
	svc := NewViewHistoryService(newStubViewStore(), products, zerolog.Nop())
	ctx := context.Background()

	_ = svc.Record(ctx, ports.ViewEvent{UserID: "u1", ProductID: "a"})
	_ = svc.Record(ctx, ports.ViewEvent{UserID: "u1", ProductID: "b"})
	_ = products.Delete(ctx, "a")

	recent, err := svc.Recent(ctx, "u1")
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(recent) != 1 || recent[0].ID != "b" {
		t.Fatalf("unexpected recent list %+v", recent)
	}
}

func TestViewHistoryService_RecordValidation(t *testing.T) {
	svc := NewViewHistoryService(newStubViewStore(), &stubProductRepo{}, zerolog.Nop())
	if err := svc.Record(context.Background(), ports.ViewEvent{UserID: "u1"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
