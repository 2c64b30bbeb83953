package localstore

import (
	"context"

	"github.com/vermahardware/storefront/internal/core/domain"
	"github.com/vermahardware/storefront/internal/core/ports"
)

var _ ports.ViewHistoryStore = (*ViewHistory)(nil)

// ViewHistory keeps recently viewed product ids under viewedProducts_<id>.
type ViewHistory struct {
	store *Store
}

func NewViewHistory(store *Store) *ViewHistory {
	return &ViewHistory{store: store}
}

func (v *ViewHistory) Push(_ context.Context, userID, productID string, limit int) error {
	return Update(v.store, ViewedProductsKey(userID), func(ids *[]string) error {
		*ids = domain.PushRecent(*ids, productID, limit)
		return nil
	})
}

func (v *ViewHistory) Recent(_ context.Context, userID string) ([]string, error) {
	ids := []string{}
	if _, err := v.store.Get(ViewedProductsKey(userID), &ids); err != nil {
		return nil, err
	}
	return ids, nil
}
