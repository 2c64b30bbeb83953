package ports

import "context"

// ViewHistoryStore keeps the capped recently-viewed product ids per user.
type ViewHistoryStore interface {
	Push(ctx context.Context, userID, productID string, limit int) error
	// Recent returns product ids, most recent first.
	Recent(ctx context.Context, userID string) ([]string, error)
}

// ViewEvent is a single product view by an authenticated user.
type ViewEvent struct {
	UserID    string
	ProductID string
}
