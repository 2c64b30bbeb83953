package localstore

import (
	"context"

	"github.com/vermahardware/storefront/internal/core/domain"
	"github.com/vermahardware/storefront/internal/core/ports"
)

var _ ports.SessionStore = (*SessionStore)(nil)

// SessionStore keeps the single current session under KeyCurrentUser.
type SessionStore struct {
	store *Store
}

func NewSessionStore(store *Store) *SessionStore {
	return &SessionStore{store: store}
}

func (s *SessionStore) Save(_ context.Context, session domain.Session) error {
	session.User.PasswordHash = ""
	return s.store.Put(KeyCurrentUser, session)
}

func (s *SessionStore) Load(_ context.Context) (*domain.Session, error) {
	var session domain.Session
	ok, err := s.store.Get(KeyCurrentUser, &session)
	if err != nil || !ok {
		return nil, err
	}
	return &session, nil
}

func (s *SessionStore) Clear(_ context.Context) error {
	return s.store.Delete(KeyCurrentUser)
}
