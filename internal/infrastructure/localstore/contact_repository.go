package localstore

import (
	"context"

	"github.com/google/uuid"

	"github.com/vermahardware/storefront/internal/core/domain"
	"github.com/vermahardware/storefront/internal/core/ports"
)

var _ ports.ContactRepository = (*ContactRepository)(nil)

// ContactRepository keeps inquiries under KeyContacts, newest first.
type ContactRepository struct {
	store *Store
}

func NewContactRepository(store *Store) *ContactRepository {
	return &ContactRepository{store: store}
}

func (r *ContactRepository) Create(_ context.Context, c *domain.Contact) (*domain.Contact, error) {
	created := *c
	created.ID = uuid.NewString()
	err := Update(r.store, KeyContacts, func(contacts *[]domain.Contact) error {
		*contacts = append([]domain.Contact{created}, *contacts...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *ContactRepository) List(_ context.Context) ([]domain.Contact, error) {
	contacts := []domain.Contact{}
	if _, err := r.store.Get(KeyContacts, &contacts); err != nil {
		return nil, err
	}
	return contacts, nil
}

func (r *ContactRepository) Delete(_ context.Context, id string) error {
	return Update(r.store, KeyContacts, func(contacts *[]domain.Contact) error {
		for i, c := range *contacts {
			if c.ID == id {
				*contacts = append((*contacts)[:i], (*contacts)[i+1:]...)
				return nil
			}
		}
		return domain.ErrContactNotFound
	})
}
