package store

import (
	"context"
	"io"
	"sync"

	"github.com/vermahardware/storefront/internal/core/domain"
	"github.com/vermahardware/storefront/internal/core/ports"
)

type Contacts struct {
	svc   ports.ContactService
	actor ActorFunc

	mu       sync.RWMutex
	contacts []domain.Contact
}

func NewContacts(svc ports.ContactService, actor ActorFunc) *Contacts {
	return &Contacts{svc: svc, actor: actor, contacts: []domain.Contact{}}
}

// Load fetches all inquiries; staff only.
func (c *Contacts) Load(ctx context.Context) error {
	contacts, err := c.svc.List(ctx, c.actor())
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.contacts = contacts
	return nil
}

func (c *Contacts) Contacts() []domain.Contact {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]domain.Contact(nil), c.contacts...)
}

// Submit stores an inquiry. It is open to anonymous visitors.
func (c *Contacts) Submit(ctx context.Context, in ports.ContactInput) (*domain.Contact, error) {
	created, err := c.svc.Submit(ctx, in)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.contacts = append([]domain.Contact{*created}, c.contacts...)
	return created, nil
}

func (c *Contacts) Delete(ctx context.Context, id string) error {
	if err := c.svc.Delete(ctx, c.actor(), id); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.contacts {
		if c.contacts[i].ID == id {
			c.contacts = append(c.contacts[:i:i], c.contacts[i+1:]...)
			break
		}
	}
	return nil
}

// Export writes the CSV for all inquiries and returns the suggested filename.
func (c *Contacts) Export(ctx context.Context, w io.Writer, opts ports.ExportOptions) (string, error) {
	return c.svc.Export(ctx, c.actor(), w, opts)
}
