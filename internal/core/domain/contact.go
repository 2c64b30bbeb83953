package domain

import (
	"fmt"
	"strings"
	"time"
)

// Contact is an inquiry submitted through the contact form.
type Contact struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate requires a non-blank name, email and message.
func (c Contact) Validate() error {
	switch {
	case strings.TrimSpace(c.Name) == "":
		return fmt.Errorf("%w: name is required", ErrValidation)
	case strings.TrimSpace(c.Email) == "":
		return fmt.Errorf("%w: email is required", ErrValidation)
	case strings.TrimSpace(c.Message) == "":
		return fmt.Errorf("%w: message is required", ErrValidation)
	}
	return nil
}
