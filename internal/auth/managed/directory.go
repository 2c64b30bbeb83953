package managed

import (
	"context"
	"fmt"

	"github.com/vermahardware/storefront/internal/core/ports"
)

var _ ports.UserDirectory = (*Directory)(nil)

// Directory is the user directory of the managed variant. Deleting a user
// drops the profile and then the identity at the auth service.
type Directory struct {
	Profiles
	verifier *Verifier
}

func NewDirectory(profiles Profiles, verifier *Verifier) *Directory {
	return &Directory{Profiles: profiles, verifier: verifier}
}

// Delete removes the profile first, so a failed identity deletion still
// leaves an account that cannot sign in.
func (d *Directory) Delete(ctx context.Context, id string) error {
	if err := d.Profiles.Delete(ctx, id); err != nil {
		return err
	}
	if err := d.verifier.DeleteIdentity(ctx, id); err != nil {
		d.verifier.log.Error().Err(err).Str("identity_id", id).Msg("profile deleted but identity kept")
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
