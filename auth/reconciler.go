package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/Maxbrain0/echo_blog/model"
)

// ErrMissingSubject is returned when a provider did not identify the user.
var ErrMissingSubject = errors.New("auth: provider returned no subject id")

// ProviderUsers is the part of the store OAuth sign in needs.
type ProviderUsers interface {
	FindOrCreateByProvider(ctx context.Context, provider model.Provider, subject string) (*model.User, error)
}

// Reconciler maps a provider subject to a local user, creating the user on
// first sign in. It is shared by every provider.
type Reconciler struct {
	Users ProviderUsers
}

// Reconcile returns the user for (provider, subject). Calling it again with
// the same pair returns the same user.
func (r *Reconciler) Reconcile(ctx context.Context, provider model.Provider, subject string) (*model.User, error) {
	if _, err := provider.Field(); err != nil {
		return nil, err
	}
	if subject == "" {
		return nil, ErrMissingSubject
	}
	u, err := r.Users.FindOrCreateByProvider(ctx, provider, subject)
	if err != nil {
		return nil, fmt.Errorf("reconcile %s user: %w", provider, err)
	}
	return u, nil
}
