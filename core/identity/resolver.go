// Package identity reconciles the two keying schemes user records have lived
// under. Early accounts were stored under a separately generated profile id
// while the authentication layer issued its own id; later accounts use one id
// for both. Every place that needs "the id this user's records are keyed by"
// goes through Resolve so the fallback lives in exactly one spot.
package identity

import (
	"errors"
	"fmt"

	"CupBack/model"
	"CupBack/repository"
)

// ErrIdentityUnresolved is returned when no profile record can be tied to an
// authentication identity. Callers fall back to the auth id and degrade to an
// anonymous display rather than failing the operation.
var ErrIdentityUnresolved = errors.New("identity could not be resolved to a profile record")

// Resolver maps authentication identities to canonical profile ids.
type Resolver struct {
	users repository.UserRepository
}

// NewResolver creates a Resolver backed by the given user repository.
func NewResolver(users repository.UserRepository) *Resolver {
	return &Resolver{users: users}
}

// Resolve returns the canonical id for an authentication identity.
//
// Lookup order:
//  1. a profile record keyed directly by authID;
//  2. a profile record whose email equals the auth email, if exactly one
//     matches.
//
// Anything else is ErrIdentityUnresolved.
func (r *Resolver) Resolve(authID, email string) (string, error) {
	user, err := r.users.GetUserByID(authID)
	if err != nil {
		return "", fmt.Errorf("failed to look up profile by id: %w", err)
	}
	if user != nil {
		return user.ID, nil
	}

	if email != "" {
		matches, err := r.users.GetUsersByEmail(email)
		if err != nil {
			return "", fmt.Errorf("failed to look up profile by email: %w", err)
		}
		if len(matches) == 1 {
			return matches[0].ID, nil
		}
	}

	return "", fmt.Errorf("%w: auth id %s", ErrIdentityUnresolved, authID)
}

// ResolveUser is Resolve plus the profile record itself.
func (r *Resolver) ResolveUser(authID, email string) (*model.User, error) {
	id, err := r.Resolve(authID, email)
	if err != nil {
		return nil, err
	}
	user, err := r.users.GetUserByID(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load resolved profile %s: %w", id, err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: resolved id %s has no record", ErrIdentityUnresolved, id)
	}
	return user, nil
}

// AliasKeys returns the full equivalence class of keys the user's ledger rows
// may be stored under: the canonical id, the auth id when it differs, and the
// email for the oldest rows. Ledger and ranking queries must match against
// all of them, never the canonical id alone.
func AliasKeys(user *model.User) []string {
	keys := []string{user.ID}
	if user.AuthID != "" && user.AuthID != user.ID {
		keys = append(keys, user.AuthID)
	}
	if user.Email != "" {
		keys = append(keys, user.Email)
	}
	return keys
}
