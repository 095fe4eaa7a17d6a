package blogauth

import (
	"context"
	"errors"
	"fmt"
)

func isNotFound(err error) bool { return errors.Is(err, ErrAccountNotFound) }

// ResolveCredentials checks a login identifier and raw secret against the
// account store. It returns [ErrInvalidCredentials] for an unknown
// identifier or a non-matching secret, and [ErrAccountDisabled] for a valid
// login against a disabled account. Callers exposed to untrusted clients
// should collapse the two; [Engine.Login] does.
func (e *Engine) ResolveCredentials(ctx context.Context, identifier, secret string) (Identity, error) {
	rec, err := e.store.FindByIdentifier(ctx, identifier)
	if err != nil {
		if isNotFound(err) {
			return Identity{}, ErrInvalidCredentials
		}
		return Identity{}, fmt.Errorf("account lookup: %w", err)
	}

	ok, err := e.hasher.Verify(secret, rec.PasswordHash)
	if err != nil || !ok {
		return Identity{}, ErrInvalidCredentials
	}

	if !rec.Enabled {
		return Identity{}, ErrAccountDisabled
	}

	return identityFromRecord(rec), nil
}

// ResolveSubject maps a verified token subject to its current identity.
// The enabled flag is carried through as-is; enforcing it is the caller's
// job so refresh and request authentication can report the rejection on
// their own terms.
func (e *Engine) ResolveSubject(ctx context.Context, subject string) (Identity, error) {
	rec, err := e.store.FindBySubject(ctx, subject)
	if err != nil {
		if isNotFound(err) {
			return Identity{}, ErrAccountNotFound
		}
		return Identity{}, fmt.Errorf("account lookup: %w", err)
	}
	return identityFromRecord(rec), nil
}

// identityFromRecord flattens an account row and its roles into a
// self-contained Identity value with no aliasing back into the store.
func identityFromRecord(rec AccountRecord) Identity {
	caps := make([]string, 0, len(rec.Roles))
	seen := make(map[string]struct{}, len(rec.Roles))
	for _, r := range rec.Roles {
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		caps = append(caps, r)
	}
	return Identity{
		PrincipalID:  rec.PrincipalID,
		DisplayName:  rec.DisplayName,
		Enabled:      rec.Enabled,
		Capabilities: caps,
	}
}
