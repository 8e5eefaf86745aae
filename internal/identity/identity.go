// Package identity verifies bearer tokens issued by the external identity
// provider and turns them into a Principal.
package identity

import (
	"context"
	"errors"
)

// Principal is the authenticated caller.  Subject is the provider's stable
// user id and keys both user profiles and listing ownership.
type Principal struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
}

// Verifier checks a raw bearer token's signature and expiry.
type Verifier interface {
	Verify(ctx context.Context, raw string) (Principal, error)
}

// ErrNoSubject is returned for a signed token that names no user.
var ErrNoSubject = errors.New("token has no subject")
