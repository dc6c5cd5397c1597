// Package auth verifies identity-provider tokens and produces the principal
// acting on each request. Sign-in itself happens in the browser against the
// identity provider; this package only validates the resulting ID tokens.
package auth

import (
	"context"

	"github.com/crhubottom/school-flow-project/internal/domain"
)

// Verifier validates a raw bearer token and returns the principal it
// represents. Implementations must return domain.ErrUnauthorized (possibly
// wrapped) for any token that does not verify.
type Verifier interface {
	Verify(ctx context.Context, rawToken string) (*domain.Principal, error)
}
