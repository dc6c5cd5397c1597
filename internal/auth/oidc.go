package auth

import (
	"context"
	"fmt"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/crhubottom/school-flow-project/internal/domain"
)

// FirebaseIssuerURL returns the OIDC issuer for a Firebase project. Firebase
// ID tokens are standard OIDC tokens signed by the secure token service, so
// they can be verified with plain OIDC discovery.
func FirebaseIssuerURL(projectID string) string {
	return "https://securetoken.google.com/" + projectID
}

// OIDCVerifier validates ID tokens against an OIDC issuer.
type OIDCVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// oidcClaims are the claims extracted from a verified ID token.
type oidcClaims struct {
	Subject string `json:"sub"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture string `json:"picture"`
}

// NewOIDCVerifier creates a verifier with issuer discovery. For Firebase,
// audience is the project ID.
func NewOIDCVerifier(ctx context.Context, issuerURL, audience string) (*OIDCVerifier, error) {
	provider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC provider: %w", err)
	}

	verifier := provider.Verifier(&oidc.Config{
		ClientID: audience,
	})

	return &OIDCVerifier{verifier: verifier}, nil
}

// Verify validates the token signature, issuer, audience and expiry, and
// maps the claims onto a principal.
func (v *OIDCVerifier) Verify(ctx context.Context, rawToken string) (*domain.Principal, error) {
	idToken, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}

	var claims oidcClaims
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("%w: failed to parse claims: %v", domain.ErrUnauthorized, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: token has no subject", domain.ErrUnauthorized)
	}

	return &domain.Principal{
		UID:         claims.Subject,
		DisplayName: claims.Name,
		Email:       claims.Email,
		PhotoURL:    claims.Picture,
	}, nil
}
