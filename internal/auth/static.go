package auth

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/crhubottom/school-flow-project/internal/domain"
)

// StaticVerifier accepts pre-registered tokens plus tokens of the form
// "dev:<uid>:<displayName>:<email>". It exists for tests and local
// development where a real identity provider is unavailable; it must never
// be enabled in production.
type StaticVerifier struct {
	mu     sync.RWMutex
	tokens map[string]*domain.Principal
}

// NewStaticVerifier creates an empty static verifier.
func NewStaticVerifier() *StaticVerifier {
	return &StaticVerifier{tokens: make(map[string]*domain.Principal)}
}

// Register associates a token with a principal.
func (v *StaticVerifier) Register(token string, principal *domain.Principal) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.tokens[token] = principal
}

// Verify resolves a registered token, or parses a "dev:" token inline.
func (v *StaticVerifier) Verify(ctx context.Context, rawToken string) (*domain.Principal, error) {
	v.mu.RLock()
	p, ok := v.tokens[rawToken]
	v.mu.RUnlock()
	if ok {
		cp := *p
		return &cp, nil
	}

	if strings.HasPrefix(rawToken, "dev:") {
		parts := strings.SplitN(rawToken, ":", 4)
		if len(parts) >= 2 && parts[1] != "" {
			principal := &domain.Principal{UID: parts[1]}
			if len(parts) > 2 {
				principal.DisplayName = parts[2]
			}
			if len(parts) > 3 {
				principal.Email = parts[3]
			}
			return principal, nil
		}
	}

	return nil, fmt.Errorf("%w: unknown token", domain.ErrUnauthorized)
}
