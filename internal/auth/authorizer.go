package auth

import (
	"context"
	"fmt"

	"github.com/spec-kit/payroll-registry/internal/domain"
)

// ContextAuthorizer is the production authorization oracle: an identity is
// authorized when the request proved it with a valid token.
type ContextAuthorizer struct{}

// RequireAuth implements service.Authorizer.
func (ContextAuthorizer) RequireAuth(ctx context.Context, id domain.Identity) error {
	if PrincipalsFromContext(ctx).Has(id) {
		return nil
	}
	return fmt.Errorf("no proof of control for %s", id)
}
