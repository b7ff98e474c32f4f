package auth

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/payroll-registry/internal/domain"
	apperrors "github.com/spec-kit/payroll-registry/pkg/util/errorutil"
)

// CosignerHeader carries a second bearer token, used when an operation needs
// consent from an identity other than the caller (ownership transfer).
const CosignerHeader = "X-Cosigner-Authorization"

type principalsKey struct{}

// Principals is the set of identities the current request has proven.
type Principals []domain.Identity

// Has reports whether id is among the proven identities.
func (p Principals) Has(id domain.Identity) bool {
	for _, candidate := range p {
		if candidate == id {
			return true
		}
	}
	return false
}

// WithPrincipals returns ctx carrying p.
func WithPrincipals(ctx context.Context, p Principals) context.Context {
	return context.WithValue(ctx, principalsKey{}, p)
}

// PrincipalsFromContext returns the identities proven for the request.
func PrincipalsFromContext(ctx context.Context) Principals {
	p, _ := ctx.Value(principalsKey{}).(Principals)
	return p
}

// AuthMiddleware validates bearer tokens and records the proven identities on
// the request's user context.
type AuthMiddleware struct {
	tokens *TokenManager
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Handle attaches principals from Authorization and X-Cosigner-Authorization.
// Missing headers are fine here; the registry's authorization check rejects
// the call later. Malformed or invalid tokens are rejected immediately.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	var principals Principals
	for _, header := range []string{fiber.HeaderAuthorization, CosignerHeader} {
		value := c.Get(header)
		if value == "" {
			continue
		}
		id, err := m.parseBearer(value)
		if err != nil {
			return err
		}
		principals = append(principals, id)
	}

	if len(principals) > 0 {
		c.SetUserContext(WithPrincipals(c.UserContext(), principals))
	}
	return c.Next()
}

func (m *AuthMiddleware) parseBearer(value string) (domain.Identity, error) {
	parts := strings.SplitN(value, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", apperrors.NewUnauthorized("invalid authorization header")
	}
	id, err := m.tokens.ParseToken(strings.TrimSpace(parts[1]))
	if err != nil {
		return "", apperrors.NewUnauthorized("invalid token")
	}
	return id, nil
}
