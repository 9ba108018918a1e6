package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/carewallet/carewallet/internal/access"
)

const localPrincipal = "principal"

// Authenticator resolves a bearer token into the calling principal.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (access.Principal, error)
}

// JWTAuth validates bearer access tokens and stores the principal on the
// request context.
func JWTAuth(authn Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authz := c.Get(fiber.HeaderAuthorization)
		if len(authz) < len("Bearer ") || !strings.EqualFold(authz[:len("Bearer ")], "bearer ") {
			return fiber.NewError(http.StatusUnauthorized, "missing bearer token")
		}
		token := strings.TrimSpace(authz[len("Bearer "):])
		principal, err := authn.Authenticate(c.UserContext(), token)
		if err != nil {
			return fiber.NewError(http.StatusUnauthorized, err.Error())
		}

		c.Locals(localPrincipal, principal)
		c.Locals("user_id", principal.UserID)
		return c.Next()
	}
}

// PrincipalFrom returns the principal stored by JWTAuth.
func PrincipalFrom(c *fiber.Ctx) (access.Principal, bool) {
	p, ok := c.Locals(localPrincipal).(access.Principal)
	return p, ok
}

// RequireCapability rejects callers whose role does not grant capability.
func RequireCapability(capability access.Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := PrincipalFrom(c)
		if !ok {
			return fiber.NewError(http.StatusUnauthorized, "unauthorized")
		}
		if err := p.Check(capability); err != nil {
			return fiber.NewError(http.StatusForbidden, err.Error())
		}
		return c.Next()
	}
}
