package middleware

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carewallet/carewallet/internal/access"
	"github.com/carewallet/carewallet/internal/identity"
)

type fakeAuthenticator map[string]access.Principal

func (f fakeAuthenticator) Authenticate(_ context.Context, token string) (access.Principal, error) {
	p, ok := f[token]
	if !ok {
		return access.Principal{}, errors.New("invalid token")
	}
	return p, nil
}

func TestJWTAuthAndRequire(t *testing.T) {
	authn := fakeAuthenticator{
		"patient-token": {UserID: "p1", Role: identity.RolePatient},
		"admin-token":   {UserID: "a1", Role: identity.RoleAdmin},
	}
	app := fiber.New()
	app.Post("/pay", JWTAuth(authn), RequireCapability(access.WalletPay), func(c *fiber.Ctx) error {
		p, _ := PrincipalFrom(c)
		return c.SendString(p.UserID)
	})

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", fiber.StatusUnauthorized},
		{"wrong scheme", "Basic abc", fiber.StatusUnauthorized},
		{"unknown token", "Bearer nope", fiber.StatusUnauthorized},
		{"forbidden role", "Bearer admin-token", fiber.StatusForbidden},
		{"allowed", "bearer patient-token", fiber.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(fiber.MethodPost, "/pay", nil)
			if tc.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tc.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}

func TestRequireWithoutPrincipal(t *testing.T) {
	app := fiber.New()
	app.Get("/x", RequireCapability(access.WalletView), func(c *fiber.Ctx) error { return nil })
	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/x", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
