package routes

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/carewallet/carewallet/internal/apierror"
	"github.com/carewallet/carewallet/internal/auth"
	"github.com/carewallet/carewallet/internal/identity"
	"github.com/carewallet/carewallet/internal/middleware"
)

// RegisterAuthRoutes wires the public authentication endpoints.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, rateLimiter fiber.Handler) {
	group := r.Group("/auth")
	if rateLimiter != nil {
		group.Post("/login", rateLimiter, h.Login)
	} else {
		group.Post("/login", h.Login)
	}
	group.Post("/refresh", h.Refresh)
}

// RegisterSessionRoutes wires endpoints that act on the caller's own session.
func RegisterSessionRoutes(r fiber.Router, h *auth.Handler, ids *identity.Service) {
	r.Post("/auth/logout", h.Logout)
	r.Get("/me", func(c *fiber.Ctx) error {
		p, _ := middleware.PrincipalFrom(c)
		user, err := ids.Get(c.UserContext(), p.UserID)
		if err != nil {
			return apierror.FromLedger(err)
		}
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"success":    true,
			"user_id":    user.ID,
			"email":      user.Email,
			"full_name":  user.FullName,
			"role":       user.Role,
			"created_at": user.CreatedAt,
			"last_login": user.LastLogin,
		})
	})
}
