package identity

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/carewallet/carewallet/internal/validation"
)

// Handler exposes identity endpoints.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler constructs an identity HTTP handler.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	FullName string `json:"full_name" validate:"required,max=120"`
	Role     string `json:"role" validate:"required,oneof=patient doctor"`
}

type userResponse struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     Role   `json:"role"`
	WalletID string `json:"wallet_id,omitempty"`
}

// Register onboards a patient or doctor and provisions their wallet. Admin
// accounts are only created through the bootstrap path.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := validation.Struct(req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	user, walletID, err := h.service.Register(c.UserContext(), Registration{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Role:     Role(req.Role),
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrUserExists):
			return fiber.NewError(http.StatusConflict, err.Error())
		case errors.Is(err, ErrInvalidRegistration):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
		if h.logger != nil {
			h.logger.Error("identity.register failed", slog.String("error", err.Error()))
		}
		return fiber.NewError(http.StatusInternalServerError, "internal server error")
	}

	if h.logger != nil {
		h.logger.Info("identity.register completed",
			slog.String("user_id", user.ID),
			slog.String("role", string(user.Role)),
			slog.String("wallet_id", walletID),
		)
	}

	return c.Status(http.StatusCreated).JSON(userResponse{
		UserID:   user.ID,
		Email:    user.Email,
		FullName: user.FullName,
		Role:     user.Role,
		WalletID: walletID,
	})
}
