package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/walletapp/wallet_app/internal/user"
)

// RegisterUserRoutes wires user management endpoints.
func RegisterUserRoutes(r fiber.Router, h *user.Handler) {
	r.Post("/users", h.Register)
	r.Get("/users/:id", h.Get)
}
