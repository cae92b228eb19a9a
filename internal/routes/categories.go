package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/walletapp/wallet_app/internal/category"
)

// RegisterCategoryRoutes wires category endpoints.
func RegisterCategoryRoutes(r fiber.Router, h *category.Handler) {
	r.Post("/categories", h.Create)
	r.Get("/categories", h.List)
}
