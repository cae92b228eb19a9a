package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/walletapp/wallet_app/internal/finance"
)

// RegisterFinanceRoutes wires income/expense endpoints.
func RegisterFinanceRoutes(r fiber.Router, h *finance.Handler) {
	r.Post("/finances", h.Record)
	r.Get("/finances/:userId", h.List)
}
