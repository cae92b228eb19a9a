package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/walletapp/wallet_app/internal/ledger"
	"github.com/walletapp/wallet_app/internal/transfer"
)

// RegisterTransferRoutes wires the transfer endpoint.
func RegisterTransferRoutes(r fiber.Router, h *transfer.Handler) {
	r.Post("/transfers", h.Create)
}

// RegisterHistoryRoutes wires the read-only transfer history endpoint.
func RegisterHistoryRoutes(r fiber.Router, h *ledger.HistoryHandler) {
	r.Get("/transfers/history/:userId", h.History)
}
