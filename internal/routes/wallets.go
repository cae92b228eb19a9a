package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/walletapp/wallet_app/internal/wallet"
)

// RegisterWalletRoutes wires wallet-related endpoints.
func RegisterWalletRoutes(r fiber.Router, h *wallet.Handler) {
	r.Post("/wallets", h.FindOrCreate)
	r.Get("/wallets/:userId/balance", h.Balance)
}
