package wallet

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes wallet HTTP endpoints.
type Handler struct {
	store           Store
	defaultCurrency string
}

// NewHandler builds a wallet HTTP handler.
func NewHandler(store Store, defaultCurrency string) *Handler {
	return &Handler{store: store, defaultCurrency: defaultCurrency}
}

type createRequest struct {
	UserID   string `json:"user_id"`
	Currency string `json:"currency"`
}

type walletResponse struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	Currency string `json:"currency"`
	Balance  int64  `json:"balance"`
}

// FindOrCreate provisions the wallet for (user, currency), returning the
// existing one when already present.
func (h *Handler) FindOrCreate(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.UserID == "" {
		return fiber.NewError(http.StatusBadRequest, "user_id is required")
	}
	if req.Currency == "" {
		req.Currency = h.defaultCurrency
	}

	w, err := h.store.FindOrCreate(c.UserContext(), req.UserID, req.Currency)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.Status(http.StatusCreated).JSON(walletResponse{
		ID:       w.ID,
		UserID:   w.UserID,
		Currency: w.Currency,
		Balance:  w.Balance,
	})
}

// Balance returns the wallet balance for a user.
func (h *Handler) Balance(c *fiber.Ctx) error {
	userID := c.Params("userId")
	currency := c.Query("currency", h.defaultCurrency)

	w, err := h.store.ByUser(c.UserContext(), userID, currency)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, "wallet not found")
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"wallet_id": w.ID,
		"user_id":   w.UserID,
		"currency":  w.Currency,
		"balance":   w.Balance,
		"as_of":     w.UpdatedAt,
	})
}
