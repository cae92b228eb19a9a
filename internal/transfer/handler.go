package transfer

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes the transfer endpoint.
type Handler struct {
	engine *Engine
	// debugErrors exposes internal error detail in 5xx responses.
	debugErrors bool
}

// NewHandler builds a transfer HTTP handler.
func NewHandler(engine *Engine, debugErrors bool) *Handler {
	return &Handler{engine: engine, debugErrors: debugErrors}
}

type transferRequest struct {
	FromUserID     string `json:"fromUserId"`
	ToUserID       string `json:"toUserId"`
	Currency       string `json:"currency"`
	Amount         int64  `json:"amount"`
	IdempotencyKey string `json:"idempotencyKey"`
}

type transferResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	TransferID string `json:"transferId"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Error   string `json:"error"`
	Detail  string `json:"detail,omitempty"`
}

// Create processes a wallet-to-wallet transfer request.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req transferRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(errorResponse{
			Code:  "INVALID_REQUEST",
			Error: "malformed request body",
		})
	}

	res, err := h.engine.Transfer(c.UserContext(), TransferInput{
		FromUserID:     req.FromUserID,
		ToUserID:       req.ToUserID,
		Currency:       req.Currency,
		Amount:         req.Amount,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		return h.writeFailure(c, err)
	}

	message := fmt.Sprintf("Transferred %d", res.Amount)
	if res.Replayed {
		message = fmt.Sprintf("Transfer of %d already processed", res.Amount)
	}
	return c.Status(http.StatusOK).JSON(transferResponse{
		Success:    true,
		Message:    message,
		TransferID: res.TransferID,
	})
}

func (h *Handler) writeFailure(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return c.Status(http.StatusBadRequest).JSON(errorResponse{
			Code:  "INVALID_REQUEST",
			Error: err.Error(),
		})
	case errors.Is(err, ErrWalletNotFound):
		return c.Status(http.StatusBadRequest).JSON(errorResponse{
			Code:  "WALLET_NOT_FOUND",
			Error: err.Error(),
		})
	case errors.Is(err, ErrInsufficientFunds):
		return c.Status(http.StatusBadRequest).JSON(errorResponse{
			Code:  "INSUFFICIENT_FUNDS",
			Error: "insufficient funds",
		})
	default:
		resp := errorResponse{
			Code:  "INTERNAL_ERROR",
			Error: "internal server error during transfer",
		}
		if h.debugErrors {
			resp.Detail = err.Error()
		}
		return c.Status(http.StatusInternalServerError).JSON(resp)
	}
}
