package ledger

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// HistoryHandler exposes the read-only transfer history endpoint.
type HistoryHandler struct {
	store *PostgresStore
}

// NewHistoryHandler builds a history HTTP handler.
func NewHistoryHandler(store *PostgresStore) *HistoryHandler {
	return &HistoryHandler{store: store}
}

type historyItemResponse struct {
	ID           string `json:"id"`
	FromWalletID string `json:"from_wallet_id"`
	ToWalletID   string `json:"to_wallet_id"`
	Amount       int64  `json:"amount"`
	Status       string `json:"status"`
	CreatedAt    string `json:"created_at"`
	FromUserName string `json:"from_user_name"`
	ToUserName   string `json:"to_user_name"`
}

// History returns the user's transfers, newest first, with pagination.
func (h *HistoryHandler) History(c *fiber.Ctx) error {
	userID := c.Params("userId")
	limit := c.QueryInt("limit", 10)
	offset := c.QueryInt("offset", 0)
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	items, err := h.store.HistoryForUser(c.UserContext(), userID, limit, offset)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, "failed to fetch transfer history")
	}

	out := make([]historyItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, historyItemResponse{
			ID:           item.ID,
			FromWalletID: item.FromWalletID,
			ToWalletID:   item.ToWalletID,
			Amount:       item.Amount,
			Status:       item.Status,
			CreatedAt:    item.CreatedAt.Format("2006-01-02T15:04:05.000Z07:00"),
			FromUserName: item.FromUserName,
			ToUserName:   item.ToUserName,
		})
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"success": true, "data": out})
}
