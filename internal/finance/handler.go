package finance

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes finance HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a finance HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type recordRequest struct {
	UserID      string `json:"user_id"`
	CategoryID  string `json:"category_id"`
	Kind        string `json:"kind"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
}

type recordResponse struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	CategoryID  string `json:"category_id,omitempty"`
	Kind        string `json:"kind"`
	Amount      int64  `json:"amount"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// Record registers an income or expense event.
func (h *Handler) Record(c *fiber.Ctx) error {
	var req recordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	rec, err := h.service.Record(c.UserContext(), RecordInput{
		UserID:      req.UserID,
		CategoryID:  req.CategoryID,
		Kind:        req.Kind,
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidRecord), errors.Is(err, ErrInvalidKind):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrInsufficientFunds):
			return fiber.NewError(http.StatusBadRequest, "insufficient funds")
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.Status(http.StatusCreated).JSON(toResponse(rec))
}

// List returns the user's finance records.
func (h *Handler) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 10)
	offset := c.QueryInt("offset", 0)

	records, err := h.service.List(c.UserContext(), c.Params("userId"), limit, offset)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	out := make([]recordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, toResponse(rec))
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"success": true, "data": out})
}

func toResponse(rec Record) recordResponse {
	return recordResponse{
		ID:          rec.ID,
		UserID:      rec.UserID,
		CategoryID:  rec.CategoryID,
		Kind:        rec.Kind,
		Amount:      rec.Amount,
		Description: rec.Description,
		CreatedAt:   rec.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
}
