package category

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes category HTTP endpoints.
type Handler struct {
	repo Repository
}

// NewHandler builds a category HTTP handler.
func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

type createRequest struct {
	Name string `json:"name"`
}

// Create adds a category.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.Name == "" {
		return fiber.NewError(http.StatusBadRequest, "name is required")
	}
	cat, err := h.repo.Create(c.UserContext(), req.Name)
	if err != nil {
		if errors.Is(err, ErrNameTaken) {
			return fiber.NewError(http.StatusConflict, "category already exists")
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"id": cat.ID, "name": cat.Name})
}

// List returns all categories.
func (h *Handler) List(c *fiber.Ctx) error {
	categories, err := h.repo.List(c.UserContext())
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	out := make([]fiber.Map, 0, len(categories))
	for _, cat := range categories {
		out = append(out, fiber.Map{"id": cat.ID, "name": cat.Name})
	}
	return c.Status(http.StatusOK).JSON(out)
}
