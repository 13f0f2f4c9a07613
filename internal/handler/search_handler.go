package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/ahmednasr/issue-retriever/internal/models"
	"github.com/ahmednasr/issue-retriever/internal/service"
)

// SearchHandler wires HTTP → SearchService.
type SearchHandler struct {
	svc service.SearchService
}

// NewSearchHandler returns a handler instance.
func NewSearchHandler(svc service.SearchService) *SearchHandler {
	return &SearchHandler{svc: svc}
}

// Register mounts GET /search on the given router group.
func (h *SearchHandler) Register(r fiber.Router) {
	r.Get("/search", h.search)
}

// search handles GET /search?q=some+text&repo=owner/name&k=10
func (h *SearchHandler) search(c *fiber.Ctx) error {
	req := models.ChunkSearchRequest{
		Query: c.Query("q"),
		Repo:  c.Query("repo"),
	}
	if req.Query == "" {
		return fiber.NewError(fiber.StatusBadRequest, "q (query) parameter is required")
	}
	if kParam := c.Query("k"); kParam != "" {
		k, err := strconv.Atoi(kParam)
		if err != nil || k <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "k must be a positive integer")
		}
		req.TopK = k
	}

	hits, err := h.svc.Search(c.UserContext(), req)
	switch {
	case errors.Is(err, service.ErrInvalidSearch):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrSearchDisabled):
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	case err != nil:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(hits)
}
