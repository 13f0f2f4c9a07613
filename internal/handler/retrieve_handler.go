package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/ahmednasr/issue-retriever/internal/models"
	"github.com/ahmednasr/issue-retriever/internal/pipeline"
	"github.com/ahmednasr/issue-retriever/internal/service"
)

// RetrieveHandler wires HTTP → RetrieverService.
type RetrieveHandler struct {
	svc service.RetrieverService
}

// NewRetrieveHandler creates a RetrieveHandler instance.
func NewRetrieveHandler(svc service.RetrieverService) *RetrieveHandler {
	return &RetrieveHandler{svc: svc}
}

// Register mounts the retrieve routes on the given router group.
func (h *RetrieveHandler) Register(r fiber.Router) {
	r.Post("/retrieve", h.retrieve)
	r.Get("/repos/:owner/:name/issues/:number", h.getRecord)
}

// retrieve handles POST /retrieve
func (h *RetrieveHandler) retrieve(c *fiber.Ctx) error {
	// Omitted fields keep their defaults.
	req := models.NewRetrieveRequest("")
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
	}

	resp, err := h.svc.Retrieve(c.UserContext(), req)
	if err != nil {
		return fiber.NewError(statusFor(err), err.Error())
	}
	return c.JSON(resp)
}

// getRecord handles GET /repos/:owner/:name/issues/:number
func (h *RetrieveHandler) getRecord(c *fiber.Ctx) error {
	number, err := strconv.Atoi(c.Params("number"))
	if err != nil || number <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "issue number must be a positive integer")
	}
	repo := c.Params("owner") + "/" + c.Params("name")

	rec, err := h.svc.GetRecord(c.UserContext(), repo, number)
	switch {
	case errors.Is(err, service.ErrRecordNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrStoreDisabled):
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	case err != nil:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(rec)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrInvalidRequest):
		return fiber.StatusBadRequest
	case errors.Is(err, pipeline.ErrTracker), errors.Is(err, pipeline.ErrSummarize):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
