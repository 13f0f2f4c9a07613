package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo"
)

const pingTimeout = 2 * time.Second

type HealthHandler struct {
	db *mongo.Client // nil when persistence is off
}

func NewHealthHandler(db *mongo.Client) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Register(r fiber.Router) {
	r.Get("/health", h.health)
}

func (h *HealthHandler) health(c *fiber.Ctx) error {
	status := fiber.Map{
		"status": "ok",
		"dbs": fiber.Map{
			"records": h.checkDB(c.UserContext()),
		},
	}

	return c.JSON(status)
}

func (h *HealthHandler) checkDB(ctx context.Context) string {
	if h.db == nil {
		return "not_configured"
	}

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := h.db.Ping(ctx, nil); err != nil {
		return "error"
	}
	return "connected"
}
