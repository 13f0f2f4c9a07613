package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ahmednasr/issue-retriever/internal/service"
)

// RegisterRoutes mounts every versioned API route.
func RegisterRoutes(app *fiber.App,
	retrieverSvc service.RetrieverService,
	searchSvc service.SearchService,
) {
	v1 := app.Group("/api/v1")
	NewRetrieveHandler(retrieverSvc).Register(v1)
	NewSearchHandler(searchSvc).Register(v1)
}
