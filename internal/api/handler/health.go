package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

// Pinger is the database connectivity check used by readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// GalleryCounter reports the enrolled signature count, surfaced by
// readiness so operators see gallery size without querying the API.
type GalleryCounter interface {
	Count(ctx context.Context) (int, error)
}

type HealthHandler struct {
	db      Pinger
	gallery GalleryCounter
}

func NewHealthHandler(db Pinger, gallery GalleryCounter) *HealthHandler {
	return &HealthHandler{db: db, gallery: gallery}
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

type ReadyResponse struct {
	Status     string `json:"status"`
	Signatures *int   `json:"signatures,omitempty"`
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status:  "ok",
		Version: "0.1.0",
	})
}

func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	if h.db != nil {
		if err := h.db.Ping(c.Context()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(ReadyResponse{
				Status: "unavailable",
			})
		}
	}

	resp := ReadyResponse{Status: "ready"}
	if h.gallery != nil {
		count, err := h.gallery.Count(c.Context())
		if err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(ReadyResponse{
				Status: "unavailable",
			})
		}
		resp.Signatures = &count
	}

	return c.JSON(resp)
}
