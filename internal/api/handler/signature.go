package handler

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/vigil/internal/domain"
	"github.com/saturnino-fabrica-de-software/vigil/internal/gallery"
	"github.com/saturnino-fabrica-de-software/vigil/internal/ws"
)

// SignatureHandler serves the enrolled gallery.
type SignatureHandler struct {
	store  gallery.Store
	hub    *ws.Hub
	logger *slog.Logger
}

func NewSignatureHandler(store gallery.Store, hub *ws.Hub, logger *slog.Logger) *SignatureHandler {
	return &SignatureHandler{
		store:  store,
		hub:    hub,
		logger: logger,
	}
}

type SignatureResponse struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	SpoofScore *float64 `json:"spoof_score,omitempty"`
	CreatedAt  string   `json:"created_at"`
}

type ListSignaturesResponse struct {
	Signatures []SignatureResponse `json:"signatures"`
	Count      int                 `json:"count"`
}

// List GET /v1/signatures - enrolled signatures in enrollment order
func (h *SignatureHandler) List(c *fiber.Ctx) error {
	sigs, err := h.store.List(c.Context())
	if err != nil {
		return domain.ErrInternal.WithError(err)
	}

	out := make([]SignatureResponse, 0, len(sigs))
	for i := range sigs {
		out = append(out, SignatureResponse{
			ID:         sigs[i].ID.String(),
			Name:       sigs[i].Name,
			SpoofScore: sigs[i].SpoofScore,
			CreatedAt:  sigs[i].CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	return c.JSON(ListSignaturesResponse{Signatures: out, Count: len(out)})
}

// Delete DELETE /v1/signatures/:id - remove an enrollment
func (h *SignatureHandler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return domain.ErrValidationFailed.WithError(err)
	}

	if err := h.store.Delete(c.Context(), id); err != nil {
		return err
	}

	h.logger.Info("signature deleted", "id", id)
	if h.hub != nil {
		h.hub.Broadcast(ws.EventSignatureDeleted, fiber.Map{"id": id.String()})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
