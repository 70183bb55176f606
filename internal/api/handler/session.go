package handler

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/vigil/internal/domain"
	"github.com/saturnino-fabrica-de-software/vigil/internal/gallery"
	"github.com/saturnino-fabrica-de-software/vigil/internal/session"
	"github.com/saturnino-fabrica-de-software/vigil/internal/ws"
)

// RecognitionSession is the session surface the handler drives.
type RecognitionSession interface {
	State() session.State
	Snapshot() *gallery.Snapshot
	Latest() *domain.Recognition
	Bind(ctx context.Context) error
	OpenSave() bool
	Save(ctx context.Context, name string) error
	CancelSave() error
	Flip() error
}

// SessionHandler exposes the live recognition session over HTTP.
type SessionHandler struct {
	sess   RecognitionSession
	hub    *ws.Hub
	logger *slog.Logger
}

func NewSessionHandler(sess RecognitionSession, hub *ws.Hub, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		sess:   sess,
		hub:    hub,
		logger: logger,
	}
}

type SessionStateResponse struct {
	State       string `json:"state"`
	GallerySize int    `json:"gallery_size"`
}

type ResultResponse struct {
	Result *domain.Recognition `json:"result"`
}

type SaveRequest struct {
	Name string `json:"name"`
}

type OpenSaveResponse struct {
	Opened bool `json:"opened"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

// State GET /v1/session - lifecycle stage and gallery size
func (h *SessionHandler) State(c *fiber.Ctx) error {
	return c.JSON(SessionStateResponse{
		State:       h.sess.State().String(),
		GallerySize: h.sess.Snapshot().Len(),
	})
}

// Bind POST /v1/session/bind - load the gallery and start the camera
func (h *SessionHandler) Bind(c *fiber.Ctx) error {
	if err := h.sess.Bind(c.Context()); err != nil {
		return err
	}
	return c.JSON(StatusResponse{Status: "matching"})
}

// Result GET /v1/session/result - latest recognition result
func (h *SessionHandler) Result(c *fiber.Ctx) error {
	rec := h.sess.Latest()
	if rec == nil {
		return c.Status(fiber.StatusNoContent).Send(nil)
	}
	return c.JSON(ResultResponse{Result: rec})
}

// OpenSave POST /v1/session/save/open - freeze the capture for enrollment
func (h *SessionHandler) OpenSave(c *fiber.Ctx) error {
	opened := h.sess.OpenSave()
	if !opened {
		h.logger.Debug("save dialog request ignored", "state", h.sess.State())
	}
	return c.JSON(OpenSaveResponse{Opened: opened})
}

// Save POST /v1/session/save - enroll the frozen capture
func (h *SessionHandler) Save(c *fiber.Ctx) error {
	var req SaveRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ErrBadRequest.WithError(err)
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return domain.ErrValidationFailed.WithError(errors.New("name is required"))
	}

	if err := h.sess.Save(c.Context(), req.Name); err != nil {
		return err
	}

	if h.hub != nil {
		h.hub.Broadcast(ws.EventSignatureEnrolled, fiber.Map{"name": req.Name})
	}

	return c.Status(fiber.StatusCreated).JSON(StatusResponse{Status: "saved"})
}

// CancelSave POST /v1/session/save/cancel - drop the capture, resume matching
func (h *SessionHandler) CancelSave(c *fiber.Ctx) error {
	if err := h.sess.CancelSave(); err != nil {
		return err
	}
	return c.JSON(StatusResponse{Status: "matching"})
}

// Flip POST /v1/session/flip - switch to the alternate camera
func (h *SessionHandler) Flip(c *fiber.Ctx) error {
	if err := h.sess.Flip(); err != nil {
		return err
	}
	return c.JSON(StatusResponse{Status: h.sess.State().String()})
}
