package api

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	swagger "github.com/go-swagno/swagno-fiber/swagger"
	"github.com/saturnino-fabrica-de-software/vigil/internal/api/docs"
	"github.com/saturnino-fabrica-de-software/vigil/internal/api/handler"
	"github.com/saturnino-fabrica-de-software/vigil/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/vigil/internal/gallery"
	"github.com/saturnino-fabrica-de-software/vigil/internal/ws"
)

type Dependencies struct {
	Store   gallery.Store
	Session handler.RecognitionSession
	DB      handler.Pinger

	// Hub is optional: when the caller already runs a hub (to share it
	// with the recognition session as its notification channel) the
	// router reuses it instead of starting its own.
	Hub *ws.Hub
}

type Router struct {
	app    *fiber.App
	logger *slog.Logger
	deps   *Dependencies
	wsHub  *ws.Hub
}

func NewRouter(logger *slog.Logger, deps *Dependencies) *Router {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
		AppName:      "Vigil API",
	})

	return &Router{
		app:    app,
		logger: logger,
		deps:   deps,
	}
}

// Hub returns the websocket hub, available after Setup.
func (r *Router) Hub() *ws.Hub {
	return r.wsHub
}

func (r *Router) Setup() {
	// Global middlewares
	r.app.Use(requestid.New())
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(middleware.Logger(r.logger))
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Swagger documentation
	sw := docs.NewSwagger()
	swagger.SwaggerHandler(r.app, sw.MustToJson())

	// Health check endpoints
	var db handler.Pinger
	var counter handler.GalleryCounter
	if r.deps != nil {
		db = r.deps.DB
		if c, ok := r.deps.Store.(handler.GalleryCounter); ok {
			counter = c
		}
	}
	healthHandler := handler.NewHealthHandler(db, counter)
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)

	if r.deps == nil {
		return
	}

	r.wsHub = r.deps.Hub
	if r.wsHub == nil {
		r.wsHub = ws.NewHub()
		go r.wsHub.Run()
	}

	v1 := r.app.Group("/v1")

	// Gallery routes
	signatureHandler := handler.NewSignatureHandler(r.deps.Store, r.wsHub, r.logger)
	v1.Get("/signatures", signatureHandler.List)
	v1.Delete("/signatures/:id", signatureHandler.Delete)

	// Session routes
	sessionHandler := handler.NewSessionHandler(r.deps.Session, r.wsHub, r.logger)
	v1.Get("/session", sessionHandler.State)
	v1.Post("/session/bind", sessionHandler.Bind)
	v1.Get("/session/result", sessionHandler.Result)
	v1.Post("/session/save/open", sessionHandler.OpenSave)
	v1.Post("/session/save", sessionHandler.Save)
	v1.Post("/session/save/cancel", sessionHandler.CancelSave)
	v1.Post("/session/flip", sessionHandler.Flip)

	// WebSocket endpoint
	v1.Get("/stream", ws.UpgradeMiddleware(), ws.Handler(r.wsHub))
}

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

func (r *Router) Shutdown() error {
	return r.app.Shutdown()
}
