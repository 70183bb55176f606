package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/saturnino-fabrica-de-software/vigil/internal/api"
	"github.com/saturnino-fabrica-de-software/vigil/internal/capture"
	"github.com/saturnino-fabrica-de-software/vigil/internal/config"
	"github.com/saturnino-fabrica-de-software/vigil/internal/database"
	"github.com/saturnino-fabrica-de-software/vigil/internal/face"
	"github.com/saturnino-fabrica-de-software/vigil/internal/gallery"
	"github.com/saturnino-fabrica-de-software/vigil/internal/match"
	"github.com/saturnino-fabrica-de-software/vigil/internal/session"
	"github.com/saturnino-fabrica-de-software/vigil/internal/ws"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	logger.Info("starting Vigil",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.Port),
		slog.String("provider", cfg.ProviderType),
		slog.String("capture", cfg.CaptureSource),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Database
	pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	if err := runMigrations(cfg); err != nil {
		return err
	}

	store := gallery.NewPostgresStore(pool)

	// Analysis pipeline
	analyzer, liveness, err := face.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to build provider %q: %w", cfg.ProviderType, err)
	}

	source, err := buildSource(cfg)
	if err != nil {
		return fmt.Errorf("failed to build capture source %q: %w", cfg.CaptureSource, err)
	}
	defer func() { _ = source.Close() }()

	// Hub doubles as the session notification channel: notices and
	// recognition results reach the UI over the same websocket stream.
	hub := ws.NewHub()
	go hub.Run()

	sess := session.New(session.Deps{
		Store:    store,
		Analyzer: analyzer,
		Liveness: liveness,
		Strategy: match.New(cfg.MatchStrategy, cfg.MatchThreshold),
		Source:   source,
		Notifier: hub,
		Logger:   logger,
	})
	defer sess.Dispose()

	results, unsubscribe := sess.Subscribe()
	defer unsubscribe()
	go func() {
		for rec := range results {
			hub.Broadcast(ws.EventRecognitionUpdated, rec)
		}
	}()

	// Bind eagerly so the session is matching as soon as the service is
	// up. A failed bind is recoverable through POST /v1/session/bind, so
	// it does not abort startup.
	if err := sess.Bind(ctx); err != nil {
		logger.Warn("initial session bind failed", slog.Any("error", err))
	}

	// HTTP API
	router := api.NewRouter(logger, &api.Dependencies{
		Store:   store,
		Session: sess,
		DB:      pool,
		Hub:     hub,
	})
	router.Setup()

	errChan := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Port)
		logger.Info("server listening", slog.String("addr", addr))
		if err := router.Listen(addr); err != nil {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down...")
	sess.Dispose()
	if err := router.Shutdown(); err != nil {
		logger.Error("shutdown error", slog.Any("error", err))
	}

	<-shutdownCtx.Done()
	logger.Info("server stopped")

	return nil
}

func runMigrations(cfg *config.Config) error {
	db, err := database.NewPool(database.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		return fmt.Errorf("failed to open migration connection: %w", err)
	}
	defer func() { _ = db.Close() }()

	migrator, err := database.NewMigrator(db, "vigil")
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	defer func() { _ = migrator.Close() }()

	if err := migrator.Up(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func buildSource(cfg *config.Config) (capture.Source, error) {
	switch cfg.CaptureSource {
	case "webcam":
		return capture.NewWebcam(cfg.CameraDevice, cfg.CameraAltDevice, cfg.FrameInterval), nil

	case "replay":
		frames, err := loadReplayFrames(cfg.ReplayDir)
		if err != nil {
			return nil, err
		}
		return capture.NewReplay(frames, nil, cfg.FrameInterval), nil

	default:
		return nil, fmt.Errorf("unknown capture source (use: webcam, replay)")
	}
}

// loadReplayFrames reads the JPEG files of a directory in name order, so
// a recorded sequence plays back deterministically.
func loadReplayFrames(dir string) ([][]byte, error) {
	if dir == "" {
		return nil, fmt.Errorf("REPLAY_DIR is required for the replay source")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read replay dir: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".jpg", ".jpeg":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	if len(names) == 0 {
		return nil, fmt.Errorf("no jpeg frames in %s", dir)
	}

	frames := make([][]byte, 0, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read frame %s: %w", name, err)
		}
		frames = append(frames, data)
	}
	return frames, nil
}
