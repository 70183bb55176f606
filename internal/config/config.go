package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Server
	Port        int    `envconfig:"PORT" default:"3000"`
	Environment string `envconfig:"ENV" default:"development"`

	// Database
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// Provider
	ProviderType string `envconfig:"PROVIDER_TYPE" default:"mock"`
	AWSRegion    string `envconfig:"AWS_REGION" default:"us-east-1"`
	CascadePath  string `envconfig:"OPENCV_CASCADE_PATH" default:"models/haarcascade_frontalface_default.xml"`
	EmbedderPath string `envconfig:"OPENCV_EMBEDDER_PATH" default:"models/face_embedder.onnx"`
	SpoofPath    string `envconfig:"OPENCV_SPOOF_PATH" default:"models/spoof_mobilenet.onnx"`

	// Matching
	MatchStrategy  string  `envconfig:"MATCH_STRATEGY" default:"fingerprint"`
	MatchThreshold float64 `envconfig:"MATCH_THRESHOLD" default:"0.85"`

	// Camera
	CaptureSource   string        `envconfig:"CAPTURE_SOURCE" default:"webcam"`
	CameraDevice    int           `envconfig:"CAMERA_DEVICE" default:"0"`
	CameraAltDevice int           `envconfig:"CAMERA_ALT_DEVICE" default:"-1"`
	FrameInterval   time.Duration `envconfig:"FRAME_INTERVAL" default:"200ms"`
	ReplayDir       string        `envconfig:"REPLAY_DIR" default:""`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
