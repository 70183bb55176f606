package face

import (
	"context"
	"fmt"

	"github.com/saturnino-fabrica-de-software/vigil/internal/config"
	"github.com/saturnino-fabrica-de-software/vigil/internal/provider"
	"github.com/saturnino-fabrica-de-software/vigil/internal/provider/mock"
	"github.com/saturnino-fabrica-de-software/vigil/internal/provider/opencv"
	"github.com/saturnino-fabrica-de-software/vigil/internal/provider/rekognition"
)

// Type defines supported analysis provider types
type Type string

const (
	// TypeMock is the deterministic pixel-grid provider (local, for dev/test)
	TypeMock Type = "mock"
	// TypeRekognition is the AWS Rekognition provider (cloud)
	TypeRekognition Type = "rekognition"
	// TypeOpenCV is the local cascade + ONNX provider
	TypeOpenCV Type = "opencv"
)

// New creates the analyzer/classifier pair for the configured provider.
// Both halves always come from the same provider so their notion of a
// detected face agrees.
//
// Environment variables:
//   - PROVIDER_TYPE: "mock", "rekognition" or "opencv" (default: "mock")
//   - AWS_REGION: region for Rekognition (via AWS SDK credential chain)
//   - OPENCV_CASCADE_PATH, OPENCV_EMBEDDER_PATH, OPENCV_SPOOF_PATH: model
//     files for the opencv provider
func New(ctx context.Context, cfg *config.Config) (provider.FaceAnalyzer, provider.LivenessClassifier, error) {
	switch Type(cfg.ProviderType) {
	case TypeMock, "":
		// Default to the mock provider for dev/test environments
		return mock.NewAnalyzer(), mock.NewClassifier(), nil

	case TypeRekognition:
		return newRekognition(ctx, cfg)

	case TypeOpenCV:
		return newOpenCV(cfg)

	default:
		return nil, nil, fmt.Errorf("unknown provider type: %s (supported: %s, %s, %s)",
			cfg.ProviderType, TypeMock, TypeRekognition, TypeOpenCV)
	}
}

func newRekognition(ctx context.Context, cfg *config.Config) (provider.FaceAnalyzer, provider.LivenessClassifier, error) {
	rcfg := rekognition.DefaultConfig()
	if cfg.AWSRegion != "" {
		rcfg.Region = cfg.AWSRegion
	}

	analyzer, err := rekognition.NewAnalyzer(ctx, rcfg)
	if err != nil {
		return nil, nil, fmt.Errorf("create rekognition analyzer: %w", err)
	}
	classifier, err := rekognition.NewClassifier(ctx, rcfg)
	if err != nil {
		return nil, nil, fmt.Errorf("create rekognition classifier: %w", err)
	}
	return analyzer, classifier, nil
}

func newOpenCV(cfg *config.Config) (provider.FaceAnalyzer, provider.LivenessClassifier, error) {
	ocfg := opencv.Config{
		CascadePath:  cfg.CascadePath,
		EmbedderPath: cfg.EmbedderPath,
		SpoofPath:    cfg.SpoofPath,
	}

	analyzer, err := opencv.NewAnalyzer(ocfg)
	if err != nil {
		return nil, nil, fmt.Errorf("create opencv analyzer: %w", err)
	}
	classifier, err := opencv.NewClassifier(ocfg)
	if err != nil {
		_ = analyzer.Close()
		return nil, nil, fmt.Errorf("create opencv classifier: %w", err)
	}
	return analyzer, classifier, nil
}
