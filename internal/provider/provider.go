// Package provider defines the external ML inference contracts: the
// embedding producer and the liveness classifier. Implementations live in
// subpackages and are selected by configuration.
package provider

import (
	"context"

	"github.com/saturnino-fabrica-de-software/vigil/internal/domain"
)

// FaceAnalyzer extracts a face capture from a raw camera frame.
// "No face in frame" is a normal outcome: a Capture with FaceFound=false
// and nil error, never an error value.
type FaceAnalyzer interface {
	Analyze(ctx context.Context, frame []byte) (*domain.Capture, error)
}

// LivenessClassifier scores a cropped face image for presentation-attack
// likelihood: 0.0 live, 1.0 spoof. Errors mean "score unavailable" and
// callers degrade to an absent score; they must never abort the frame
// pipeline.
type LivenessClassifier interface {
	Classify(ctx context.Context, faceImage []byte) (float64, error)
}
