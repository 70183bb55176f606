// Package mock implements the provider contracts without any ML runtime.
// Embeddings are derived deterministically from the frame pixels, so the
// same face image always produces the same embedding. Used by tests and
// the development environment.
package mock

import (
	"context"
	"math"

	"github.com/saturnino-fabrica-de-software/vigil/internal/domain"
	"github.com/saturnino-fabrica-de-software/vigil/internal/provider"
	"github.com/saturnino-fabrica-de-software/vigil/internal/provider/pixelembed"
)

// flatFrameVariance is the luma variance below which a frame is treated
// as having no face (uniform frames carry no usable signal).
const flatFrameVariance = 1.0

// Analyzer implements provider.FaceAnalyzer deterministically.
type Analyzer struct{}

func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

var _ provider.FaceAnalyzer = (*Analyzer)(nil)

func (a *Analyzer) Analyze(ctx context.Context, frame []byte) (*domain.Capture, error) {
	img, err := pixelembed.Decode(frame)
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}

	gray := pixelembed.GrayGrid(img)

	if pixelembed.Variance(gray) < flatFrameVariance {
		return &domain.Capture{Frame: frame}, nil
	}

	return &domain.Capture{
		FaceFound: true,
		Embedding: pixelembed.Embed(gray),
		Landmarks: landmarks(),
		FaceImage: frame,
		Frame:     frame,
	}, nil
}

// Classifier implements provider.LivenessClassifier. Flat, low-detail
// images (a printed photo held to the lens) score high; detailed images
// score low.
type Classifier struct{}

func NewClassifier() *Classifier {
	return &Classifier{}
}

var _ provider.LivenessClassifier = (*Classifier)(nil)

func (c *Classifier) Classify(ctx context.Context, faceImage []byte) (float64, error) {
	img, err := pixelembed.Decode(faceImage)
	if err != nil {
		return 0, domain.ErrInvalidImage.WithError(err)
	}

	// Map luma variance onto [0,1]: zero variance is a certain spoof.
	v := pixelembed.Variance(pixelembed.GrayGrid(img))
	return math.Exp(-v / 512.0), nil
}

// landmarks synthesizes a stable five-point overlay (eyes, nose, mouth
// corners) in normalized frame coordinates.
func landmarks() []domain.Point {
	return []domain.Point{
		{X: 0.35, Y: 0.4},
		{X: 0.65, Y: 0.4},
		{X: 0.5, Y: 0.55},
		{X: 0.4, Y: 0.7},
		{X: 0.6, Y: 0.7},
	}
}
