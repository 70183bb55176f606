// Package rekognition implements the provider contracts on top of AWS
// Rekognition. Detection, landmarks and quality attributes come from the
// DetectFaces API; Rekognition keeps face vectors internal, so the
// embedding is derived locally from the cropped face region.
package rekognition

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"

	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"github.com/saturnino-fabrica-de-software/vigil/internal/domain"
	"github.com/saturnino-fabrica-de-software/vigil/internal/provider"
	"github.com/saturnino-fabrica-de-software/vigil/internal/provider/pixelembed"
)

const (
	// maxImageSize is the maximum image size supported by AWS Rekognition (5MB).
	maxImageSize = 5 * 1024 * 1024
	// minImageSize is the minimum image size for valid processing.
	minImageSize = 100
)

// Analyzer implements provider.FaceAnalyzer using AWS Rekognition DetectFaces.
type Analyzer struct {
	client *Client
}

var _ provider.FaceAnalyzer = (*Analyzer)(nil)

// NewAnalyzer creates a Rekognition-backed analyzer.
func NewAnalyzer(ctx context.Context, cfg Config) (*Analyzer, error) {
	client, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create rekognition client: %w", err)
	}
	return &Analyzer{client: client}, nil
}

// validateImage checks if image data is valid for Rekognition processing.
func validateImage(img []byte) error {
	if len(img) < minImageSize {
		return fmt.Errorf("%w: image too small (%d bytes, minimum %d)", ErrInvalidImage, len(img), minImageSize)
	}
	if len(img) > maxImageSize {
		return fmt.Errorf("%w: image too large (%d bytes, maximum %d)", ErrInvalidImage, len(img), maxImageSize)
	}
	return nil
}

// Analyze detects the most confident face in the frame. A frame without
// any face above the configured confidence is not an error.
func (a *Analyzer) Analyze(ctx context.Context, frame []byte) (*domain.Capture, error) {
	if err := validateImage(frame); err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}

	input := &rekognition.DetectFacesInput{
		Image:      &types.Image{Bytes: frame},
		Attributes: []types.Attribute{types.AttributeAll},
	}

	output, err := a.client.rekognition.DetectFaces(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("detect faces: %w", parseError(err))
	}

	detail := bestFace(output.FaceDetails, a.client.config.MinConfidence)
	if detail == nil {
		return &domain.Capture{Frame: frame}, nil
	}

	faceImage, err := cropFace(frame, detail.BoundingBox)
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}

	img, err := pixelembed.Decode(faceImage)
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}

	return &domain.Capture{
		FaceFound: true,
		Embedding: pixelembed.FromImage(img),
		Landmarks: landmarks(detail.Landmarks),
		FaceImage: faceImage,
		Frame:     frame,
	}, nil
}

// bestFace picks the highest-confidence detail at or above minConfidence.
func bestFace(details []types.FaceDetail, minConfidence float64) *types.FaceDetail {
	var best *types.FaceDetail
	for i := range details {
		d := &details[i]
		if d.Confidence == nil || float64(*d.Confidence) < minConfidence {
			continue
		}
		if best == nil || *d.Confidence > *best.Confidence {
			best = d
		}
	}
	return best
}

// landmarks converts Rekognition landmarks to normalized frame points.
func landmarks(marks []types.Landmark) []domain.Point {
	points := make([]domain.Point, 0, len(marks))
	for _, m := range marks {
		if m.X == nil || m.Y == nil {
			continue
		}
		points = append(points, domain.Point{X: float64(*m.X), Y: float64(*m.Y)})
	}
	return points
}

// cropFace cuts the bounding box region out of the frame and re-encodes
// it as JPEG. Bounding box coordinates are ratios of the frame size.
func cropFace(frame []byte, box *types.BoundingBox) ([]byte, error) {
	img, err := pixelembed.Decode(frame)
	if err != nil {
		return nil, err
	}
	if box == nil || box.Left == nil || box.Top == nil || box.Width == nil || box.Height == nil {
		return frame, nil
	}

	bounds := img.Bounds()
	w := float64(bounds.Dx())
	h := float64(bounds.Dy())

	rect := image.Rect(
		bounds.Min.X+int(float64(*box.Left)*w),
		bounds.Min.Y+int(float64(*box.Top)*h),
		bounds.Min.X+int((float64(*box.Left)+float64(*box.Width))*w),
		bounds.Min.Y+int((float64(*box.Top)+float64(*box.Height))*h),
	).Intersect(bounds)
	if rect.Empty() {
		return frame, nil
	}

	face := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(face, face.Bounds(), img, rect.Min, draw.Src)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, face, nil); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Classifier implements provider.LivenessClassifier on Rekognition quality
// attributes. Sharpness, brightness and pose of a live capture differ from
// a photo of a photo; the score is advisory only.
type Classifier struct {
	client *Client
}

var _ provider.LivenessClassifier = (*Classifier)(nil)

// NewClassifier creates a Rekognition-backed liveness classifier.
func NewClassifier(ctx context.Context, cfg Config) (*Classifier, error) {
	client, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create rekognition client: %w", err)
	}
	return &Classifier{client: client}, nil
}

func (c *Classifier) Classify(ctx context.Context, faceImage []byte) (float64, error) {
	if err := validateImage(faceImage); err != nil {
		return 0, domain.ErrInvalidImage.WithError(err)
	}

	input := &rekognition.DetectFacesInput{
		Image:      &types.Image{Bytes: faceImage},
		Attributes: []types.Attribute{types.AttributeAll},
	}

	output, err := c.client.rekognition.DetectFaces(ctx, input)
	if err != nil {
		return 0, fmt.Errorf("classify liveness: %w", parseError(err))
	}

	detail := bestFace(output.FaceDetails, 0)
	if detail == nil {
		// No face in the crop means the capture is suspect.
		return 1, nil
	}

	return spoofScore(detail), nil
}

// spoofScore combines quality attributes into a [0,1] spoof likelihood.
// Sharp, well-lit faces with open eyes score near 0.
func spoofScore(detail *types.FaceDetail) float64 {
	sharpness := 50.0
	brightness := 50.0
	if detail.Quality != nil {
		if detail.Quality.Sharpness != nil {
			sharpness = float64(*detail.Quality.Sharpness)
		}
		if detail.Quality.Brightness != nil {
			brightness = float64(*detail.Quality.Brightness)
		}
	}

	eyesOpen := 50.0
	if detail.EyesOpen != nil && detail.EyesOpen.Confidence != nil {
		if detail.EyesOpen.Value {
			eyesOpen = float64(*detail.EyesOpen.Confidence)
		} else {
			eyesOpen = 100 - float64(*detail.EyesOpen.Confidence)
		}
	}

	live := 0.5*sharpness + 0.3*brightness + 0.2*eyesOpen
	score := 1 - live/100
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
