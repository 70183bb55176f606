// Package opencv implements the provider contracts with local OpenCV
// models: a Haar cascade for detection, an ONNX embedder for face
// vectors and a MobileNet classifier for spoof scoring. Everything runs
// on the host, no network calls.
package opencv

import (
	"context"
	"fmt"
	"image"
	"math"
	"os"
	"sync"

	"gocv.io/x/gocv"

	"github.com/saturnino-fabrica-de-software/vigil/internal/domain"
	"github.com/saturnino-fabrica-de-software/vigil/internal/provider"
)

// Config holds paths to the local model files.
type Config struct {
	// CascadePath is the Haar cascade XML used for detection, e.g.
	// haarcascade_frontalface_default.xml.
	CascadePath string

	// EmbedderPath is an ONNX face embedding network (112x112 input,
	// 512-dimensional output).
	EmbedderPath string

	// SpoofPath is a MobileNet liveness network (224x224 input, spoof
	// probability output).
	SpoofPath string

	// MinFaceSize discards detections smaller than this many pixels on
	// a side.
	MinFaceSize int
}

const (
	embedderInput  = 112
	embeddingDim   = 512
	spoofInput     = 224
	defaultMinFace = 48
)

// Analyzer implements provider.FaceAnalyzer with a Haar cascade and an
// ONNX embedder. gocv Mats are not safe for concurrent use, so calls are
// serialized.
type Analyzer struct {
	mu          sync.Mutex
	cascade     gocv.CascadeClassifier
	embedder    gocv.Net
	minFaceSize int
}

var _ provider.FaceAnalyzer = (*Analyzer)(nil)

// NewAnalyzer loads the cascade and the embedding network.
func NewAnalyzer(cfg Config) (*Analyzer, error) {
	if _, err := os.Stat(cfg.CascadePath); err != nil {
		return nil, fmt.Errorf("cascade file: %w", err)
	}
	if _, err := os.Stat(cfg.EmbedderPath); err != nil {
		return nil, fmt.Errorf("embedder file: %w", err)
	}

	cascade := gocv.NewCascadeClassifier()
	if !cascade.Load(cfg.CascadePath) {
		cascade.Close()
		return nil, fmt.Errorf("failed to load cascade from %s", cfg.CascadePath)
	}

	embedder := gocv.ReadNet(cfg.EmbedderPath, "")
	if embedder.Empty() {
		cascade.Close()
		return nil, fmt.Errorf("failed to load embedder from %s", cfg.EmbedderPath)
	}
	embedder.SetPreferableBackend(gocv.NetBackendDefault)
	embedder.SetPreferableTarget(gocv.NetTargetCPU)

	minFace := cfg.MinFaceSize
	if minFace <= 0 {
		minFace = defaultMinFace
	}

	return &Analyzer{
		cascade:     cascade,
		embedder:    embedder,
		minFaceSize: minFace,
	}, nil
}

// Close releases the cascade and the network.
func (a *Analyzer) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.cascade.Close(); err != nil {
		return err
	}
	return a.embedder.Close()
}

func (a *Analyzer) Analyze(ctx context.Context, frame []byte) (*domain.Capture, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	img, err := gocv.IMDecode(frame, gocv.IMReadColor)
	if err != nil || img.Empty() {
		return nil, domain.ErrInvalidImage.WithError(err)
	}
	defer img.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)

	rect, found := a.largestFace(gray)
	if !found {
		return &domain.Capture{Frame: frame}, nil
	}

	face := img.Region(rect)
	defer face.Close()

	embedding, err := a.embed(face)
	if err != nil {
		return nil, fmt.Errorf("embed face: %w", err)
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, face)
	if err != nil {
		return nil, fmt.Errorf("encode face: %w", err)
	}
	defer buf.Close()

	faceImage := make([]byte, buf.Len())
	copy(faceImage, buf.GetBytes())

	return &domain.Capture{
		FaceFound: true,
		Embedding: embedding,
		Landmarks: landmarks(rect, img.Cols(), img.Rows()),
		FaceImage: faceImage,
		Frame:     frame,
	}, nil
}

// largestFace picks the biggest detection above the minimum size.
func (a *Analyzer) largestFace(gray gocv.Mat) (image.Rectangle, bool) {
	rects := a.cascade.DetectMultiScale(gray)

	var best image.Rectangle
	found := false
	for _, r := range rects {
		if r.Dx() < a.minFaceSize || r.Dy() < a.minFaceSize {
			continue
		}
		if !found || r.Dx()*r.Dy() > best.Dx()*best.Dy() {
			best = r
			found = true
		}
	}
	return best, found
}

// embed runs the face region through the embedding network and
// L2-normalizes the output.
func (a *Analyzer) embed(face gocv.Mat) ([]float64, error) {
	blob := gocv.BlobFromImage(face, 1.0/127.5,
		image.Pt(embedderInput, embedderInput),
		gocv.NewScalar(127.5, 127.5, 127.5, 0), true, false)
	defer blob.Close()

	a.embedder.SetInput(blob, "")
	output := a.embedder.Forward("")
	defer output.Close()

	embedding := make([]float64, embeddingDim)
	var norm float64
	for i := 0; i < embeddingDim; i++ {
		v := float64(output.GetFloatAt(0, i))
		embedding[i] = v
		norm += v * v
	}
	if norm == 0 {
		return nil, fmt.Errorf("embedder produced a zero vector")
	}
	norm = math.Sqrt(norm)
	for i := range embedding {
		embedding[i] /= norm
	}
	return embedding, nil
}

// landmarks estimates a five-point overlay from the detection rectangle
// in normalized frame coordinates. The cascade reports no real landmarks,
// so positions are the canonical eye/nose/mouth fractions of the box.
func landmarks(rect image.Rectangle, frameW, frameH int) []domain.Point {
	if frameW == 0 || frameH == 0 {
		return nil
	}

	at := func(fx, fy float64) domain.Point {
		return domain.Point{
			X: (float64(rect.Min.X) + fx*float64(rect.Dx())) / float64(frameW),
			Y: (float64(rect.Min.Y) + fy*float64(rect.Dy())) / float64(frameH),
		}
	}

	return []domain.Point{
		at(0.3, 0.4),
		at(0.7, 0.4),
		at(0.5, 0.6),
		at(0.35, 0.8),
		at(0.65, 0.8),
	}
}

// Classifier implements provider.LivenessClassifier with a MobileNet
// spoof network.
type Classifier struct {
	mu  sync.Mutex
	net gocv.Net
}

var _ provider.LivenessClassifier = (*Classifier)(nil)

// NewClassifier loads the spoof network.
func NewClassifier(cfg Config) (*Classifier, error) {
	if _, err := os.Stat(cfg.SpoofPath); err != nil {
		return nil, fmt.Errorf("spoof model file: %w", err)
	}

	net := gocv.ReadNet(cfg.SpoofPath, "")
	if net.Empty() {
		return nil, fmt.Errorf("failed to load spoof model from %s", cfg.SpoofPath)
	}
	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	return &Classifier{net: net}, nil
}

// Close releases the network.
func (c *Classifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.net.Close()
}

func (c *Classifier) Classify(ctx context.Context, faceImage []byte) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	img, err := gocv.IMDecode(faceImage, gocv.IMReadColor)
	if err != nil || img.Empty() {
		return 0, domain.ErrInvalidImage.WithError(err)
	}
	defer img.Close()

	blob := gocv.BlobFromImage(img, 1.0/255.0,
		image.Pt(spoofInput, spoofInput),
		gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	c.net.SetInput(blob, "")
	output := c.net.Forward("")
	defer output.Close()

	// Output is [live, spoof] probabilities.
	score := float64(output.GetFloatAt(0, 1))
	if score < 0 {
		return 0, nil
	}
	if score > 1 {
		return 1, nil
	}
	return score, nil
}
