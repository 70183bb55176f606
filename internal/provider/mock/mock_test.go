package mock

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/vigil/internal/domain"
	"github.com/saturnino-fabrica-de-software/vigil/internal/provider/pixelembed"
)

// testImage renders a small PNG with per-pixel values from fn.
func testImage(t *testing.T, fn func(x, y int) color.Color) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, fn(x, y))
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func faceFrame(t *testing.T) []byte {
	return testImage(t, func(x, y int) color.Color {
		return color.RGBA{R: uint8(x * 4), G: uint8(y * 4), B: uint8((x + y) * 2), A: 255}
	})
}

func flatFrame(t *testing.T) []byte {
	return testImage(t, func(x, y int) color.Color {
		return color.RGBA{R: 128, G: 128, B: 128, A: 255}
	})
}

func TestAnalyzer_Analyze(t *testing.T) {
	a := NewAnalyzer()
	ctx := context.Background()

	t.Run("textured frame yields a face capture", func(t *testing.T) {
		capture, err := a.Analyze(ctx, faceFrame(t))
		require.NoError(t, err)
		require.True(t, capture.FaceFound)
		assert.Len(t, capture.Embedding, pixelembed.Side*pixelembed.Side)
		assert.NotEmpty(t, capture.Landmarks)
		assert.NotEmpty(t, capture.FaceImage)
	})

	t.Run("uniform frame is a normal no-face outcome", func(t *testing.T) {
		capture, err := a.Analyze(ctx, flatFrame(t))
		require.NoError(t, err)
		assert.False(t, capture.FaceFound)
		assert.Empty(t, capture.Embedding)
	})

	t.Run("undecodable frame is an error", func(t *testing.T) {
		_, err := a.Analyze(ctx, []byte("not an image"))
		require.Error(t, err)
		var appErr *domain.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, domain.ErrInvalidImage.Code, appErr.Code)
	})
}

func TestAnalyzer_Deterministic(t *testing.T) {
	a := NewAnalyzer()
	ctx := context.Background()
	frame := faceFrame(t)

	first, err := a.Analyze(ctx, frame)
	require.NoError(t, err)
	second, err := a.Analyze(ctx, frame)
	require.NoError(t, err)

	assert.Equal(t, first.Embedding, second.Embedding)
}

func TestAnalyzer_EmbeddingIsUnitLength(t *testing.T) {
	a := NewAnalyzer()

	capture, err := a.Analyze(context.Background(), faceFrame(t))
	require.NoError(t, err)

	var norm float64
	for _, v := range capture.Embedding {
		norm += v * v
	}
	assert.InDelta(t, 1.0, norm, 1e-9)
}

func TestClassifier_Classify(t *testing.T) {
	c := NewClassifier()
	ctx := context.Background()

	flat, err := c.Classify(ctx, flatFrame(t))
	require.NoError(t, err)

	textured, err := c.Classify(ctx, faceFrame(t))
	require.NoError(t, err)

	// A featureless image must look more like a spoof than a detailed one.
	assert.Greater(t, flat, textured)
	assert.GreaterOrEqual(t, flat, 0.0)
	assert.LessOrEqual(t, flat, 1.0)
	assert.GreaterOrEqual(t, textured, 0.0)
	assert.LessOrEqual(t, textured, 1.0)
}

func TestClassifier_BadImage(t *testing.T) {
	c := NewClassifier()

	_, err := c.Classify(context.Background(), []byte{0x00})
	assert.Error(t, err)
}
