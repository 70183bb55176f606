package opencv

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLandmarks_NormalizedToFrame(t *testing.T) {
	rect := image.Rect(100, 100, 300, 300)

	points := landmarks(rect, 400, 400)

	require.Len(t, points, 5)
	for _, p := range points {
		assert.GreaterOrEqual(t, p.X, 0.25)
		assert.LessOrEqual(t, p.X, 0.75)
		assert.GreaterOrEqual(t, p.Y, 0.25)
		assert.LessOrEqual(t, p.Y, 0.75)
	}

	// Left eye sits left of the right eye, mouth below the eyes.
	assert.Less(t, points[0].X, points[1].X)
	assert.Less(t, points[0].Y, points[3].Y)
}

func TestLandmarks_EmptyFrame(t *testing.T) {
	assert.Nil(t, landmarks(image.Rect(0, 0, 10, 10), 0, 0))
}

func TestNewAnalyzer_MissingFiles(t *testing.T) {
	_, err := NewAnalyzer(Config{
		CascadePath:  "does-not-exist.xml",
		EmbedderPath: "does-not-exist.onnx",
	})
	require.Error(t, err)
}

func TestNewClassifier_MissingFile(t *testing.T) {
	_, err := NewClassifier(Config{SpoofPath: "does-not-exist.onnx"})
	require.Error(t, err)
}
