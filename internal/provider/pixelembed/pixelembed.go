// Package pixelembed derives deterministic embeddings straight from face
// pixels. Providers whose backing service does not expose embedding
// vectors (Rekognition keeps them internal) use it so matching still has
// a vector to work with; the mock provider uses it as its entire model.
package pixelembed

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

// Side is the grayscale grid dimension; embeddings have Side*Side
// components.
const Side = 16

// Decode parses an encoded image.
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	return img, err
}

// GrayGrid collapses an image to a Side*Side grayscale grid of luma
// values in [0,255].
func GrayGrid(img image.Image) []float64 {
	dst := image.NewRGBA(image.Rect(0, 0, Side, Side))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)

	grid := make([]float64, Side*Side)
	for y := 0; y < Side; y++ {
		for x := 0; x < Side; x++ {
			r, g, b, _ := dst.At(x, y).RGBA()
			// ITU-R BT.601 luma.
			grid[y*Side+x] = 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
		}
	}
	return grid
}

// Variance returns the luma variance of a grid.
func Variance(grid []float64) float64 {
	if len(grid) == 0 {
		return 0
	}

	var mean float64
	for _, v := range grid {
		mean += v
	}
	mean /= float64(len(grid))

	var sum float64
	for _, v := range grid {
		d := v - mean
		sum += d * d
	}
	return sum / float64(len(grid))
}

// Embed maps a grid to a unit-length vector with components in [-1,1].
func Embed(grid []float64) []float64 {
	emb := make([]float64, len(grid))
	for i, v := range grid {
		emb[i] = (v/255.0)*2 - 1
	}

	var norm float64
	for _, v := range emb {
		norm += v * v
	}
	if norm == 0 {
		return emb
	}
	norm = math.Sqrt(norm)
	for i := range emb {
		emb[i] /= norm
	}
	return emb
}

// FromImage is the full pipeline: decoded image to embedding.
func FromImage(img image.Image) []float64 {
	return Embed(GrayGrid(img))
}
