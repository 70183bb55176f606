package match

import (
	"encoding/binary"
	"hash/fnv"
	"math"
)

// quantizationStep is the bucket width used when collapsing embedding
// components. Small per-frame jitter in the producer's output must land
// in the same bucket or live recognition would flicker.
const quantizationStep = 0.05

// Fingerprint derives a coarse, lossy 64-bit summary of an embedding:
// each component is quantized to a bucket index and the bucket sequence
// is hashed with FNV-1a. Equal fingerprints define identity for the
// fingerprint strategy.
func Fingerprint(embedding []float64) uint64 {
	h := fnv.New64a()
	var buf [2]byte

	for _, v := range embedding {
		bucket := int16(math.Round(v / quantizationStep))
		binary.LittleEndian.PutUint16(buf[:], uint16(bucket))
		_, _ = h.Write(buf[:])
	}

	return h.Sum64()
}

// CosineSimilarity returns the cosine of the angle between two embedding
// vectors: 1.0 identical, 0.0 orthogonal. Mismatched or empty vectors
// score 0.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0.0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Normalize scales an embedding to unit length for consistent similarity
// calculations. Zero vectors are returned unchanged.
func Normalize(embedding []float64) []float64 {
	if len(embedding) == 0 {
		return embedding
	}

	var norm float64
	for _, v := range embedding {
		norm += v * v
	}
	if norm == 0 {
		return embedding
	}

	norm = math.Sqrt(norm)
	normalized := make([]float64, len(embedding))
	for i, v := range embedding {
		normalized[i] = v / norm
	}
	return normalized
}
