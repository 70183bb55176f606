package domain

import (
	"time"

	"github.com/google/uuid"
)

// Point is a 2D facial landmark coordinate, normalized to the frame.
// Landmarks are carried for overlay rendering only and never participate
// in matching.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Signature is an enrolled face: an embedding plus identity metadata.
// Embedding and Landmarks are immutable once the signature is created.
type Signature struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Embedding  []float64 `json:"-"`
	Landmarks  []Point   `json:"landmarks,omitempty"`
	SpoofScore *float64  `json:"spoof_score,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// HasEmbedding reports whether the signature carries an embedding vector.
// A signature without one can never match (absence of a detected face is a
// normal runtime state, not a failure).
func (s *Signature) HasEmbedding() bool {
	return len(s.Embedding) > 0
}

// Clone returns a deep copy. Gallery snapshots hand out clones so a live
// session never observes storage-side mutation.
func (s *Signature) Clone() Signature {
	c := Signature{
		ID:        s.ID,
		Name:      s.Name,
		CreatedAt: s.CreatedAt,
	}
	if s.Embedding != nil {
		c.Embedding = make([]float64, len(s.Embedding))
		copy(c.Embedding, s.Embedding)
	}
	if s.Landmarks != nil {
		c.Landmarks = make([]Point, len(s.Landmarks))
		copy(c.Landmarks, s.Landmarks)
	}
	if s.SpoofScore != nil {
		v := *s.SpoofScore
		c.SpoofScore = &v
	}
	return c
}

// Capture is the analyzer output for a single camera frame.
// FaceFound=false with empty fields is the normal "no face in frame"
// outcome, not an error.
type Capture struct {
	FaceFound bool      `json:"face_found"`
	Embedding []float64 `json:"-"`
	Landmarks []Point   `json:"landmarks,omitempty"`
	FaceImage []byte    `json:"-"`
	Frame     []byte    `json:"-"`
}

// Recognition is the transient per-frame result: the capture, the matched
// signature (nil when no enrolled face matched) and the spoof score (nil
// when the liveness classifier could not run). Never persisted.
type Recognition struct {
	Capture    Capture    `json:"capture"`
	Match      *Signature `json:"match,omitempty"`
	SpoofScore *float64   `json:"spoof_score,omitempty"`
	At         time.Time  `json:"at"`
}

// Matched reports whether this frame resolved to an enrolled identity.
func (r *Recognition) Matched() bool {
	return r.Match != nil
}
