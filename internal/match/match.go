// Package match decides whether a query signature corresponds to any
// enrolled signature. Matching is a pure function of the query and a
// gallery snapshot: no side effects, no I/O.
package match

import (
	"github.com/saturnino-fabrica-de-software/vigil/internal/domain"
)

// Strategy is the pluggable comparison predicate. Implementations iterate
// the snapshot in its given order and return the first signature that
// satisfies the predicate, or nil when the query has no embedding, the
// snapshot is empty, or nothing matches.
type Strategy interface {
	Match(query domain.Signature, snapshot []domain.Signature) *domain.Signature
}

const (
	StrategyFingerprint = "fingerprint"
	StrategyDistance    = "distance"
)

// New returns the strategy for a config name. Unknown names fall back to
// the fingerprint strategy.
func New(name string, threshold float64) Strategy {
	if name == StrategyDistance {
		return &DistanceStrategy{Threshold: threshold}
	}
	return &FingerprintStrategy{}
}

// FingerprintStrategy matches by exact equality of a coarse fingerprint
// derived from the embedding. Identity is defined extensionally by this
// predicate: two signatures are "the same face" iff their fingerprints
// collide.
type FingerprintStrategy struct{}

func (s *FingerprintStrategy) Match(query domain.Signature, snapshot []domain.Signature) *domain.Signature {
	if !query.HasEmbedding() {
		return nil
	}

	want := Fingerprint(query.Embedding)
	for i := range snapshot {
		if !snapshot[i].HasEmbedding() {
			continue
		}
		if Fingerprint(snapshot[i].Embedding) == want {
			return &snapshot[i]
		}
	}
	return nil
}

// DistanceStrategy matches by cosine similarity against a threshold.
// Still first-match in snapshot order rather than nearest-neighbor, so the
// tie-break behavior is identical to the fingerprint strategy.
type DistanceStrategy struct {
	Threshold float64
}

func (s *DistanceStrategy) Match(query domain.Signature, snapshot []domain.Signature) *domain.Signature {
	if !query.HasEmbedding() {
		return nil
	}

	for i := range snapshot {
		if !snapshot[i].HasEmbedding() {
			continue
		}
		if CosineSimilarity(query.Embedding, snapshot[i].Embedding) >= s.Threshold {
			return &snapshot[i]
		}
	}
	return nil
}

var (
	_ Strategy = (*FingerprintStrategy)(nil)
	_ Strategy = (*DistanceStrategy)(nil)
)
