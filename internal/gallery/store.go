// Package gallery owns the enrolled signature set: persistent storage and
// the immutable snapshots a recognition session matches against.
package gallery

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/vigil/internal/domain"
)

// Store is the persistence contract for enrolled signatures. List returns
// signatures in enrollment order; matching iterates that order and stops
// at the first hit, so the order is part of the contract.
type Store interface {
	List(ctx context.Context) ([]domain.Signature, error)
	Insert(ctx context.Context, sig *domain.Signature) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Snapshot is a point-in-time copy of the gallery. A session holds exactly
// one snapshot at a time and swaps the whole reference on reload; the
// contents are never mutated after Load returns.
type Snapshot struct {
	signatures []domain.Signature
	loadedAt   time.Time
}

// Load reads the full gallery and clones every record into a fresh
// snapshot, so later storage writes can never tear a comparison in
// progress.
func Load(ctx context.Context, store Store) (*Snapshot, error) {
	sigs, err := store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load gallery: %w", err)
	}

	cloned := make([]domain.Signature, len(sigs))
	for i := range sigs {
		cloned[i] = sigs[i].Clone()
	}

	return &Snapshot{signatures: cloned, loadedAt: time.Now()}, nil
}

// Empty returns a snapshot with no signatures, for sessions before their
// first load.
func Empty() *Snapshot {
	return &Snapshot{loadedAt: time.Now()}
}

// Signatures returns the snapshot contents in enrollment order. Callers
// must treat the slice as read-only.
func (s *Snapshot) Signatures() []domain.Signature {
	return s.signatures
}

func (s *Snapshot) Len() int {
	return len(s.signatures)
}

func (s *Snapshot) LoadedAt() time.Time {
	return s.loadedAt
}
