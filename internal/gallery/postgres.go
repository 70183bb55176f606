package gallery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"

	"github.com/saturnino-fabrica-de-software/vigil/internal/domain"
)

// DB is the subset of pgxpool.Pool the store needs (compatible with
// pgxmock).
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// PostgresStore persists signatures in Postgres with a pgvector embedding
// column. Landmarks are stored as JSONB.
type PostgresStore struct {
	db DB
}

func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

var _ Store = (*PostgresStore)(nil)

func (s *PostgresStore) List(ctx context.Context) ([]domain.Signature, error) {
	query := `
		SELECT id, name, embedding, landmarks, spoof_score, created_at
		FROM signatures
		ORDER BY created_at, id
	`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list signatures: %w", err)
	}
	defer rows.Close()

	var sigs []domain.Signature
	for rows.Next() {
		var sig domain.Signature
		var embedding *pgvector.Vector
		var landmarks []byte

		if err := rows.Scan(&sig.ID, &sig.Name, &embedding, &landmarks, &sig.SpoofScore, &sig.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan signature: %w", err)
		}

		sig.Embedding = vectorToFloat64(embedding)

		if len(landmarks) > 0 {
			if err := json.Unmarshal(landmarks, &sig.Landmarks); err != nil {
				return nil, fmt.Errorf("decode landmarks for %s: %w", sig.ID, err)
			}
		}

		sigs = append(sigs, sig)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list signatures: %w", err)
	}

	return sigs, nil
}

func (s *PostgresStore) Insert(ctx context.Context, sig *domain.Signature) error {
	query := `
		INSERT INTO signatures (id, name, embedding, landmarks, spoof_score, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING created_at
	`

	if sig.ID == uuid.Nil {
		sig.ID = uuid.New()
	}

	var embedding *pgvector.Vector
	if len(sig.Embedding) > 0 {
		vec := pgvector.NewVector(float64ToFloat32(sig.Embedding))
		embedding = &vec
	}

	landmarks, err := json.Marshal(sig.Landmarks)
	if err != nil {
		return fmt.Errorf("encode landmarks: %w", err)
	}

	err = s.db.QueryRow(ctx, query,
		sig.ID,
		sig.Name,
		embedding,
		landmarks,
		sig.SpoofScore,
	).Scan(&sig.CreatedAt)

	if err != nil {
		return fmt.Errorf("insert signature: %w", err)
	}

	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		DELETE FROM signatures
		WHERE id = $1
	`

	result, err := s.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete signature: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrSignatureNotFound
	}

	return nil
}

// Count returns the number of enrolled signatures.
func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM signatures`).Scan(&count)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("count signatures: %w", err)
	}
	return count, nil
}

func vectorToFloat64(v *pgvector.Vector) []float64 {
	if v == nil || v.Slice() == nil {
		return nil
	}
	out := make([]float64, len(v.Slice()))
	for i, f := range v.Slice() {
		out[i] = float64(f)
	}
	return out
}

func float64ToFloat32(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, f := range in {
		out[i] = float32(f)
	}
	return out
}
