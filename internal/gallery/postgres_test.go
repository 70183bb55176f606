package gallery

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/vigil/internal/domain"
)

func TestPostgresStore_List(t *testing.T) {
	id1 := uuid.New()
	id2 := uuid.New()
	now := time.Now()

	vec := pgvector.NewVector([]float32{0.5, -0.5})
	landmarks, err := json.Marshal([]domain.Point{{X: 0.1, Y: 0.2}})
	require.NoError(t, err)

	tests := []struct {
		name      string
		mockSetup func(mock pgxmock.PgxPoolIface)
		wantNames []string
		wantErr   bool
	}{
		{
			name: "returns signatures in enrollment order",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows([]string{
					"id", "name", "embedding", "landmarks", "spoof_score", "created_at",
				}).AddRow(
					id1, "Ann", &vec, landmarks, (*float64)(nil), now,
				).AddRow(
					id2, "Bob", (*pgvector.Vector)(nil), []byte(nil), (*float64)(nil), now.Add(time.Second),
				)

				mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, embedding, landmarks, spoof_score, created_at`)).
					WillReturnRows(rows)
			},
			wantNames: []string{"Ann", "Bob"},
		},
		{
			name: "empty gallery",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, embedding, landmarks, spoof_score, created_at`)).
					WillReturnRows(pgxmock.NewRows([]string{
						"id", "name", "embedding", "landmarks", "spoof_score", "created_at",
					}))
			},
			wantNames: nil,
		},
		{
			name: "database error",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, embedding, landmarks, spoof_score, created_at`)).
					WillReturnError(errors.New("connection reset"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.mockSetup(mock)

			store := NewPostgresStore(mock)
			got, err := store.List(context.Background())

			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			var names []string
			for _, s := range got {
				names = append(names, s.Name)
			}
			assert.Equal(t, tt.wantNames, names)

			if len(got) > 0 {
				assert.Equal(t, []float64{0.5, -0.5}, got[0].Embedding)
				assert.Equal(t, []domain.Point{{X: 0.1, Y: 0.2}}, got[0].Landmarks)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresStore_Insert(t *testing.T) {
	now := time.Now()

	t.Run("assigns id and persists", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO signatures`)).
			WithArgs(pgxmock.AnyArg(), "Ann Doe", pgxmock.AnyArg(), pgxmock.AnyArg(), (*float64)(nil)).
			WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(now))

		store := NewPostgresStore(mock)
		sig := &domain.Signature{
			Name:      "Ann Doe",
			Embedding: []float64{0.25, 0.75},
			Landmarks: []domain.Point{{X: 0.5, Y: 0.5}},
		}

		require.NoError(t, store.Insert(context.Background(), sig))
		assert.NotEqual(t, uuid.Nil, sig.ID)
		assert.Equal(t, now, sig.CreatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("storage failure is wrapped", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO signatures`)).
			WithArgs(pgxmock.AnyArg(), "Bob", pgxmock.AnyArg(), pgxmock.AnyArg(), (*float64)(nil)).
			WillReturnError(errors.New("disk full"))

		store := NewPostgresStore(mock)
		err = store.Insert(context.Background(), &domain.Signature{Name: "Bob"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "insert signature")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresStore_Count(t *testing.T) {
	t.Run("counts enrollments", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM signatures`)).
			WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))

		store := NewPostgresStore(mock)
		count, err := store.Count(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, 3, count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query failure", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM signatures`)).
			WillReturnError(errors.New("connection reset"))

		store := NewPostgresStore(mock)
		_, err = store.Count(context.Background())

		assert.Error(t, err)
	})
}

func TestPostgresStore_Delete(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name      string
		mockSetup func(mock pgxmock.PgxPoolIface)
		wantErr   error
	}{
		{
			name: "deletes existing signature",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM signatures`)).
					WithArgs(id).
					WillReturnResult(pgxmock.NewResult("DELETE", 1))
			},
		},
		{
			name: "missing signature",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM signatures`)).
					WithArgs(id).
					WillReturnResult(pgxmock.NewResult("DELETE", 0))
			},
			wantErr: domain.ErrSignatureNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.mockSetup(mock)

			store := NewPostgresStore(mock)
			err = store.Delete(context.Background(), id)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
