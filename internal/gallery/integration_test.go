//go:build integration

package gallery

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/saturnino-fabrica-de-software/vigil/internal/database"
	"github.com/saturnino-fabrica-de-software/vigil/internal/domain"
	"github.com/saturnino-fabrica-de-software/vigil/internal/match"
)

func setupIntegrationTest(t *testing.T) (*pgxpool.Pool, func()) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "pgvector/pgvector:pg16",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "vigil_test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("postgres://test:test@%s:%s/vigil_test?sslmode=disable", host, port.Port())

	// Bring the schema up with the embedded migrations, the same path
	// cmd/vigil takes on boot.
	sqlDB, err := database.NewPool(database.DefaultPoolConfig(connStr))
	require.NoError(t, err)
	migrator, err := database.NewMigrator(sqlDB, "vigil_test")
	require.NoError(t, err)
	require.NoError(t, migrator.Up())
	require.NoError(t, migrator.Close())

	db, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	}

	return db, cleanup
}

func TestEnrollmentRoundTrip_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupIntegrationTest(t)
	defer cleanup()

	ctx := context.Background()
	store := NewPostgresStore(db)

	embedding := make([]float64, 256)
	for i := range embedding {
		embedding[i] = float64(i%17)/17.0 - 0.5
	}
	embedding = match.Normalize(embedding)

	sig := &domain.Signature{
		Name:      "Ann Doe",
		Embedding: embedding,
		Landmarks: []domain.Point{{X: 0.4, Y: 0.3}, {X: 0.6, Y: 0.3}},
	}
	require.NoError(t, store.Insert(ctx, sig))

	// Reload the gallery and match with the original query embedding.
	// The stored vector went through a float32 round trip, so this also
	// checks that the fingerprint survives the storage precision.
	snap, err := Load(ctx, store)
	require.NoError(t, err)
	require.Equal(t, 1, snap.Len())

	stored := snap.Signatures()[0]
	assert.Equal(t, "Ann Doe", stored.Name)
	assert.Len(t, stored.Landmarks, 2)

	strategy := &match.FingerprintStrategy{}
	got := strategy.Match(domain.Signature{Embedding: embedding}, snap.Signatures())
	require.NotNil(t, got)
	assert.Equal(t, "Ann Doe", got.Name)

	// Delete and confirm the gallery is empty again.
	require.NoError(t, store.Delete(ctx, sig.ID))
	snap, err = Load(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Len())
}
