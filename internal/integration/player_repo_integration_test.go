package integration

import (
	"context"
	"os"
	"testing"
	"time"

	"farm_webapp/internal/domain"
	"farm_webapp/internal/farm"
	"farm_webapp/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Requires a migrated database; set DATABASE_URL to run.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}
	pool, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

func TestPlayerRepoEnsureGetMerge(t *testing.T) {
	pool := testPool(t)
	repo := repository.NewPlayerRepository(pool)
	ctx := context.Background()
	id := uuid.NewString()

	_, err := repo.Get(ctx, id)
	assert.ErrorIs(t, err, domain.ErrPlayerNotFound)

	created, err := repo.Ensure(ctx, domain.NewPlayer(id, domain.SourceAnonymous))
	require.NoError(t, err)
	assert.Equal(t, int64(domain.StartingSilver), created.Silver)

	// a second Ensure never resets the stored record
	created.Silver = 0
	again, err := repo.Ensure(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, int64(domain.StartingSilver), again.Silver)

	snap := domain.Snapshot{
		Silver: 42,
		Gold:   1,
		Crops: []domain.Crop{
			{Slot: 2, Type: domain.CropWheat, PlantedAt: time.Now().UTC().Truncate(time.Second)},
		},
		Unlocks:      map[string]bool{domain.UnlockBeetSeeds: true},
		HasOnboarded: true,
	}
	require.NoError(t, repo.MergeSnapshot(ctx, id, snap))

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.Silver)
	assert.Equal(t, int64(1), got.Gold)
	require.Len(t, got.Crops, 1)
	assert.Equal(t, domain.CropWheat, got.Crops[0].Type)
	assert.True(t, got.Unlocks[domain.UnlockBeetSeeds])
	assert.True(t, got.HasOnboarded)
}

func TestPlayerRepoMergeUnknownPlayer(t *testing.T) {
	pool := testPool(t)
	repo := repository.NewPlayerRepository(pool)

	err := repo.MergeSnapshot(context.Background(), uuid.NewString(), domain.Snapshot{Silver: 1})
	assert.ErrorIs(t, err, domain.ErrPlayerNotFound)
}

// Full write-behind path: engine mutations land in the players table.
func TestEngineWritesThrough(t *testing.T) {
	pool := testPool(t)
	repo := repository.NewPlayerRepository(pool)
	ctx := context.Background()
	id := uuid.NewString()

	p, err := repo.Ensure(ctx, domain.NewPlayer(id, domain.SourceAnonymous))
	require.NoError(t, err)

	e := farm.NewEngine(p, repo)
	_, err = e.Plant(ctx, 0, domain.CropWheat)
	require.NoError(t, err)

	stored, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(8), stored.Silver)
	require.Len(t, stored.Crops, 1)
	assert.Equal(t, 0, stored.Crops[0].Slot)
}
