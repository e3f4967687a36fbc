package repositories

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/lleps/peinbol/pkg/repositories/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close(context.Background()) })
	return repo
}

func TestSQLiteRepository_TopKillers(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	match := uuid.New()

	kills := []models.Kill{
		{Killer: "ana", Victim: "bob"},
		{Killer: "ana", Victim: "carl"},
		{Killer: "bob", Victim: "ana"},
		{Killer: "carl", Victim: "bob"},
		{Killer: "ana", Victim: "bob"},
	}
	for i := range kills {
		kills[i].MatchID = match
		kills[i].Timestamp = int64(i)
		require.NoError(t, repo.RecordKill(ctx, &kills[i]))
	}

	tests := []struct {
		name  string
		limit int
		want  []*models.KillerScore
	}{
		{
			name:  "all",
			limit: 10,
			want: []*models.KillerScore{
				{Name: "ana", Kills: 3},
				{Name: "bob", Kills: 1},
				{Name: "carl", Kills: 1},
			},
		},
		{
			name:  "limited",
			limit: 1,
			want:  []*models.KillerScore{{Name: "ana", Kills: 3}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.TopKillers(ctx, tt.limit)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSQLiteRepository_PlayerStats(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	require.NoError(t, repo.RecordKill(ctx, &models.Kill{MatchID: uuid.New(), Killer: "ana", Victim: "bob"}))
	require.NoError(t, repo.RecordKill(ctx, &models.Kill{MatchID: uuid.New(), Killer: "bob", Victim: "ana"}))
	require.NoError(t, repo.RecordKill(ctx, &models.Kill{MatchID: uuid.New(), Killer: "bob", Victim: "carl"}))

	stats, err := repo.PlayerStats(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, &models.PlayerStats{Name: "bob", Kills: 2, Deaths: 1}, stats)

	_, err = repo.PlayerStats(ctx, "nobody")
	assert.True(t, IsNotFound(err))
}

func TestNewRepository_schemes(t *testing.T) {
	ctx := context.Background()

	repo, err := NewRepository(ctx, "sqlite://:memory:")
	require.NoError(t, err)
	assert.IsType(t, &SQLiteRepository{}, repo)
	require.NoError(t, repo.Close(ctx))

	_, err = NewRepository(ctx, "mysql://localhost/db")
	assert.Error(t, err)
	_, err = NewRepository(ctx, "peinbol.db")
	assert.Error(t, err)
	_, err = NewRepository(ctx, "sqlite://")
	assert.Error(t, err)
}
