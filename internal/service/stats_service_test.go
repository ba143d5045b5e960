package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nuvix-market/nuvix-suite/internal/domain"
)

func TestStatsCountersStartLazily(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	stat, err := env.stats.Get(ctx, 7)
	require.NoError(t, err)
	assert.Zero(t, stat.Claims)
	assert.Zero(t, stat.Closed)

	require.NoError(t, env.stats.RecordClaim(ctx, 7))
	require.NoError(t, env.stats.RecordClose(ctx, 7))
	require.NoError(t, env.stats.RecordMessage(ctx, 7, 100))
	require.NoError(t, env.stats.RecordMessage(ctx, 7, 100))

	stat, err = env.stats.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, stat.Claims)
	assert.Equal(t, 1, stat.Closed)
	assert.Equal(t, 2, stat.MessagesByTicket[100])
}

func TestActiveTicketCount(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	stat := domain.NewStaffStat(7)
	stat.MessagesByTicket = map[domain.Snowflake]int{10: 5, 20: 4, 30: 7}
	require.NoError(t, env.store.Stats().Put(ctx, stat))

	n, err := env.stats.ActiveTicketCount(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = env.stats.ActiveTicketCount(ctx, 8)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestLeaderboard(t *testing.T) {
	ctx := context.Background()

	put := func(t *testing.T, env *testEnv, id domain.Snowflake, closed, claims int) {
		t.Helper()
		stat := domain.NewStaffStat(id)
		stat.Closed = closed
		stat.Claims = claims
		require.NoError(t, env.store.Stats().Put(ctx, stat))
	}
	ids := func(stats []domain.StaffStat) []domain.Snowflake {
		out := make([]domain.Snowflake, 0, len(stats))
		for _, s := range stats {
			out = append(out, s.StaffID)
		}
		return out
	}

	t.Run("ranks by closed then claims", func(t *testing.T) {
		env := newTestEnv(t)
		put(t, env, 1, 3, 5) // A
		put(t, env, 2, 3, 9) // B
		put(t, env, 3, 5, 1) // C

		board, err := env.stats.Leaderboard(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, []domain.Snowflake{3, 2, 1}, ids(board))
	})

	t.Run("ties keep insertion order", func(t *testing.T) {
		env := newTestEnv(t)
		put(t, env, 9, 1, 1)
		put(t, env, 4, 1, 1)
		put(t, env, 6, 1, 1)

		board, err := env.stats.Leaderboard(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, []domain.Snowflake{9, 4, 6}, ids(board))
	})

	t.Run("truncates to topN and defaults to ten", func(t *testing.T) {
		env := newTestEnv(t)
		for i := 1; i <= 12; i++ {
			put(t, env, domain.Snowflake(i), i, 0)
		}
		board, err := env.stats.Leaderboard(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, []domain.Snowflake{12, 11, 10}, ids(board))

		board, err = env.stats.Leaderboard(ctx, 0)
		require.NoError(t, err)
		assert.Len(t, board, DefaultLeaderboardSize)
	})
}
