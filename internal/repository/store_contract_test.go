package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nuvix-market/nuvix-suite/internal/domain"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func mustTicket(t *testing.T, channel, opener domain.Snowflake, at time.Time) *domain.Ticket {
	t.Helper()
	ticket, err := domain.NewTicket(channel, opener, domain.CategorySupport, at)
	require.NoError(t, err)
	return ticket
}

// runStoreContract exercises the behavior every backend must share.
func runStoreContract(t *testing.T, store Store) {
	ctx := context.Background()

	t.Run("tickets", func(t *testing.T) {
		repo := store.Tickets()
		_, err := repo.Get(ctx, 1)
		assert.ErrorIs(t, err, ErrNotFound)

		later := mustTicket(t, 20, 2, t0.Add(time.Hour))
		earlier := mustTicket(t, 10, 1, t0)
		require.NoError(t, repo.Put(ctx, later))
		require.NoError(t, repo.Put(ctx, earlier))

		staff := domain.Snowflake(900)
		warned := t0.Add(2 * time.Hour)
		earlier.AssignedTo = &staff
		earlier.WarnedInactiveAt = &warned
		earlier.UpdatedAt = warned
		require.NoError(t, repo.Put(ctx, earlier))

		got, err := repo.Get(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, staff, got.AssignedToID())
		assert.True(t, got.WarnedInactiveAt.Equal(warned))

		list, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, domain.Snowflake(10), list[0].ChannelID)
		assert.Equal(t, domain.Snowflake(20), list[1].ChannelID)

		removed, err := repo.Delete(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, domain.Snowflake(1), removed.OpenerID)
		_, err = repo.Delete(ctx, 10)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("stats keep first insertion order", func(t *testing.T) {
		repo := store.Stats()
		_, err := repo.Get(ctx, 7)
		assert.ErrorIs(t, err, ErrNotFound)

		b := domain.NewStaffStat(200)
		b.Claims = 1
		a := domain.NewStaffStat(100)
		a.Closed = 2
		a.MessagesByTicket[55] = 6
		require.NoError(t, repo.Put(ctx, b))
		require.NoError(t, repo.Put(ctx, a))

		b.Claims = 3
		require.NoError(t, repo.Put(ctx, b))

		list, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, domain.Snowflake(200), list[0].StaffID)
		assert.Equal(t, 3, list[0].Claims)
		assert.Equal(t, domain.Snowflake(100), list[1].StaffID)
		assert.Equal(t, 6, list[1].MessagesByTicket[55])

		got, err := repo.Get(ctx, 100)
		require.NoError(t, err)
		assert.Equal(t, 1, got.ActiveTickets())
	})

	t.Run("blacklist", func(t *testing.T) {
		repo := store.Blacklist()
		added, err := repo.Put(ctx, 42)
		require.NoError(t, err)
		assert.True(t, added)
		added, err = repo.Put(ctx, 42)
		require.NoError(t, err)
		assert.False(t, added)
		_, err = repo.Put(ctx, 41)
		require.NoError(t, err)

		ok, err := repo.Contains(ctx, 42)
		require.NoError(t, err)
		assert.True(t, ok)

		ids, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []domain.Snowflake{42, 41}, ids)

		removed, err := repo.Delete(ctx, 42)
		require.NoError(t, err)
		assert.True(t, removed)
		removed, err = repo.Delete(ctx, 42)
		require.NoError(t, err)
		assert.False(t, removed)
	})

	t.Run("reviews append in order", func(t *testing.T) {
		repo := store.Reviews()
		first, err := domain.NewReview(1, 10, 5, "great", t0)
		require.NoError(t, err)
		second, err := domain.NewReview(2, 20, 1, "", t0.Add(time.Minute))
		require.NoError(t, err)
		require.NoError(t, repo.Append(ctx, first))
		require.NoError(t, repo.Append(ctx, second))

		list, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, first.ID, list[0].ID)
		assert.Equal(t, 1, list[1].Stars)
	})
}
