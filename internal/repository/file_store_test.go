package repository

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nuvix-market/nuvix-suite/internal/domain"
)

func TestFileStoreContract(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), nil)
	require.NoError(t, err)
	runStoreContract(t, store)
}

func TestFileStoreStartsEmptyWithoutFiles(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "fresh"), nil)
	require.NoError(t, err)

	snap := store.Snapshot()
	assert.Empty(t, snap.Tickets)
	assert.Empty(t, snap.Stats)
	assert.Empty(t, snap.Blacklist)
	assert.Empty(t, snap.Reviews)
}

func TestFileStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewFileStore(dir, nil)
	require.NoError(t, err)

	ticket := mustTicket(t, 1234567890123456789, 11, t0)
	staff := domain.Snowflake(987654321987654321)
	ticket.AssignedTo = &staff
	require.NoError(t, store.Tickets().Put(ctx, ticket))

	second := domain.NewStaffStat(staff)
	second.Claims = 4
	second.MessagesByTicket[ticket.ChannelID] = 9
	first := domain.NewStaffStat(5)
	require.NoError(t, store.Stats().Put(ctx, first))
	require.NoError(t, store.Stats().Put(ctx, second))

	_, err = store.Blacklist().Put(ctx, 77)
	require.NoError(t, err)
	review, err := domain.NewReview(11, ticket.ChannelID, 4, "fast", t0)
	require.NoError(t, err)
	require.NoError(t, store.Reviews().Append(ctx, review))

	reloaded, err := NewFileStore(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, store.Snapshot(), reloaded.Snapshot())

	raw, err := os.ReadFile(filepath.Join(dir, StatsFile))
	require.NoError(t, err)
	assert.Less(t, strings.Index(string(raw), `"5"`), strings.Index(string(raw), `"987654321987654321"`))
}

func TestFileStoreRejectsMalformedRecords(t *testing.T) {
	cases := map[string]struct {
		file    string
		content string
	}{
		"broken json":       {TicketsFile, `{`},
		"unknown category":  {TicketsFile, `{"1":{"channel_id":1,"opener_id":2,"category":"refund","created_at":"2024-05-01T12:00:00Z","updated_at":"2024-05-01T12:00:00Z"}}`},
		"key mismatch":      {TicketsFile, `{"1":{"channel_id":3,"opener_id":2,"category":"support","created_at":"2024-05-01T12:00:00Z","updated_at":"2024-05-01T12:00:00Z"}}`},
		"negative counter":  {StatsFile, `{"5":{"claims":-1,"closed":0,"messages_by_ticket":{}}}`},
		"stats not object":  {StatsFile, `[]`},
		"review stars":      {ReviewsFile, `[{"user_id":1,"channel_id":2,"stars":9,"comment":"","created_at":"2024-05-01T12:00:00Z"}]`},
		"blacklist strings": {BlacklistFile, `["abc"]`},
		"bad timestamp":     {TicketsFile, `{"1":{"channel_id":1,"opener_id":2,"category":"support","created_at":"yesterday","updated_at":"yesterday"}}`},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, tc.file), []byte(tc.content), 0o644))
			_, err := NewFileStore(dir, nil)
			assert.Error(t, err)
		})
	}
}

func TestFileStoreLoadsZonelessTimestamps(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	files := map[string]string{
		TicketsFile: `{"100": {"channel_id": 100, "opener_id": 42, "category": "support",
			"created_at": "2024-06-01T09:00:00.123456", "updated_at": "2024-06-01T10:30:00",
			"assigned_to": 7, "warned_inactive_at": "2024-06-02T10:30:00.5"},
			"200": {"channel_id": 200, "opener_id": 43, "category": "replace",
			"created_at": "2024-06-01T09:00:00", "updated_at": "2024-06-01T09:00:00",
			"assigned_to": null, "warned_inactive_at": null}}`,
		StatsFile:     `{"7": {"claims": 1, "closed": 0, "messages_by_ticket": {"100": 3}}}`,
		BlacklistFile: `[99]`,
		ReviewsFile:   `[{"user_id": 42, "channel_id": 300, "stars": 5, "comment": "quick", "created_at": "2024-05-30T18:00:00.000001"}]`,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	store, err := NewFileStore(dir, nil)
	require.NoError(t, err)

	ticket, err := store.Tickets().Get(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 1, 9, 0, 0, 123456000, time.UTC), ticket.CreatedAt)
	assert.Equal(t, time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC), ticket.UpdatedAt)
	require.NotNil(t, ticket.WarnedInactiveAt)
	assert.Equal(t, time.Date(2024, 6, 2, 10, 30, 0, 500000000, time.UTC), *ticket.WarnedInactiveAt)
	assert.Equal(t, domain.Snowflake(7), ticket.AssignedToID())

	other, err := store.Tickets().Get(ctx, 200)
	require.NoError(t, err)
	assert.False(t, other.IsAssigned())
	assert.False(t, other.IsWarned())

	reviews, err := store.Reviews().List(ctx)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, time.Date(2024, 5, 30, 18, 0, 0, 1000, time.UTC), reviews[0].CreatedAt)

	// The next write stores RFC 3339.
	_, err = store.Blacklist().Put(ctx, 100)
	require.NoError(t, err)
	raw, err := os.ReadFile(filepath.Join(dir, TicketsFile))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"2024-06-01T09:00:00.123456Z"`)
}

func TestFileStoreRollsBackOnWriteFailure(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	dir := filepath.Join(root, "data")
	store, err := NewFileStore(dir, nil)
	require.NoError(t, err)
	require.NoError(t, store.Tickets().Put(ctx, mustTicket(t, 1, 2, t0)))

	require.NoError(t, os.RemoveAll(dir))
	require.NoError(t, os.WriteFile(dir, []byte("not a dir"), 0o644))

	err = store.Tickets().Put(ctx, mustTicket(t, 3, 4, t0))
	require.Error(t, err)

	list, err := store.Tickets().List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.Snowflake(1), list[0].ChannelID)
}

func TestFileStoreHonorsCanceledContext(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), nil)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, store.Tickets().Put(ctx, mustTicket(t, 1, 2, t0)), context.Canceled)
	_, err = store.Tickets().List(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
