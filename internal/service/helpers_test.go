package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nuvix-market/nuvix-suite/internal/domain"
	"github.com/nuvix-market/nuvix-suite/internal/events"
	"github.com/nuvix-market/nuvix-suite/internal/repository"
)

var baseTime = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *eventRecorder) handle(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *eventRecorder) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type testEnv struct {
	store     *repository.FileStore
	clock     *fakeClock
	recorder  *eventRecorder
	stats     *StatsService
	tickets   *TicketService
	blacklist *BlacklistService
	reviews   *ReviewService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := repository.NewFileStore(t.TempDir(), nil)
	require.NoError(t, err)

	clock := &fakeClock{now: baseTime}
	dispatcher := events.NewInMemoryDispatcher()
	recorder := &eventRecorder{}
	events.SubscribeAll(dispatcher, recorder.handle)

	stats := NewStatsService(store.Stats(), nil)
	return &testEnv{
		store:    store,
		clock:    clock,
		recorder: recorder,
		stats:    stats,
		tickets: NewTicketService(TicketDependencies{
			Tickets:    store.Tickets(),
			Blacklist:  store.Blacklist(),
			Stats:      stats,
			Dispatcher: dispatcher,
			Clock:      clock.Now,
		}),
		blacklist: NewBlacklistService(BlacklistDependencies{
			Blacklist:  store.Blacklist(),
			Dispatcher: dispatcher,
			Clock:      clock.Now,
		}),
		reviews: NewReviewService(ReviewDependencies{
			Reviews:    store.Reviews(),
			Dispatcher: dispatcher,
			Clock:      clock.Now,
		}),
	}
}

func (e *testEnv) open(t *testing.T, opener domain.Snowflake, category domain.Category, channel domain.Snowflake) *domain.Ticket {
	t.Helper()
	ticket, err := e.tickets.Open(context.Background(), OpenTicketInput{ChannelID: channel, OpenerID: opener, Category: category})
	require.NoError(t, err)
	return ticket
}

// ticketRepoMock is a func-field TicketRepository for failure paths.
type ticketRepoMock struct {
	GetFn    func(ctx context.Context, channelID domain.Snowflake) (*domain.Ticket, error)
	PutFn    func(ctx context.Context, t *domain.Ticket) error
	DeleteFn func(ctx context.Context, channelID domain.Snowflake) (*domain.Ticket, error)
	ListFn   func(ctx context.Context) ([]domain.Ticket, error)
}

func (m *ticketRepoMock) Get(ctx context.Context, channelID domain.Snowflake) (*domain.Ticket, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, channelID)
	}
	return nil, repository.ErrNotFound
}

func (m *ticketRepoMock) Put(ctx context.Context, t *domain.Ticket) error {
	if m.PutFn != nil {
		return m.PutFn(ctx, t)
	}
	return nil
}

func (m *ticketRepoMock) Delete(ctx context.Context, channelID domain.Snowflake) (*domain.Ticket, error) {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, channelID)
	}
	return nil, repository.ErrNotFound
}

func (m *ticketRepoMock) List(ctx context.Context) ([]domain.Ticket, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	return nil, nil
}
