package app

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nuvix-market/nuvix-suite/internal/api/discord"
	"github.com/nuvix-market/nuvix-suite/internal/config"
)

// fakeGateway records the lifecycle calls. Its REST methods are never reached
// while no interaction arrives.
type fakeGateway struct {
	discord.Session

	mu       sync.Mutex
	handlers int
	opened   bool
	closed   bool
}

func (g *fakeGateway) AddHandler(interface{}) func() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.handlers++
	return func() {}
}

func (g *fakeGateway) Open() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.opened = true
	return nil
}

func (g *fakeGateway) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.closed = true
	return nil
}

func testConfig(t *testing.T) *config.Config {
	dir := t.TempDir()
	return &config.Config{
		App: config.AppConfig{Name: "nuvix_tickets", Host: "127.0.0.1", Port: "0", Version: "test"},
		Storage: config.StorageConfig{
			Driver:         config.StoreDriverFile,
			DataDir:        filepath.Join(dir, "data"),
			TranscriptsDir: filepath.Join(dir, "transcripts"),
			AuditLogPath:   filepath.Join(dir, "audit.jsonl"),
		},
		Sweeper: config.SweeperConfig{IntervalMinutes: 60, InactivityHours: 24},
		Queue:   config.QueueConfig{Size: 8},
	}
}

func TestNewRequiresToken(t *testing.T) {
	_, err := New(context.Background(), testConfig(t), Options{})
	assert.EqualError(t, err, "TOKEN is required")
}

func TestRunStopsOnCancel(t *testing.T) {
	gateway := &fakeGateway{}
	a, err := New(context.Background(), testConfig(t), Options{Gateway: gateway})
	require.NoError(t, err)
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	require.Eventually(t, func() bool {
		gateway.mu.Lock()
		defer gateway.mu.Unlock()
		return gateway.opened
	}, 2*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("app did not stop")
	}
	gateway.mu.Lock()
	defer gateway.mu.Unlock()
	assert.True(t, gateway.closed)
	assert.Equal(t, 3, gateway.handlers)
}
