package observability

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nuvix-market/nuvix-suite/internal/config"
)

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(config.LoggerConfig{Level: "not-a-level"}, "tickets")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.InfoLevel))
	assert.False(t, logger.Core().Enabled(zap.DebugLevel))

	debug, err := NewLogger(config.LoggerConfig{Level: "DEBUG"}, "")
	require.NoError(t, err)
	assert.True(t, debug.Core().Enabled(zap.DebugLevel))
}

func TestNewAuditLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "audit.jsonl")

	audit, err := NewAuditLogger(path)
	require.NoError(t, err)
	audit.Info("ticket_opened", zap.String("channel_id", "100"))
	require.NoError(t, audit.Sync())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"event":"ticket_opened"`)
	assert.Contains(t, string(raw), `"channel_id":"100"`)

	nop, err := NewAuditLogger("")
	require.NoError(t, err)
	assert.NotNil(t, nop)
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()

	m.SetActiveTickets(3)
	m.TicketOpened("support")
	m.TicketClosed("closed")
	m.TicketClosed("deleted")
	m.ReviewSubmitted("5")
	m.RecordCommand("close", "ok")
	m.RecordJob("assign", 10*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ticketsOpened.WithLabelValues("support")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ticketsActive))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reviews.WithLabelValues("5")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.commands.WithLabelValues("close", "ok")))

	families, err := m.Registry.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestMetricsNilReceiver(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.TicketOpened("support")
		m.RecordRequest("/", "GET", "200")
		m.NotificationFailed("dm")
	})
}
