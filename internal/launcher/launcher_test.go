package launcher

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nuvix-market/nuvix-suite/internal/config"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func testManifest() *config.Manifest {
	return &config.Manifest{
		BasePort: 12000,
		DataDir:  "data",
		Bots: []config.BotSpec{
			{Name: "nuvix_tickets", TokenEnv: "TICKETS_TOKEN", Env: map[string]string{"LOG_LEVEL": "debug"}},
			{Name: "nuvix_management", TokenEnv: "MANAGEMENT_TOKEN"},
			{Name: "nuvix_ai", TokenEnv: "AI_TOKEN", Port: 13000},
		},
	}
}

func fakeEnv(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestPlanSkipsMissingTokens(t *testing.T) {
	l, err := New(testManifest(), Options{
		Executable: "/bin/nuvix",
		LookupEnv:  fakeEnv(map[string]string{"TICKETS_TOKEN": "t1", "AI_TOKEN": "t3", "MANAGEMENT_TOKEN": ""}),
	})
	require.NoError(t, err)

	plan := l.Plan()
	require.Len(t, plan, 2)

	assert.Equal(t, "nuvix_tickets", plan[0].Name)
	assert.Equal(t, 12000, plan[0].Port)
	assert.Equal(t, map[string]string{
		"TOKEN":     "t1",
		"PORT":      "12000",
		"BOT_NAME":  "nuvix_tickets",
		"DATA_DIR":  "data/nuvix_tickets",
		"LOG_LEVEL": "debug",
	}, plan[0].Env)

	assert.Equal(t, "nuvix_ai", plan[1].Name)
	assert.Equal(t, 13000, plan[1].Port)
}

func TestRunNothingToLaunch(t *testing.T) {
	l, err := New(testManifest(), Options{Executable: "/bin/nuvix", LookupEnv: fakeEnv(nil)})
	require.NoError(t, err)
	assert.ErrorIs(t, l.Run(context.Background()), ErrNothingToLaunch)
}

func TestRunPrefixesChildOutput(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	color.NoColor = true

	var (
		mu      sync.Mutex
		started []string
	)
	out := &syncBuffer{}
	l, err := New(testManifest(), Options{
		Executable: "/bin/nuvix",
		LookupEnv:  fakeEnv(map[string]string{"TICKETS_TOKEN": "t1", "AI_TOKEN": "t3"}),
		Command: func(ctx context.Context, name string, args ...string) *exec.Cmd {
			mu.Lock()
			started = append(started, name+" "+strings.Join(args, " "))
			mu.Unlock()
			return exec.CommandContext(ctx, "sh", "-c", `echo "ready $BOT_NAME on $PORT"`)
		},
		Stdout: out,
		Stderr: out,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, l.Run(ctx))

	assert.Equal(t, []string{"/bin/nuvix bot", "/bin/nuvix bot"}, started)
	assert.Contains(t, out.String(), "[nuvix_tickets] ready nuvix_tickets on 12000\n")
	assert.Contains(t, out.String(), "[nuvix_ai] ready nuvix_ai on 13000\n")
}

func TestPrefixWriterBuffersPartialLines(t *testing.T) {
	var out bytes.Buffer
	w := newPrefixWriter(&out, "[bot]")

	_, _ = w.Write([]byte("hel"))
	assert.Empty(t, out.String())
	_, _ = w.Write([]byte("lo\nwor"))
	_, _ = w.Write([]byte("ld\n"))
	assert.Equal(t, "[bot] hello\n[bot] world\n", out.String())
}

func TestMergeEnv(t *testing.T) {
	got := mergeEnv([]string{"PATH=/bin", "PORT=1", "HOME=/root"}, map[string]string{"PORT": "2", "TOKEN": "x"})
	assert.Equal(t, []string{"PATH=/bin", "HOME=/root", "PORT=2", "TOKEN=x"}, got)
}
