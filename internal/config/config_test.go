package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("PORT", "")
	t.Setenv("GUILD_ID", "0")
	for _, key := range []string{"DATA_DIR", "TRANSCRIPTS_DIR", "SWEEP_INTERVAL_MINUTES", "INACTIVITY_HOURS", "REVIEW_PROMPT_TTL_MINUTES", "API_JWT_SECRET"} {
		t.Setenv(key, "")
	}

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, StoreDriverFile, cfg.Storage.Driver)
	assert.Equal(t, "10000", cfg.App.Port)
	assert.Equal(t, "", cfg.Discord.GuildID, "0 means unset")
	assert.Equal(t, time.Hour, cfg.Sweeper.Interval())
	assert.Equal(t, 24*time.Hour, cfg.Sweeper.InactivityThreshold())
	assert.Equal(t, 5*time.Minute, cfg.Review.PromptTTL())
	assert.Equal(t, "data/transcripts", cfg.Storage.TranscriptsDir)
	assert.False(t, cfg.Auth.APIEnabled())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("TOKEN", "secret-token")
	t.Setenv("ADMIN_ROLE_ID", "1432829605298962534")
	t.Setenv("SWEEP_INTERVAL_MINUTES", "15")
	t.Setenv("STORE_DRIVER", "Redis")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("API_JWT_SECRET", "jwt")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "secret-token", cfg.Discord.Token)
	assert.Equal(t, "1432829605298962534", cfg.Roles.Admin)
	assert.Equal(t, 15*time.Minute, cfg.Sweeper.Interval())
	assert.Equal(t, StoreDriverRedis, cfg.Storage.Driver)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.True(t, cfg.Auth.APIEnabled())
}

func TestFromEnvInvalid(t *testing.T) {
	t.Run("bad redis db", func(t *testing.T) {
		t.Setenv("REDIS_DB", "one")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "REDIS_DB")
	})

	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "mongo")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "STORE_DRIVER")
	})

	t.Run("postgres without dsn", func(t *testing.T) {
		t.Setenv("STORE_DRIVER", "postgres")
		t.Setenv("POSTGRES_DSN", "")
		_, err := FromEnv()
		assert.ErrorContains(t, err, "POSTGRES_DSN")
	})

	t.Run("non-numeric interval falls back", func(t *testing.T) {
		t.Setenv("SWEEP_INTERVAL_MINUTES", "soon")
		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.Equal(t, 60, cfg.Sweeper.IntervalMinutes)
	})
}

func TestParseManifest(t *testing.T) {
	raw := []byte(`
base_port: 11000
stagger: 500ms
bots:
  - name: nuvix_tickets
    token_env: NUVIX_TICKETS_TOKEN
    env:
      GUILD_ID: "123"
  - name: nuvix_support
    token_env: NUVIX_SUPPORT_TOKEN
    port: 12000
`)

	m, err := ParseManifest(raw)
	require.NoError(t, err)

	assert.Equal(t, 500*time.Millisecond, m.Stagger)
	assert.Equal(t, "data", m.DataDir)
	require.Len(t, m.Bots, 2)
	assert.Equal(t, "123", m.Bots[0].Env["GUILD_ID"])
	assert.Equal(t, 11000, m.PortFor(0))
	assert.Equal(t, 12000, m.PortFor(1))
}

func TestParseManifestInvalid(t *testing.T) {
	cases := map[string]string{
		"empty":          `bots: []`,
		"missing token":  "bots:\n  - name: a\n",
		"duplicate name": "bots:\n  - {name: a, token_env: A}\n  - {name: a, token_env: B}\n",
		"port clash":     "base_port: 100\nbots:\n  - {name: a, token_env: A}\n  - {name: b, token_env: B, port: 100}\n",
		"not yaml":       "bots: [",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseManifest([]byte(raw))
			assert.Error(t, err)
		})
	}
}

func TestLoadManifestMissingFile(t *testing.T) {
	m, err := LoadManifest(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultManifest(), m)
}

func TestLoadManifestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "launcher.yaml")
	require.NoError(t, os.WriteFile(path, []byte("bots:\n  - {name: a, token_env: A}\n"), 0o600))

	m, err := LoadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, m.Stagger)
	assert.Equal(t, "a", m.Bots[0].Name)
}
