package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store drivers.
const (
	StoreDriverFile     = "file"
	StoreDriverPostgres = "postgres"
	StoreDriverRedis    = "redis"
)

// Config aggregates runtime configuration for one bot instance.
type Config struct {
	App      AppConfig
	Discord  DiscordConfig
	Roles    RolesConfig
	Storage  StorageConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Sweeper  SweeperConfig
	Review   ReviewConfig
	Queue    QueueConfig
}

// AppConfig controls process level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// DiscordConfig holds the bot token and the guild objects it writes to.
// Zero-valued ids disable the corresponding feature.
type DiscordConfig struct {
	Token                string
	GuildID              string
	TicketCategoryID     string
	LogsChannelID        string
	CmdLogsChannelID     string
	TranscriptsChannelID string
	ReviewsChannelID     string
	BannerURL            string
	FooterText           string
	SyncCommands         bool
}

// RolesConfig maps permission tiers to guild role ids.
type RolesConfig struct {
	TrialSupport string
	Support      string
	Staff        string
	HighStaff    string
	Admin        string
	Owner        string
}

// StorageConfig selects the store backend and local paths.
type StorageConfig struct {
	Driver         string
	DataDir        string
	TranscriptsDir string
	AuditLogPath   string
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines the read API authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	APIKeyHash            string
	APIKeyTier            string
}

// SweeperConfig tunes the inactivity sweep.
type SweeperConfig struct {
	IntervalMinutes int
	InactivityHours int
}

// ReviewConfig tunes the review prompt.
type ReviewConfig struct {
	PromptTTLMinutes int
}

// QueueConfig sizes the command queue.
type QueueConfig struct {
	Size int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads configuration from the current environment only.
func FromEnv() (*Config, error) {
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	dataDir := getEnv("DATA_DIR", "data")
	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("BOT_NAME", "Nuvix Tickets"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("PORT", "10000"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Discord: DiscordConfig{
			Token:                os.Getenv("TOKEN"),
			GuildID:              getID("GUILD_ID"),
			TicketCategoryID:     getID("TICKET_CATEGORY_ID"),
			LogsChannelID:        getID("LOGS_CHANNEL_ID"),
			CmdLogsChannelID:     getID("CMD_LOGS_CHANNEL_ID"),
			TranscriptsChannelID: getID("TRANSCRIPTS_CHANNEL_ID"),
			ReviewsChannelID:     getID("REVIEWS_CHANNEL_ID"),
			BannerURL:            os.Getenv("BANNER_URL"),
			FooterText:           getEnv("FOOTER_TEXT", "Nuvix Market • Your wishes, more cheap!"),
			SyncCommands:         getEnvAsBool("DISCORD_SYNC_COMMANDS", true),
		},
		Roles: RolesConfig{
			TrialSupport: getID("TRIAL_SUPPORT_ROLE_ID"),
			Support:      getID("SUPPORT_ROLE_ID"),
			Staff:        getID("STAFF_ROLE_ID"),
			HighStaff:    getID("HIGH_STAFF_ROLE_ID"),
			Admin:        getID("ADMIN_ROLE_ID"),
			Owner:        getID("OWNER_ROLE_ID"),
		},
		Storage: StorageConfig{
			Driver:         strings.ToLower(getEnv("STORE_DRIVER", StoreDriverFile)),
			DataDir:        dataDir,
			TranscriptsDir: getEnv("TRANSCRIPTS_DIR", dataDir+"/transcripts"),
			AuditLogPath:   getEnv("AUDIT_LOG_PATH", "logs/audit.jsonl"),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:      getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password:  os.Getenv("REDIS_PASSWORD"),
			DB:        redisDB,
			KeyPrefix: getEnv("REDIS_KEY_PREFIX", "nuvix"),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             os.Getenv("API_JWT_SECRET"),
			AccessTokenTTLMinutes: getEnvAsInt("API_ACCESS_TOKEN_TTL_MINUTES", 60),
			APIKeyHash:            os.Getenv("API_KEY_HASH"),
			APIKeyTier:            getEnv("API_KEY_TIER", "high_staff"),
		},
		Sweeper: SweeperConfig{
			IntervalMinutes: getEnvAsInt("SWEEP_INTERVAL_MINUTES", 60),
			InactivityHours: getEnvAsInt("INACTIVITY_HOURS", 24),
		},
		Review: ReviewConfig{
			PromptTTLMinutes: getEnvAsInt("REVIEW_PROMPT_TTL_MINUTES", 5),
		},
		Queue: QueueConfig{
			Size: getEnvAsInt("COMMAND_QUEUE_SIZE", 256),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings that would make the process misbehave.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StoreDriverFile, StoreDriverPostgres, StoreDriverRedis:
	default:
		return fmt.Errorf("invalid STORE_DRIVER %q", c.Storage.Driver)
	}
	if c.Storage.Driver == StoreDriverPostgres && c.Postgres.DSN == "" {
		return fmt.Errorf("STORE_DRIVER=postgres requires POSTGRES_DSN")
	}
	if c.Sweeper.IntervalMinutes <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL_MINUTES must be positive")
	}
	if c.Sweeper.InactivityHours <= 0 {
		return fmt.Errorf("INACTIVITY_HOURS must be positive")
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Interval returns the sweep interval.
func (s SweeperConfig) Interval() time.Duration {
	return time.Duration(s.IntervalMinutes) * time.Minute
}

// InactivityThreshold returns how long a ticket may idle before a warning.
func (s SweeperConfig) InactivityThreshold() time.Duration {
	return time.Duration(s.InactivityHours) * time.Hour
}

// PromptTTL returns the review prompt window.
func (r ReviewConfig) PromptTTL() time.Duration {
	if r.PromptTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(r.PromptTTLMinutes) * time.Minute
}

// AccessTokenTTL returns the API token lifetime.
func (a AuthConfig) AccessTokenTTL() time.Duration {
	return time.Duration(a.AccessTokenTTLMinutes) * time.Minute
}

// APIEnabled reports whether the token endpoints can issue anything.
func (a AuthConfig) APIEnabled() bool {
	return a.JWTSecret != ""
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getID reads a Discord id and treats "0" as unset.
func getID(key string) string {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "0" {
		return ""
	}
	return val
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
