package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies DUEWIN_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known DUEWIN_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e. not
// empty). This lets operators inject secrets at deploy time without touching
// the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Postgres ──
	setStr(&cfg.Postgres.DSN, "DUEWIN_POSTGRES_DSN")
	setStr(&cfg.Postgres.DSN, "DUEWIN_POSTGRES_URL") // compatibility alias
	setStr(&cfg.Postgres.Host, "DUEWIN_POSTGRES_HOST")
	setInt(&cfg.Postgres.Port, "DUEWIN_POSTGRES_PORT")
	setStr(&cfg.Postgres.Database, "DUEWIN_POSTGRES_DATABASE")
	setStr(&cfg.Postgres.User, "DUEWIN_POSTGRES_USER")
	setStr(&cfg.Postgres.Password, "DUEWIN_POSTGRES_PASSWORD")
	setStr(&cfg.Postgres.SSLMode, "DUEWIN_POSTGRES_SSL_MODE")
	setInt(&cfg.Postgres.PoolMaxConns, "DUEWIN_POSTGRES_POOL_MAX_CONNS")
	setInt(&cfg.Postgres.PoolMinConns, "DUEWIN_POSTGRES_POOL_MIN_CONNS")
	setBool(&cfg.Postgres.RunMigrations, "DUEWIN_POSTGRES_RUN_MIGRATIONS")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "DUEWIN_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "DUEWIN_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "DUEWIN_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "DUEWIN_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "DUEWIN_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "DUEWIN_REDIS_TLS_ENABLED")

	// ── S3 ──
	setStr(&cfg.S3.Endpoint, "DUEWIN_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "DUEWIN_S3_REGION")
	setStr(&cfg.S3.Bucket, "DUEWIN_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "DUEWIN_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "DUEWIN_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "DUEWIN_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "DUEWIN_S3_FORCE_PATH_STYLE")

	// ── Engine ──
	setInt64(&cfg.Engine.FeeBps, "DUEWIN_ENGINE_FEE_BPS")
	setDuration(&cfg.Engine.ResolveTimeout, "DUEWIN_ENGINE_RESOLVE_TIMEOUT")
	setDuration(&cfg.Engine.EventTTL, "DUEWIN_ENGINE_EVENT_TTL")
	setDuration(&cfg.Engine.ExposureRetention, "DUEWIN_ENGINE_EXPOSURE_RETENTION")

	// ── Archive ──
	setBool(&cfg.Archive.Enabled, "DUEWIN_ARCHIVE_ENABLED")
	setInt(&cfg.Archive.RetentionDays, "DUEWIN_ARCHIVE_RETENTION_DAYS")
	setDuration(&cfg.Archive.Interval, "DUEWIN_ARCHIVE_INTERVAL")
	setBool(&cfg.Archive.Prune, "DUEWIN_ARCHIVE_PRUNE")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "DUEWIN_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "DUEWIN_SERVER_PORT")
	setStringSlice(&cfg.Server.CORSOrigins, "DUEWIN_SERVER_CORS_ORIGINS")
	setStr(&cfg.Server.APIKey, "DUEWIN_SERVER_API_KEY")
	setInt(&cfg.Server.RateLimit, "DUEWIN_SERVER_RATE_LIMIT")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "DUEWIN_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "DUEWIN_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "DUEWIN_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "DUEWIN_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.Mode, "DUEWIN_MODE")
	setStr(&cfg.LogLevel, "DUEWIN_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
