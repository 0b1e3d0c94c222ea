// Package config defines the top-level configuration for the round engine
// and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by DUEWIN_* environment variables.
type Config struct {
	Postgres PostgresConfig `toml:"postgres"`
	Redis    RedisConfig    `toml:"redis"`
	S3       S3Config       `toml:"s3"`
	Engine   EngineConfig   `toml:"engine"`
	Archive  ArchiveConfig  `toml:"archive"`
	Server   ServerConfig   `toml:"server"`
	Notify   NotifyConfig   `toml:"notify"`
	Mode     string         `toml:"mode"`
	LogLevel string         `toml:"log_level"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// S3Config holds S3-compatible object storage parameters.
type S3Config struct {
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// TrackConfig declares the round tracks for one game. Every listed duration
// becomes an independently scheduled track on the given timeline.
type TrackConfig struct {
	Game      string `toml:"game"`
	Durations []int  `toml:"durations"` // seconds
	Timeline  string `toml:"timeline"`

	// CutoffSeconds is the pre-close window during which bets are rejected.
	CutoffSeconds int `toml:"cutoff_seconds"`

	// BettorThreshold is the minimum count of distinct bettors in a period
	// for the random selection path; below it the protection path applies.
	BettorThreshold int `toml:"bettor_threshold"`
}

// EngineConfig holds round engine parameters.
type EngineConfig struct {
	Tracks []TrackConfig `toml:"tracks"`

	// FeeBps is the platform fee retained from the gross stake, in basis
	// points.
	FeeBps int64 `toml:"fee_bps"`

	// ResolveTimeout bounds one settlement attempt.
	ResolveTimeout duration `toml:"resolve_timeout"`

	// EventTTL is how long event dedup and ordering state is retained. Must
	// exceed the longest track duration.
	EventTTL duration `toml:"event_ttl"`

	// ExposureRetention is the TTL on per-period exposure ledger keys.
	ExposureRetention duration `toml:"exposure_retention"`
}

// ArchiveConfig holds cold-storage parameters for settled bets and results.
type ArchiveConfig struct {
	Enabled       bool     `toml:"enabled"`
	RetentionDays int      `toml:"retention_days"`
	Interval      duration `toml:"interval"`
	Prune         bool     `toml:"prune"`
}

// duration is a wrapper around time.Duration that supports TOML string decoding
// (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Enabled     bool     `toml:"enabled"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
	APIKey      string   `toml:"api_key"`
	RateLimit   int      `toml:"rate_limit"` // requests per second per client; 0 disables
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// Defaults returns a Config populated with reasonable default values.
func Defaults() Config {
	return Config{
		Postgres: PostgresConfig{
			Host:          "localhost",
			Port:          5432,
			Database:      "duewin",
			User:          "postgres",
			SSLMode:       "disable",
			PoolMaxConns:  10,
			PoolMinConns:  2,
			RunMigrations: true,
		},
		Redis: RedisConfig{
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
			TLSEnabled: false,
		},
		S3: S3Config{
			Endpoint:       "http://localhost:9000",
			Region:         "us-east-1",
			Bucket:         "duewin-archive",
			UseSSL:         false,
			ForcePathStyle: true,
		},
		Engine: EngineConfig{
			Tracks: []TrackConfig{
				{Game: "wingo", Durations: []int{30, 60, 180, 300}, Timeline: "default", CutoffSeconds: 5, BettorThreshold: 5},
				{Game: "k3", Durations: []int{60, 180, 300, 600}, Timeline: "default", CutoffSeconds: 5, BettorThreshold: 5},
				{Game: "fived", Durations: []int{60, 180, 300, 600}, Timeline: "default", CutoffSeconds: 5, BettorThreshold: 5},
				{Game: "trxwin", Durations: []int{60, 180, 300}, Timeline: "default", CutoffSeconds: 5, BettorThreshold: 5},
			},
			FeeBps:            200,
			ResolveTimeout:    duration{30 * time.Second},
			EventTTL:          duration{15 * time.Minute},
			ExposureRetention: duration{time.Hour},
		},
		Archive: ArchiveConfig{
			Enabled:       false,
			RetentionDays: 30,
			Interval:      duration{24 * time.Hour},
			Prune:         false,
		},
		Server: ServerConfig{
			Enabled:     true,
			Port:        8000,
			CORSOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
			RateLimit:   20,
		},
		Notify: NotifyConfig{
			Events: []string{"settlement_failed", "store_unavailable", "error"},
		},
		Mode:     "full",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"engine": true,
	"server": true,
	"full":   true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validGames enumerates the supported games.
var validGames = map[string]bool{
	"wingo":  true,
	"k3":     true,
	"fived":  true,
	"trxwin": true,
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validModes[strings.ToLower(c.Mode)] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: engine, server, full)", c.Mode))
	}

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Postgres
	if strings.TrimSpace(c.Postgres.DSN) == "" {
		if c.Postgres.Host == "" {
			errs = append(errs, "postgres: host must not be empty (or set postgres.dsn)")
		}
		if c.Postgres.Port <= 0 || c.Postgres.Port > 65535 {
			errs = append(errs, fmt.Sprintf("postgres: port must be 1-65535, got %d", c.Postgres.Port))
		}
		if c.Postgres.Database == "" {
			errs = append(errs, "postgres: database must not be empty")
		}
	}
	if c.Postgres.PoolMaxConns < 1 {
		errs = append(errs, "postgres: pool_max_conns must be >= 1")
	}
	if c.Postgres.PoolMinConns < 0 {
		errs = append(errs, "postgres: pool_min_conns must be >= 0")
	}
	if c.Postgres.PoolMinConns > c.Postgres.PoolMaxConns {
		errs = append(errs, "postgres: pool_min_conns must not exceed pool_max_conns")
	}

	// Redis
	if c.Redis.Addr == "" {
		errs = append(errs, "redis: addr must not be empty")
	}
	if c.Redis.PoolSize < 1 {
		errs = append(errs, "redis: pool_size must be >= 1")
	}

	// S3 is only required when archiving is enabled.
	if c.Archive.Enabled {
		if c.S3.Endpoint == "" {
			errs = append(errs, "s3: endpoint must not be empty when archive is enabled")
		}
		if c.S3.Bucket == "" {
			errs = append(errs, "s3: bucket must not be empty when archive is enabled")
		}
		if c.Archive.RetentionDays < 1 {
			errs = append(errs, "archive: retention_days must be >= 1")
		}
	}

	// Engine tracks
	if len(c.Engine.Tracks) == 0 {
		errs = append(errs, "engine: at least one track must be configured")
	}
	for i, t := range c.Engine.Tracks {
		if !validGames[t.Game] {
			errs = append(errs, fmt.Sprintf("engine.tracks[%d]: unknown game %q (valid: wingo, k3, fived, trxwin)", i, t.Game))
		}
		if len(t.Durations) == 0 {
			errs = append(errs, fmt.Sprintf("engine.tracks[%d]: durations must not be empty", i))
		}
		for _, dur := range t.Durations {
			if dur <= 0 {
				errs = append(errs, fmt.Sprintf("engine.tracks[%d]: duration %d must be positive", i, dur))
			} else if t.CutoffSeconds >= dur {
				errs = append(errs, fmt.Sprintf("engine.tracks[%d]: cutoff_seconds %d must be less than duration %d", i, t.CutoffSeconds, dur))
			}
		}
		if t.CutoffSeconds < 0 {
			errs = append(errs, fmt.Sprintf("engine.tracks[%d]: cutoff_seconds must be >= 0", i))
		}
		if t.BettorThreshold < 0 {
			errs = append(errs, fmt.Sprintf("engine.tracks[%d]: bettor_threshold must be >= 0", i))
		}
	}
	if c.Engine.FeeBps < 0 || c.Engine.FeeBps > 10000 {
		errs = append(errs, fmt.Sprintf("engine: fee_bps must be 0-10000, got %d", c.Engine.FeeBps))
	}
	if c.Engine.EventTTL.Duration > 0 {
		for _, t := range c.Engine.Tracks {
			for _, dur := range t.Durations {
				if time.Duration(dur)*time.Second >= c.Engine.EventTTL.Duration {
					errs = append(errs, fmt.Sprintf("engine: event_ttl %s must exceed track duration %ds", c.Engine.EventTTL.Duration, dur))
				}
			}
		}
	}

	// Server
	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
		if c.Server.RateLimit < 0 {
			errs = append(errs, "server: rate_limit must be >= 0")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
