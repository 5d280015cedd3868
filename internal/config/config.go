// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers defaults, an optional YAML file and environment variables.
// - External errors are wrapped via this package's sentinel kinds.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// RedisURL points at the hot store. Empty selects the in-memory
	// store (single-instance mode).
	RedisURL string `koanf:"redis_url"`

	// PostgresDSN points at the durable store. Empty selects the
	// in-memory store (no persistence across restarts).
	PostgresDSN string `koanf:"postgres_dsn"`

	// CurrentSeason is the active season label, e.g. "2024/25".
	CurrentSeason string `koanf:"current_season"`

	// SyncEnabled toggles the recurring dirty-key sync.
	SyncEnabled bool `koanf:"sync_enabled"`

	// SyncIntervalMS is the dirty-key sync cadence in milliseconds.
	SyncIntervalMS int `koanf:"sync_interval_ms"`

	// SnapshotTTLMin bounds the lifetime of live snapshots, team-game
	// markers and game subscriptions in minutes.
	SnapshotTTLMin int `koanf:"snapshot_ttl_min"`

	// RosterRefreshHours is the name directory refresh cadence.
	RosterRefreshHours int `koanf:"roster_refresh_hours"`

	// FlushOnCompletion flushes a game's subjects to the durable store
	// right after the game is completed.
	FlushOnCompletion bool `koanf:"flush_on_completion"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		Addr:               ":8080",
		CurrentSeason:      "2024/25",
		SyncEnabled:        true,
		SyncIntervalMS:     60_000,
		SnapshotTTLMin:     240,
		RosterRefreshHours: 24,
		FlushOnCompletion:  true,
	}
}
