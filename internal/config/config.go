package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Host      HostConfig      `toml:"host"`
	Database  DatabaseConfig  `toml:"database"`
	Scripting ScriptingConfig `toml:"scripting"`
	Manifest  ManifestConfig  `toml:"manifest"`
	Journal   JournalConfig   `toml:"journal"`
	Logging   LoggingConfig   `toml:"logging"`
}

type HostConfig struct {
	Name      string        `toml:"name"`
	TickRate  time.Duration `toml:"tick_rate"`
	MaxFrames uint64        `toml:"max_frames"` // 0 = run until signalled
	StartTime int64         // set at boot, not from config
}

// DatabaseConfig configures the transition journal store. An empty DSN keeps
// the journal in the log only.
type DatabaseConfig struct {
	DSN             string        `toml:"dsn"`
	MaxOpenConns    int           `toml:"max_open_conns"`
	MaxIdleConns    int           `toml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`
}

type ScriptingConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

type ManifestConfig struct {
	Path string `toml:"path"`
}

type JournalConfig struct {
	FlushFrames int `toml:"flush_frames"` // flush buffered transitions every N frames
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML on top of the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.Host.TickRate <= 0 {
		return nil, fmt.Errorf("host.tick_rate must be positive, got %s", cfg.Host.TickRate)
	}
	if cfg.Journal.FlushFrames <= 0 {
		cfg.Journal.FlushFrames = 1
	}
	cfg.Host.StartTime = time.Now().Unix()
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Host: HostConfig{
			Name:     "uihost",
			TickRate: 50 * time.Millisecond,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    4,
			MaxIdleConns:    1,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Scripting: ScriptingConfig{
			Enabled: true,
			Dir:     "scripts/controllers",
		},
		Manifest: ManifestConfig{
			Path: "data/yaml/controllers.yaml",
		},
		Journal: JournalConfig{
			FlushFrames: 20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
