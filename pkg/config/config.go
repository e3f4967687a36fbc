package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// EnvPrefix prefixes the environment variables that override the file.
const EnvPrefix = "PEINBOL_"

type Config struct {
	Server   ServerConfig   `toml:"server"`
	Game     GameConfig     `toml:"game"`
	API      APIConfig      `toml:"api"`
	Database DatabaseConfig `toml:"database"`
	Logging  LoggingConfig  `toml:"logging"`
}

type ServerConfig struct {
	BindAddress  string        `toml:"bind_address"`
	OutQueueSize int           `toml:"out_queue_size"` // frames buffered per connection before it is dropped
	WriteTimeout time.Duration `toml:"write_timeout"`
}

type GameConfig struct {
	TickInterval      time.Duration `toml:"tick_interval"`
	BroadcastInterval time.Duration `toml:"broadcast_interval"`
	BulletTTL         time.Duration `toml:"bullet_ttl"`
	FireCooldown      time.Duration `toml:"fire_cooldown"`
	Seed              int64         `toml:"seed"` // 0 picks a time based seed
}

type APIConfig struct {
	Enabled bool   `toml:"enabled"`
	Address string `toml:"address"`
}

type DatabaseConfig struct {
	// URL selects the stats backend: sqlite://path or postgres://...; empty disables stats
	URL           string        `toml:"url"`
	FlushInterval time.Duration `toml:"flush_interval"`
	BatchSize     int           `toml:"batch_size"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// Load reads the TOML file at path over the defaults, then applies
// environment overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			BindAddress:  "0.0.0.0:8080",
			OutQueueSize: 1024,
			WriteTimeout: 5 * time.Second,
		},
		Game: GameConfig{
			TickInterval:      16 * time.Millisecond,
			BroadcastInterval: 16 * time.Millisecond,
			BulletTTL:         8000 * time.Millisecond,
			FireCooldown:      200 * time.Millisecond,
		},
		API: APIConfig{
			Enabled: true,
			Address: ":8081",
		},
		Database: DatabaseConfig{
			URL:           "sqlite://peinbol.db",
			FlushInterval: 5 * time.Second,
			BatchSize:     32,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate checks the values a server cannot start with.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.BindAddress == "" {
		errs = append(errs, errors.New("server.bind_address is empty"))
	}
	if c.Server.OutQueueSize <= 0 {
		errs = append(errs, fmt.Errorf("server.out_queue_size must be positive, got %d", c.Server.OutQueueSize))
	}
	for name, d := range map[string]time.Duration{
		"server.write_timeout":    c.Server.WriteTimeout,
		"game.tick_interval":      c.Game.TickInterval,
		"game.broadcast_interval": c.Game.BroadcastInterval,
		"game.bullet_ttl":         c.Game.BulletTTL,
		"game.fire_cooldown":      c.Game.FireCooldown,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", name, d))
		}
	}
	if c.Database.URL != "" {
		if c.Database.FlushInterval <= 0 {
			errs = append(errs, fmt.Errorf("database.flush_interval must be positive, got %s", c.Database.FlushInterval))
		}
		if c.Database.BatchSize <= 0 {
			errs = append(errs, fmt.Errorf("database.batch_size must be positive, got %d", c.Database.BatchSize))
		}
	}
	if c.API.Enabled && c.API.Address == "" {
		errs = append(errs, errors.New("api.address is empty"))
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format))
	}
	return errors.Join(errs...)
}

// applyEnv overrides fields from PEINBOL_* variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	texts := map[string]*string{
		"BIND_ADDRESS": &c.Server.BindAddress,
		"API_ADDRESS":  &c.API.Address,
		"DATABASE_URL": &c.Database.URL,
		"LOG_LEVEL":    &c.Logging.Level,
		"LOG_FORMAT":   &c.Logging.Format,
	}
	for key, field := range texts {
		if v, ok := lookup(EnvPrefix + key); ok {
			*field = v
		}
	}

	durations := map[string]*time.Duration{
		"TICK_INTERVAL":      &c.Game.TickInterval,
		"BROADCAST_INTERVAL": &c.Game.BroadcastInterval,
		"BULLET_TTL":         &c.Game.BulletTTL,
		"FIRE_COOLDOWN":      &c.Game.FireCooldown,
	}
	for key, field := range durations {
		if v, ok := lookup(EnvPrefix + key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("parse %s%s: %w", EnvPrefix, key, err)
			}
			*field = d
		}
	}

	if v, ok := lookup(EnvPrefix + "SEED"); ok {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("parse %sSEED: %w", EnvPrefix, err)
		}
		c.Game.Seed = seed
	}
	if v, ok := lookup(EnvPrefix + "API_ENABLED"); ok {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse %sAPI_ENABLED: %w", EnvPrefix, err)
		}
		c.API.Enabled = enabled
	}
	return nil
}
