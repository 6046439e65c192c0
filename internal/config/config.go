// Package config loads server configuration from HEXROOM_* environment
// variables and an optional YAML rules file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/KirkDiggler/hexroom/internal/errors"
)

// Backend names
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// Terrain generator names
const (
	GeneratorClassic = "classic"
	GeneratorSimplex = "simplex"
)

// Config is the full server configuration
type Config struct {
	HTTPAddr  string `env:"HEXROOM_HTTP_ADDR" envDefault:":3000"`
	GRPCPort  int    `env:"HEXROOM_GRPC_PORT" envDefault:"50051"`
	StaticDir string `env:"HEXROOM_STATIC_DIR"`

	LogLevel  string `env:"HEXROOM_LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"HEXROOM_LOG_FORMAT" envDefault:"text"`

	RoomGracePeriod time.Duration `env:"HEXROOM_ROOM_GRACE_PERIOD" envDefault:"30s"`
	SendQueueSize   int           `env:"HEXROOM_SEND_QUEUE_SIZE"   envDefault:"256"`

	TerrainGenerator string `env:"HEXROOM_TERRAIN_GENERATOR" envDefault:"classic"`
	TerrainRadius    int    `env:"HEXROOM_TERRAIN_RADIUS"    envDefault:"53"`
	TerrainSeed      int64  `env:"HEXROOM_TERRAIN_SEED"`

	DiceBackend    string        `env:"HEXROOM_DICE_BACKEND"     envDefault:"memory"`
	DiceSessionTTL   time.Duration `env:"HEXROOM_DICE_SESSION_TTL"   envDefault:"15m"`
	DiceHistoryLimit int           `env:"HEXROOM_DICE_HISTORY_LIMIT" envDefault:"100"`

	LibraryBackend string `env:"HEXROOM_LIBRARY_BACKEND" envDefault:"memory"`
	SQLitePath     string `env:"HEXROOM_SQLITE_PATH"     envDefault:"hexroom.db"`

	RedisAddrs    []string `env:"HEXROOM_REDIS_ADDRS"     envSeparator:"," envDefault:"localhost:6379"`
	RedisPoolSize int      `env:"HEXROOM_REDIS_POOL_SIZE" envDefault:"10"`
	RedisTLS      bool     `env:"HEXROOM_REDIS_TLS"`

	OTLPEndpoint string `env:"HEXROOM_OTLP_ENDPOINT"`

	RulesFile string `env:"HEXROOM_RULES_FILE"`
	Rules     Rules  `env:"-"`
}

// Rules are game tuning values that live outside the environment
type Rules struct {
	ActionPoints int      `yaml:"action_points"`
	WeatherTypes []string `yaml:"weather_types"`
}

// Load reads the environment, then the rules file if one is named
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, errors.InvalidArgumentf("parse env: %v", err)
	}

	if cfg.RulesFile != "" {
		rules, err := LoadRules(cfg.RulesFile)
		if err != nil {
			return nil, err
		}
		cfg.Rules = rules
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadRules reads a YAML rules file
func LoadRules(path string) (Rules, error) {
	var rules Rules
	raw, err := os.ReadFile(path)
	if err != nil {
		return rules, errors.Wrapf(err, "failed to read rules file %s", path)
	}
	if err := yaml.Unmarshal(raw, &rules); err != nil {
		return rules, errors.InvalidArgumentf("rules file %s: %v", path, err)
	}
	return rules, nil
}

// Validate checks every setting that has a closed set of values or a range
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	errors.ValidateRequired("HEXROOM_HTTP_ADDR", c.HTTPAddr, vb)
	errors.ValidateRange("HEXROOM_GRPC_PORT", c.GRPCPort, 0, 65535, vb)
	errors.ValidateEnum("HEXROOM_LOG_LEVEL", strings.ToLower(c.LogLevel), []string{"debug", "info", "warn", "error"}, vb)
	errors.ValidateEnum("HEXROOM_LOG_FORMAT", c.LogFormat, []string{"text", "json"}, vb)
	errors.ValidateEnum("HEXROOM_TERRAIN_GENERATOR", c.TerrainGenerator, []string{GeneratorClassic, GeneratorSimplex}, vb)
	errors.ValidateEnum("HEXROOM_DICE_BACKEND", c.DiceBackend, []string{BackendMemory, BackendRedis}, vb)
	errors.ValidateEnum("HEXROOM_LIBRARY_BACKEND", c.LibraryBackend, []string{BackendMemory, BackendRedis, BackendSQLite}, vb)

	if c.RoomGracePeriod <= 0 {
		vb.Field("HEXROOM_ROOM_GRACE_PERIOD", "must be positive")
	}
	if c.SendQueueSize <= 0 {
		vb.Field("HEXROOM_SEND_QUEUE_SIZE", "must be positive")
	}
	if c.TerrainRadius <= 0 {
		vb.Field("HEXROOM_TERRAIN_RADIUS", "must be positive")
	}
	if c.DiceSessionTTL <= 0 {
		vb.Field("HEXROOM_DICE_SESSION_TTL", "must be positive")
	}
	if c.DiceHistoryLimit <= 0 {
		vb.Field("HEXROOM_DICE_HISTORY_LIMIT", "must be positive")
	}
	if c.UsesRedis() && len(c.RedisAddrs) == 0 {
		vb.RequiredField("HEXROOM_REDIS_ADDRS")
	}
	if c.LibraryBackend == BackendSQLite {
		errors.ValidateRequired("HEXROOM_SQLITE_PATH", c.SQLitePath, vb)
	}

	if c.Rules.ActionPoints < 0 {
		vb.Field("action_points", "must not be negative")
	}
	for _, w := range c.Rules.WeatherTypes {
		if strings.TrimSpace(w) == "" {
			vb.Field("weather_types", "must not contain empty names")
			break
		}
	}

	return vb.Build()
}

// UsesRedis reports whether any backend needs a redis client
func (c *Config) UsesRedis() bool {
	return c.DiceBackend == BackendRedis || c.LibraryBackend == BackendRedis
}

// SlogLevel converts LogLevel for the slog handler
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// GRPCAddr is the listen address of the gRPC server
func (c *Config) GRPCAddr() string {
	return fmt.Sprintf(":%d", c.GRPCPort)
}
