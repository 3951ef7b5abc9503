package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/Black-And-White-Club/card-scorekeeper/app/scoring"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/eventbus"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/observability"
)

// Config struct to hold the configuration settings
type Config struct {
	Database      DatabaseConfig      `yaml:"database"`
	EventBus      EventBusConfig      `yaml:"eventbus"`
	HTTP          HTTPConfig          `yaml:"http"`
	JWT           JWTConfig           `yaml:"jwt"`
	Observability ObservabilityConfig `yaml:"observability"`
	Rules         RulesConfig         `yaml:"rules"`
}

// DatabaseConfig holds the storage DSN. postgres:// URLs select Postgres,
// anything else is treated as a SQLite file path.
type DatabaseConfig struct {
	DSN string `yaml:"dsn" env:"DATABASE_URL"`
}

// EventBusConfig holds event bus configuration.
type EventBusConfig struct {
	Driver   string `yaml:"driver" env:"EVENTBUS_DRIVER"` // gochannel|nats
	URL      string `yaml:"url" env:"NATS_URL"`
	NKeySeed string `yaml:"nkey_seed" env:"NATS_NKEY_SEED"`
}

// HTTPConfig holds the API listener configuration.
type HTTPConfig struct {
	Address        string   `yaml:"address" env:"HTTP_ADDRESS"`
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	RateLimit      float64  `yaml:"rate_limit" env:"HTTP_RATE_LIMIT"`
	RateBurst      int      `yaml:"rate_burst" env:"HTTP_RATE_BURST"`
}

// JWTConfig holds entitlement token configuration.
type JWTConfig struct {
	Secret     string        `yaml:"secret" env:"JWT_SECRET"`
	DefaultTTL time.Duration `yaml:"default_ttl" env:"JWT_DEFAULT_TTL"`
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	MetricsAddress string  `yaml:"metrics_address" env:"METRICS_ADDRESS"`
	OTLPEndpoint   string  `yaml:"otlp_endpoint" env:"OTLP_ENDPOINT"`
	Environment    string  `yaml:"environment" env:"ENV"`
	LogLevel       string  `yaml:"log_level" env:"LOG_LEVEL"`
	SampleRate     float64 `yaml:"sample_rate" env:"TRACE_SAMPLE_RATE"`
}

// RulesConfig holds the game and free-tier rules.
type RulesConfig struct {
	FreeScoreCeiling        int    `yaml:"free_score_ceiling" env:"FREE_SCORE_CEILING"`
	MaxFreeOpponents        int    `yaml:"max_free_opponents" env:"MAX_FREE_OPPONENTS"`
	MaxFreeGamesPerOpponent int    `yaml:"max_free_games_per_opponent" env:"MAX_FREE_GAMES_PER_OPPONENT"`
	MaxFreeMultiplayerGames int    `yaml:"max_free_multiplayer_games" env:"MAX_FREE_MULTIPLAYER_GAMES"`
	TieBreak                string `yaml:"tie_break" env:"TIE_BREAK"`
	RedeemCode              string `yaml:"redeem_code" env:"REDEEM_CODE"`
}

const (
	DefaultDSN             = "scorekeeper.db"
	DefaultHTTPAddress     = ":8080"
	DefaultRateLimit       = 20
	DefaultRateBurst       = 40
	DefaultJWTTTL          = 365 * 24 * time.Hour
	DefaultSampleRate      = 0.1
	DefaultRedeemCode      = "GRATITUDE"
	DefaultMaxFreeGames    = 1
	DefaultMaxFreeOpponent = 1
)

// LoadConfig loads the configuration from a YAML file, then applies
// environment overrides. A missing file means environment only.
func LoadConfig(filename string) (*Config, error) {
	var cfg Config

	if filename != "" {
		data, err := os.ReadFile(filename)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to unmarshal config: %w", err)
			}
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Database.DSN == "" {
		c.Database.DSN = DefaultDSN
	}
	if c.EventBus.Driver == "" {
		if c.EventBus.URL != "" {
			c.EventBus.Driver = eventbus.DriverNATS
		} else {
			c.EventBus.Driver = eventbus.DriverGoChannel
		}
	}
	if c.HTTP.Address == "" {
		c.HTTP.Address = DefaultHTTPAddress
	}
	if c.HTTP.RateLimit <= 0 {
		c.HTTP.RateLimit = DefaultRateLimit
	}
	if c.HTTP.RateBurst <= 0 {
		c.HTTP.RateBurst = DefaultRateBurst
	}
	if c.JWT.DefaultTTL <= 0 {
		c.JWT.DefaultTTL = DefaultJWTTTL
	}
	if c.Observability.SampleRate <= 0 {
		c.Observability.SampleRate = DefaultSampleRate
	}
	if c.Observability.LogLevel == "" {
		c.Observability.LogLevel = "info"
	}
	// Zero is a meaningful ceiling (disabled), so only an absent rules
	// block falls back to the default.
	if c.Rules == (RulesConfig{}) {
		c.Rules = DefaultRules()
	}
	if c.Rules.RedeemCode == "" {
		c.Rules.RedeemCode = DefaultRedeemCode
	}
	if c.Rules.TieBreak == "" {
		c.Rules.TieBreak = string(scoring.TieBreakEvaluationOrder)
	}
}

// DefaultRules returns the rules the app ships with.
func DefaultRules() RulesConfig {
	return RulesConfig{
		FreeScoreCeiling:        scoring.DefaultFreeScoreCeiling,
		MaxFreeOpponents:        DefaultMaxFreeOpponent,
		MaxFreeGamesPerOpponent: DefaultMaxFreeGames,
		MaxFreeMultiplayerGames: DefaultMaxFreeGames,
		TieBreak:                string(scoring.TieBreakEvaluationOrder),
		RedeemCode:              DefaultRedeemCode,
	}
}

// Validate rejects settings the app cannot run with.
func (c *Config) Validate() error {
	if _, err := scoring.ParseTieBreak(c.Rules.TieBreak); err != nil {
		return fmt.Errorf("invalid tie_break: %w", err)
	}
	if c.EventBus.Driver == eventbus.DriverNATS && c.EventBus.URL == "" {
		return fmt.Errorf("NATS_URL must be set when the nats event bus driver is selected")
	}
	if c.Observability.SampleRate > 1 {
		return fmt.Errorf("invalid sample_rate %v: must be within (0, 1]", c.Observability.SampleRate)
	}
	return nil
}

// TieBreak returns the parsed tie-break policy.
func (c *Config) TieBreak() scoring.TieBreak {
	policy, err := scoring.ParseTieBreak(c.Rules.TieBreak)
	if err != nil {
		return scoring.TieBreakEvaluationOrder
	}
	return policy
}

// ToEventBusConfig maps the event bus section onto the eventbus package.
func ToEventBusConfig(appCfg *Config) eventbus.Config {
	return eventbus.Config{
		Driver:   appCfg.EventBus.Driver,
		URL:      appCfg.EventBus.URL,
		NKeySeed: appCfg.EventBus.NKeySeed,
	}
}

func ToObsConfig(appCfg *Config) observability.Config {
	return observability.Config{
		ServiceName:  "card-scorekeeper",
		Environment:  appCfg.Observability.Environment,
		Version:      "1.0.0", // Could inject via `ldflags`
		LogLevel:     appCfg.Observability.LogLevel,
		OTLPEndpoint: appCfg.Observability.OTLPEndpoint,
		SampleRate:   appCfg.Observability.SampleRate,
	}
}
