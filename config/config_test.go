package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Black-And-White-Club/card-scorekeeper/app/scoring"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/eventbus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultDSN, cfg.Database.DSN)
	assert.Equal(t, eventbus.DriverGoChannel, cfg.EventBus.Driver)
	assert.Equal(t, DefaultHTTPAddress, cfg.HTTP.Address)
	assert.Equal(t, DefaultRules(), cfg.Rules)
	assert.Equal(t, DefaultJWTTTL, cfg.JWT.DefaultTTL)
	assert.Equal(t, scoring.TieBreakEvaluationOrder, cfg.TieBreak())
}

func TestLoadConfig_YAML(t *testing.T) {
	path := writeConfig(t, `
database:
  dsn: postgres://user:pass@db:5432/cards
eventbus:
  url: nats://nats:4222
http:
  address: ":9000"
  allowed_origins: ["https://a.example", "https://b.example"]
jwt:
  secret: shh
  default_ttl: 2h
rules:
  free_score_ceiling: 0
  max_free_opponents: 3
  tie_break: higher_total
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres://user:pass@db:5432/cards", cfg.Database.DSN)
	assert.Equal(t, eventbus.DriverNATS, cfg.EventBus.Driver)
	assert.Equal(t, ":9000", cfg.HTTP.Address)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, 2*time.Hour, cfg.JWT.DefaultTTL)
	assert.Equal(t, 0, cfg.Rules.FreeScoreCeiling, "explicit zero disables the ceiling")
	assert.Equal(t, 3, cfg.Rules.MaxFreeOpponents)
	assert.Equal(t, DefaultRedeemCode, cfg.Rules.RedeemCode)
	assert.Equal(t, scoring.TieBreakHigherTotal, cfg.TieBreak())
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
database:
  dsn: file.db
http:
  address: ":9000"
`)
	t.Setenv("DATABASE_URL", "env.db")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://x.example,https://y.example")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("REDEEM_CODE", "THANKS")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "env.db", cfg.Database.DSN)
	assert.Equal(t, ":9000", cfg.HTTP.Address)
	assert.Equal(t, []string{"https://x.example", "https://y.example"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, "THANKS", cfg.Rules.RedeemCode)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		env  map[string]string
	}{
		{name: "bad yaml", body: "database: [unterminated"},
		{name: "bad tie break", body: "rules:\n  tie_break: coin_flip\n"},
		{name: "nats without url", body: "eventbus:\n  driver: nats\n"},
		{name: "bad env duration", body: "", env: map[string]string{"JWT_DEFAULT_TTL": "forever"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestToObsConfig(t *testing.T) {
	cfg := &Config{Observability: ObservabilityConfig{Environment: "prod", OTLPEndpoint: "http://otel:4318", SampleRate: 0.5, LogLevel: "debug"}}
	obsCfg := ToObsConfig(cfg)

	assert.Equal(t, "card-scorekeeper", obsCfg.ServiceName)
	assert.Equal(t, "prod", obsCfg.Environment)
	assert.Equal(t, "http://otel:4318", obsCfg.OTLPEndpoint)
	assert.Equal(t, 0.5, obsCfg.SampleRate)
	assert.Equal(t, "debug", obsCfg.LogLevel)
}
