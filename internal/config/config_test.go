package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	p, err := cfg.LedgerParams()
	require.NoError(t, err)
	assert.True(t, p.SeedBalance.Equal(decimal.NewFromInt(10000)))
	assert.True(t, p.InitialPrice.Equal(decimal.NewFromInt(2500)))
	assert.True(t, p.Band.Floor.Equal(decimal.NewFromInt(1000)))
	assert.True(t, p.Band.Ceiling.Equal(decimal.NewFromInt(5000)))
	assert.Equal(t, 100, p.Band.MaxStepBps)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.PG.DSN)
	assert.Empty(t, cfg.Redis.Addr)
	assert.Nil(t, cfg.Market.RandomSeed)
}

func TestLoad_ZeroSeed(t *testing.T) {
	cfg, err := Load(writeConfig(t, "market:\n  random_seed: 0\n"))
	require.NoError(t, err)
	require.NotNil(t, cfg.Market.RandomSeed)
	assert.Equal(t, uint64(0), *cfg.Market.RandomSeed)

	t.Setenv("EXCHANGE_RANDOM_SEED", "0")
	cfg, err = Load("")
	require.NoError(t, err)
	require.NotNil(t, cfg.Market.RandomSeed)
	assert.Equal(t, uint64(0), *cfg.Market.RandomSeed)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
market:
  seed_balance: "500.50"
  initial_price: "100"
  price_floor: "50"
  price_ceiling: "200"
  max_step_bps: 250
  random_seed: 7
log:
  level: debug
redis:
  addr: localhost:6379
  ttl: 30s
`)
	t.Setenv("EXCHANGE_INITIAL_PRICE", "150")
	t.Setenv("EXCHANGE_REDIS_DB", "2")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "500.50", cfg.Market.SeedBalance)
	assert.Equal(t, "150", cfg.Market.InitialPrice)
	assert.Equal(t, 250, cfg.Market.MaxStepBps)
	require.NotNil(t, cfg.Market.RandomSeed)
	assert.Equal(t, uint64(7), *cfg.Market.RandomSeed)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, 30*time.Second, cfg.Redis.TTL)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		file string
	}{
		{name: "PriceOutsideBand", env: map[string]string{"EXCHANGE_INITIAL_PRICE": "6000"}},
		{name: "CeilingBelowFloor", env: map[string]string{"EXCHANGE_PRICE_CEILING": "900"}},
		{name: "NegativeSeed", env: map[string]string{"EXCHANGE_SEED_BALANCE": "-1"}},
		{name: "NotADecimal", env: map[string]string{"EXCHANGE_PRICE_FLOOR": "cheap"}},
		{name: "BadStep", env: map[string]string{"EXCHANGE_MAX_STEP_BPS": "lots"}},
		{name: "StepOutOfRange", env: map[string]string{"EXCHANGE_MAX_STEP_BPS": "20000"}},
		{name: "BadTTL", env: map[string]string{"EXCHANGE_REDIS_TTL": "soon"}},
		{name: "BadYAML", file: "market: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := ""
			if tt.file != "" {
				path = writeConfig(t, tt.file)
			}
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
