package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/olyamironova/paper-exchange/internal/core"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config is the runtime configuration of the trader binary.
// Precedence: environment > .env > config file > defaults.
type Config struct {
	Market MarketConfig `yaml:"market"`
	Log    LogConfig    `yaml:"log"`
	PG     PGConfig     `yaml:"pg"`
	Redis  RedisConfig  `yaml:"redis"`
}

// Decimal amounts are kept as strings so the file never round-trips
// through float64.
type MarketConfig struct {
	SeedBalance  string `yaml:"seed_balance"`
	InitialPrice string `yaml:"initial_price"`
	PriceFloor   string `yaml:"price_floor"`
	PriceCeiling string `yaml:"price_ceiling"`
	MaxStepBps   int    `yaml:"max_step_bps"`
	// RandomSeed fixes the price walk when set; nil draws a fresh seed.
	RandomSeed *uint64 `yaml:"random_seed"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
	Compress   bool   `yaml:"compress"`
}

// PGConfig enables the Postgres journal when DSN is set.
type PGConfig struct {
	DSN string `yaml:"dsn"`
}

// RedisConfig enables the market summary cache when Addr is set.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

func Default() Config {
	return Config{
		Market: MarketConfig{
			SeedBalance:  "10000",
			InitialPrice: "2500",
			PriceFloor:   "1000",
			PriceCeiling: "5000",
			MaxStepBps:   100,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     7,
		},
		Redis: RedisConfig{
			TTL: time.Minute,
		},
	}
}

// Load reads path (optional), then .env (optional), then EXCHANGE_*
// environment variables, and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrapf(err, "read config %s", path)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, errors.Wrapf(err, "parse config %s", path)
		}
	}

	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	setString("EXCHANGE_SEED_BALANCE", &cfg.Market.SeedBalance)
	setString("EXCHANGE_INITIAL_PRICE", &cfg.Market.InitialPrice)
	setString("EXCHANGE_PRICE_FLOOR", &cfg.Market.PriceFloor)
	setString("EXCHANGE_PRICE_CEILING", &cfg.Market.PriceCeiling)
	if err := setInt("EXCHANGE_MAX_STEP_BPS", &cfg.Market.MaxStepBps); err != nil {
		return err
	}
	if v, ok := os.LookupEnv("EXCHANGE_RANDOM_SEED"); ok && v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return errors.Wrap(err, "EXCHANGE_RANDOM_SEED")
		}
		cfg.Market.RandomSeed = &n
	}

	setString("EXCHANGE_LOG_LEVEL", &cfg.Log.Level)
	setString("EXCHANGE_LOG_FILE", &cfg.Log.File)

	setString("EXCHANGE_PG_DSN", &cfg.PG.DSN)

	setString("EXCHANGE_REDIS_ADDR", &cfg.Redis.Addr)
	setString("EXCHANGE_REDIS_PASSWORD", &cfg.Redis.Password)
	if err := setInt("EXCHANGE_REDIS_DB", &cfg.Redis.DB); err != nil {
		return err
	}
	if v, ok := os.LookupEnv("EXCHANGE_REDIS_TTL"); ok && v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return errors.Wrap(err, "EXCHANGE_REDIS_TTL")
		}
		cfg.Redis.TTL = ttl
	}
	return nil
}

func setString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(key string, dst *int) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return errors.Wrap(err, key)
	}
	*dst = n
	return nil
}

func (c Config) Validate() error {
	if _, err := c.LedgerParams(); err != nil {
		return err
	}
	if c.Redis.Addr != "" && c.Redis.TTL < 0 {
		return errors.Errorf("redis ttl must be >= 0, got %s", c.Redis.TTL)
	}
	return nil
}

// LedgerParams converts the market section into validated ledger params.
func (c Config) LedgerParams() (core.Params, error) {
	fields := []struct {
		name string
		raw  string
		dst  *decimal.Decimal
	}{
		{"seed_balance", c.Market.SeedBalance, new(decimal.Decimal)},
		{"initial_price", c.Market.InitialPrice, new(decimal.Decimal)},
		{"price_floor", c.Market.PriceFloor, new(decimal.Decimal)},
		{"price_ceiling", c.Market.PriceCeiling, new(decimal.Decimal)},
	}
	for _, f := range fields {
		v, err := decimal.NewFromString(f.raw)
		if err != nil {
			return core.Params{}, errors.Wrapf(err, "market.%s", f.name)
		}
		*f.dst = v
	}

	p := core.Params{
		SeedBalance:  *fields[0].dst,
		InitialPrice: *fields[1].dst,
		Band: core.PriceBand{
			Floor:      *fields[2].dst,
			Ceiling:    *fields[3].dst,
			MaxStepBps: c.Market.MaxStepBps,
		},
	}
	if err := p.Validate(); err != nil {
		return core.Params{}, errors.Wrap(err, "market")
	}
	return p, nil
}
