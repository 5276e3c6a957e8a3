package config

import (
	"fmt"
	"strings"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Ledger   LedgerConfig   `mapstructure:"ledger"`
	Identity IdentityConfig `mapstructure:"identity"`
	Quote    QuoteConfig    `mapstructure:"quote"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // postgres, memory
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// LedgerConfig carries fee rates as decimal strings so they never pass
// through float64.
type LedgerConfig struct {
	WithdrawalFeeRate string        `mapstructure:"withdrawal_fee_rate"`
	ConversionFeeRate string        `mapstructure:"conversion_fee_rate"`
	TransferFeeRate   string        `mapstructure:"transfer_fee_rate"`
	QuoteTimeout      time.Duration `mapstructure:"quote_timeout"`
}

// FeeSchedule parses and validates the configured rates.
func (l LedgerConfig) FeeSchedule() (domain.FeeSchedule, error) {
	parse := func(name, raw string) (decimal.Decimal, error) {
		d, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return decimal.Zero, fmt.Errorf("ledger.%s: %w", name, err)
		}
		return d, nil
	}

	withdrawal, err := parse("withdrawal_fee_rate", l.WithdrawalFeeRate)
	if err != nil {
		return domain.FeeSchedule{}, err
	}
	conversion, err := parse("conversion_fee_rate", l.ConversionFeeRate)
	if err != nil {
		return domain.FeeSchedule{}, err
	}
	transfer, err := parse("transfer_fee_rate", l.TransferFeeRate)
	if err != nil {
		return domain.FeeSchedule{}, err
	}

	fees := domain.FeeSchedule{
		WithdrawalRate: withdrawal,
		ConversionRate: conversion,
		TransferRate:   transfer,
	}
	if err := fees.Validate(); err != nil {
		return domain.FeeSchedule{}, err
	}
	return fees, nil
}

type IdentityConfig struct {
	SecretBytes  int `mapstructure:"secret_bytes"`
	AddressBytes int `mapstructure:"address_bytes"`
}

type QuoteConfig struct {
	BaseURL  string        `mapstructure:"base_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"` // 0 disables caching
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: WLT_.
// Nested keys use underscore: WLT_DATABASE_HOST, WLT_LEDGER_TRANSFER_FEE_RATE, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.driver", DriverPostgres)
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "wallet_ledger")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("ledger.withdrawal_fee_rate", "0.01")
	v.SetDefault("ledger.conversion_fee_rate", "0.02")
	v.SetDefault("ledger.transfer_fee_rate", "0.01")
	v.SetDefault("ledger.quote_timeout", "5s")
	v.SetDefault("identity.secret_bytes", 32)
	v.SetDefault("identity.address_bytes", 16)
	v.SetDefault("quote.base_url", "https://api.coinbase.com/v2")
	v.SetDefault("quote.timeout", "4s")
	v.SetDefault("quote.cache_ttl", "10s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("WLT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The file is optional; env vars and defaults can suffice.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Identity size limits. Tokens are hex encoded, so MaxIdentityBytes keeps
// addresses within the 128 character column and secrets within the 128
// character request limit.
const (
	MinSecretBytes   = 16
	MinAddressBytes  = 8
	MaxIdentityBytes = 64
)

func (c *Config) validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("database.driver: unknown driver %q", c.Database.Driver)
	}
	if c.Identity.SecretBytes < MinSecretBytes || c.Identity.SecretBytes > MaxIdentityBytes {
		return fmt.Errorf("identity.secret_bytes must be between %d and %d", MinSecretBytes, MaxIdentityBytes)
	}
	if c.Identity.AddressBytes < MinAddressBytes || c.Identity.AddressBytes > MaxIdentityBytes {
		return fmt.Errorf("identity.address_bytes must be between %d and %d", MinAddressBytes, MaxIdentityBytes)
	}
	if c.Ledger.QuoteTimeout <= 0 {
		return fmt.Errorf("ledger.quote_timeout must be positive")
	}
	if _, err := c.Ledger.FeeSchedule(); err != nil {
		return err
	}
	return nil
}
