package main

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/cloudx-io/auctionhouse/core"
)

// Config is the house server configuration, read from AUCTIONHOUSE_* variables.
type Config struct {
	BuyerPremium     float64 `env:"AUCTIONHOUSE_BUYER_PREMIUM"     envDefault:"10"`
	Commission       float64 `env:"AUCTIONHOUSE_COMMISSION"        envDefault:"15"`
	Increment        string  `env:"AUCTIONHOUSE_INCREMENT"         envDefault:"10.00"`
	HouseAccount     string  `env:"AUCTIONHOUSE_HOUSE_ACCOUNT"     envDefault:"AH"`
	HouseAuthCode    string  `env:"AUCTIONHOUSE_HOUSE_AUTH_CODE"`
	SettlementPolicy string  `env:"AUCTIONHOUSE_SETTLEMENT_POLICY" envDefault:"both"`

	// VsockPort, when non-zero, replaces ListenAddr with a vsock listener.
	ListenAddr  string        `env:"AUCTIONHOUSE_LISTEN_ADDR"  envDefault:"127.0.0.1:5000"`
	VsockPort   uint32        `env:"AUCTIONHOUSE_VSOCK_PORT"`
	MaxWorkers  int           `env:"AUCTIONHOUSE_MAX_WORKERS"  envDefault:"16"`
	ReadTimeout time.Duration `env:"AUCTIONHOUSE_READ_TIMEOUT" envDefault:"30s"`

	LedgerPath string `env:"AUCTIONHOUSE_LEDGER_PATH" envDefault:":memory:"`
	// Accounts opened at startup, as account:authcode:balance triples.
	LedgerAccounts []string `env:"AUCTIONHOUSE_LEDGER_ACCOUNTS" envSeparator:","`

	KafkaBrokers []string `env:"AUCTIONHOUSE_KAFKA_BROKERS" envSeparator:","`
	KafkaTopic   string   `env:"AUCTIONHOUSE_KAFKA_TOPIC"   envDefault:"auction-events"`

	// SigningKeyPath points at a PEM EC private key; a fresh key is generated when empty.
	SigningKeyPath string `env:"AUCTIONHOUSE_SIGNING_KEY_PATH"`
}

// LoadConfig parses the environment and validates the result.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.MaxWorkers <= 0 {
		return Config{}, fmt.Errorf("invalid AUCTIONHOUSE_MAX_WORKERS %d: must be positive", cfg.MaxWorkers)
	}
	if _, err := cfg.HouseConfig(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// HouseConfig derives the engine configuration.
func (c Config) HouseConfig() (core.Config, error) {
	increment, err := core.ParseMoney(c.Increment)
	if err != nil {
		return core.Config{}, fmt.Errorf("invalid AUCTIONHOUSE_INCREMENT: %w", err)
	}
	hc := core.Config{
		BuyerPremium:  c.BuyerPremium,
		Commission:    c.Commission,
		Increment:     increment,
		HouseAccount:  c.HouseAccount,
		HouseAuthCode: c.HouseAuthCode,
		Policy:        core.SettlementPolicy(c.SettlementPolicy),
	}
	if err := hc.Validate(); err != nil {
		return core.Config{}, err
	}
	return hc, nil
}
