package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	utilsconfig "github.com/quantumauth-io/quantum-go-utils/config"
	"github.com/shopspring/decimal"

	"github.com/cinderlabs/cinder-client/internal/constants"
)

type ClientSettings struct {
	LocalHost      string
	Port           string
	BackendURL     string
	AllowedOrigins []string
}

type Wallet struct {
	Plugin     string
	Actor      string
	Permission string
	SignerURL  string
}

type Contracts struct {
	Collection  string
	Incinerator string
	Token       string
	Staking     string
}

type Burn struct {
	SlotCount           int
	PollIntervalSeconds int
}

type Voting struct {
	MinStake string
}

type Config struct {
	ClientSettings *ClientSettings
	Wallet         Wallet
	Contracts      Contracts
	Burn           Burn
	Voting         Voting
}

func Load() (*Config, error) {
	home, _ := os.UserHomeDir()
	paths := []string{
		filepath.Join(home, ".config", constants.AppName),
		filepath.Join(home, "config"),
		".",
	}

	cfg, err := utilsconfig.ParseConfigWithEmbedded[Config](paths, EmbeddedConfigYAML)
	if err != nil {
		return nil, err
	}
	if cfg.ClientSettings == nil {
		cfg.ClientSettings = &ClientSettings{}
	}
	if err := cfg.ApplyBackendURLFromEnv(); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyBackendURLFromEnv picks the backend for CINDER_ENV unless the config
// file already names one.
func (c *Config) ApplyBackendURLFromEnv() error {
	raw := strings.TrimSpace(os.Getenv(constants.EnvVar))

	var url string
	switch strings.ToLower(raw) {
	case "", "prod", "production":
		url = "https://api.cinder.gg/v1"

	case "local":
		url = "http://localhost:8080/v1"

	case "dev", "develop", "development":
		url = "https://dev.api.cinder.gg/v1"

	default:
		return fmt.Errorf("invalid %s %q (allowed: local, develop, prod, empty)", constants.EnvVar, raw)
	}

	if strings.TrimSpace(c.ClientSettings.BackendURL) == "" {
		c.ClientSettings.BackendURL = url
	}
	return nil
}

func (c *Config) ApplyDefaults() {
	if c.ClientSettings.LocalHost == "" {
		c.ClientSettings.LocalHost = "127.0.0.1"
	}
	if c.ClientSettings.Port == "" {
		c.ClientSettings.Port = "6137"
	}
	if c.Wallet.Permission == "" {
		c.Wallet.Permission = "active"
	}
	if c.Burn.SlotCount <= 0 {
		c.Burn.SlotCount = constants.DefaultSlotCount
	}
}

func (c *Config) PollInterval() time.Duration {
	if c.Burn.PollIntervalSeconds <= 0 {
		return constants.DefaultPollInterval
	}
	return time.Duration(c.Burn.PollIntervalSeconds) * time.Second
}

// MinStake returns the configured minimum vote stake, or nil when unset.
func (c *Config) MinStake() (*decimal.Decimal, error) {
	raw := strings.TrimSpace(c.Voting.MinStake)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, errors.Wrapf(err, "Voting.MinStake %q", raw)
	}
	return &d, nil
}
