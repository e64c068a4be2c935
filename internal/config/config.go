// internal/config/config.go
package config

import (
	"errors"
	"net/url"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	ListenAddr   string `mapstructure:"listen_addr"`
	RPCEndpoint  string `mapstructure:"rpc_endpoint"` // comma-separated list rotates across providers
	PostgresURL  string `mapstructure:"postgres_url"`
	DebugLogging bool   `mapstructure:"debug_logging"`

	AuthorityKey string `mapstructure:"authority_key"` // base58 private key of the market owner
	TokenMint    string `mapstructure:"token_mint"`

	InitialPrice uint64 `mapstructure:"initial_price"`
	InitialPot   uint64 `mapstructure:"initial_pot"`
	VaultOpening uint64 `mapstructure:"vault_opening_balance"`

	RunnerEnabled  bool `mapstructure:"runner_enabled"`
	RunnerInterval int  `mapstructure:"runner_interval"` // seconds between boundary polls
	RunnerRetries  int  `mapstructure:"runner_retries"`
}

const (
	DefaultListenAddr     = ":8080"
	DefaultInitialPrice   = 100
	DefaultRunnerInterval = 5
	DefaultRunnerRetries  = 3
)

func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := map[string]interface{}{
		"listen_addr":     DefaultListenAddr,
		"initial_price":   DefaultInitialPrice,
		"runner_interval": DefaultRunnerInterval,
		"runner_retries":  DefaultRunnerRetries,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	loadEnvironmentVariables(v, &cfg)

	return &cfg, validateConfig(&cfg)
}

func validateConfig(cfg *Config) error {
	if cfg.AuthorityKey == "" {
		return errors.New("missing authority_key in configuration")
	}
	if cfg.InitialPrice == 0 {
		return errors.New("initial_price must be positive")
	}
	if cfg.RPCEndpoint != "" {
		if err := validateURL(cfg.RPCEndpoint, "http"); err != nil {
			return errors.New("invalid RPC endpoint protocol")
		}
	}
	if cfg.RunnerInterval <= 0 {
		return errors.New("invalid runner_interval")
	}
	if cfg.RunnerRetries < 0 {
		return errors.New("invalid runner_retries count")
	}
	return nil
}

func validateURL(rawURL string, protocol string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) {
		return errors.New("invalid URL protocol")
	}
	return nil
}

func loadEnvironmentVariables(v *viper.Viper, cfg *Config) {
	v.AutomaticEnv()
	v.SetEnvPrefix("FOSSR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if key := v.GetString("AUTHORITY_KEY"); key != "" {
		cfg.AuthorityKey = key
	}
	if dsn := v.GetString("POSTGRES_URL"); dsn != "" {
		cfg.PostgresURL = dsn
	}
	if rpc := v.GetString("RPC_ENDPOINT"); rpc != "" {
		cfg.RPCEndpoint = rpc
	}
}
