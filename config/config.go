// Package config loads the client configuration from TOML.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/ethereum/go-ethereum/common"
)

// Telemetry configures the optional OpenTelemetry export.
type Telemetry struct {
	Endpoint string `toml:"Endpoint"`
	Insecure bool   `toml:"Insecure"`
	Traces   bool   `toml:"Traces"`
	Metrics  bool   `toml:"Metrics"`
}

// Config is the full client configuration. The sender key is never stored in
// the file; SenderKeyEnv names the environment variable carrying the hex
// encoded key.
type Config struct {
	RPCEndpoint     string    `toml:"RPCEndpoint"`
	ContractAddress string    `toml:"ContractAddress"`
	SenderKeyEnv    string    `toml:"SenderKeyEnv"`
	Confirmations   uint64    `toml:"Confirmations"`
	LogWindow       uint64    `toml:"LogWindow"`
	GasHeadroomPct  uint64    `toml:"GasHeadroomPct"`
	RateLimit       float64   `toml:"RateLimit"`
	RateBurst       int       `toml:"RateBurst"`
	LogLevel        string    `toml:"LogLevel"`
	Environment     string    `toml:"Environment"`
	Telemetry       Telemetry `toml:"Telemetry"`
}

func defaultConfig() *Config {
	return &Config{
		RPCEndpoint:    "http://localhost:8545",
		SenderKeyEnv:   "ORACLEMARKET_SENDER_KEY",
		Confirmations:  3,
		LogWindow:      50_000,
		GasHeadroomPct: 20,
		RateLimit:      10,
		RateBurst:      5,
		LogLevel:       "info",
	}
}

// Load reads the configuration from the given path, writing a commented
// default file on first run.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}
	cfg := &Config{}
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return nil, fmt.Errorf("config file %s has unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the client cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.RPCEndpoint) == "" {
		return fmt.Errorf("RPCEndpoint required")
	}
	addr := strings.TrimSpace(c.ContractAddress)
	if addr == "" {
		return fmt.Errorf("ContractAddress required")
	}
	if !common.IsHexAddress(addr) {
		return fmt.Errorf("ContractAddress %q is not a hex address", addr)
	}
	if c.LogWindow == 0 {
		return fmt.Errorf("LogWindow must be positive")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("RateLimit must not be negative")
	}
	return nil
}

// Contract returns the parsed contract address. Call Validate first.
func (c *Config) Contract() common.Address {
	return common.HexToAddress(strings.TrimSpace(c.ContractAddress))
}

// SenderKeyHex reads the signing key material from the configured environment
// variable. An empty result is valid for read-only use.
func (c *Config) SenderKeyHex() string {
	env := strings.TrimSpace(c.SenderKeyEnv)
	if env == "" {
		return ""
	}
	return strings.TrimSpace(os.Getenv(env))
}

func createDefault(path string) (*Config, error) {
	cfg := defaultConfig()
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create config dir: %w", err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, fmt.Errorf("create config file: %w", err)
	}
	defer file.Close()
	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		return nil, fmt.Errorf("write default config: %w", err)
	}
	// The generated file still needs a contract address before first use.
	return cfg, nil
}
