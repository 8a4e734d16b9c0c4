// Package config handles configuration for the CLI client.
package config

import (
	"os"
	"time"
)

// TokenEnvVar names the environment variable holding the auth token.
const TokenEnvVar = "FILES_TOKEN"

// Config holds runtime settings for the files CLI.
//
// Fields:
//   - ServerEndpointAddr: host:port of the gRPC endpoint.
//   - Token: value sent in the x-token header.
//   - RequestTimeout: deadline applied to every call.
type Config struct {
	ServerEndpointAddr string
	Token              string
	RequestTimeout     time.Duration
}

// LoadDefaults populates c with defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.RequestTimeout = 30 * time.Second
}

// LoadConfig applies defaults, then the JSON file, the token environment
// variable and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	if v := os.Getenv(TokenEnvVar); v != "" {
		cfg.Token = v
	}
	parseFlags(cfg)
	return cfg
}
