// Package config holds the settings of the authkeeper command-line client.
package config

import "time"

// Config tells the CLI which AuthService endpoint to dial and how long a
// single login, logout, refresh or register call may take.
type Config struct {
	ServerEndpointAddr string
	RequestTimeout     time.Duration
}

// LoadDefaults points the CLI at a local server with a 10s call deadline.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.RequestTimeout = 10 * time.Second
}

// LoadConfig resolves the CLI settings: defaults, then the -c JSON file, then
// -a and -t. Flags win.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
