// Package config loads the YAML configuration shared by the exchange and
// broker daemons.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration for brokersim.
type Config struct {
	Broker     Broker     `yaml:"broker"`
	Admin      Admin      `yaml:"admin"`
	Exchange   Exchange   `yaml:"exchange"`
	Storage    Storage    `yaml:"storage"`
	Logging    Logging    `yaml:"logging"`
	Simulation Simulation `yaml:"simulation"`
}

// Admin configures the broker's admin HTTP API. An empty listen address
// disables it.
type Admin struct {
	ListenAddr string `yaml:"listen_addr"`
}

// Broker identifies the broker instance.
type Broker struct {
	Name string `yaml:"name"`
}

// Exchange holds the network endpoints of the exchange adapter: the TCP
// command endpoint and the UDP multicast group for events.
type Exchange struct {
	CommandHost    string `yaml:"command_host"`
	CommandPort    int    `yaml:"command_port"`
	MulticastGroup string `yaml:"multicast_group"`
	MulticastPort  int    `yaml:"multicast_port"`
}

// CommandAddr returns the host:port of the command endpoint.
func (e Exchange) CommandAddr() string {
	return fmt.Sprintf("%s:%d", e.CommandHost, e.CommandPort)
}

// EventAddr returns the group:port of the multicast event endpoint.
func (e Exchange) EventAddr() string {
	return fmt.Sprintf("%s:%d", e.MulticastGroup, e.MulticastPort)
}

// Storage holds paths for data persistence.
type Storage struct {
	SQLitePath string `yaml:"sqlite_path"`
	JournalDir string `yaml:"journal_dir"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Simulation configures the simulated exchange run by cmd/exchanged: the
// listed tickers with starting prices in cents, and the interval of the
// random price walk.
type Simulation struct {
	Tickers      map[string]int `yaml:"tickers"`
	WalkInterval string         `yaml:"walk_interval"`
	OpenAtStart  bool           `yaml:"open_at_start"`
}

// Load reads the YAML configuration file at the given path, parses it into a
// Config struct, and then applies environment variable overrides.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	return cfg, nil
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("BROKER_NAME"); v != "" {
		cfg.Broker.Name = v
	}

	if v := os.Getenv("ADMIN_LISTEN_ADDR"); v != "" {
		cfg.Admin.ListenAddr = v
	}

	if v := os.Getenv("EXCHANGE_COMMAND_HOST"); v != "" {
		cfg.Exchange.CommandHost = v
	}
	if v := os.Getenv("EXCHANGE_COMMAND_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Exchange.CommandPort = port
		}
	}
	if v := os.Getenv("EXCHANGE_MULTICAST_GROUP"); v != "" {
		cfg.Exchange.MulticastGroup = v
	}
	if v := os.Getenv("EXCHANGE_MULTICAST_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Exchange.MulticastPort = port
		}
	}

	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}
	if v := os.Getenv("JOURNAL_DIR"); v != "" {
		cfg.Storage.JournalDir = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
