package agent

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"wakemeup/internal/wol"
)

// Config is the agent's yaml config file, with env overrides
// (WAKEMEUP_SERVER, WAKEMEUP_USERNAME, WAKEMEUP_PASSWORD) so
// credentials can stay out of the file.
type Config struct {
	// Server is the relay's host:port.
	Server   string `yaml:"server"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	// TLS selects https/wss when talking to the relay.
	TLS bool `yaml:"tls"`
	// BroadcastAddr is where magic packets are sent. Defaults to the
	// limited-broadcast address on port 9.
	BroadcastAddr string `yaml:"broadcast_addr"`
}

// Validate is separate from loading so callers can layer flag
// overrides on top of the file and env before checking.
func (c Config) Validate() error {
	if c.Server == "" {
		return fmt.Errorf("agent: server is required")
	}
	if c.Username == "" || c.Password == "" {
		return fmt.Errorf("agent: username and password are required")
	}
	return nil
}

// LoadConfig reads path (may be empty for env-only configuration) and
// applies env overrides and defaults.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("agent: read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("agent: parse config: %w", err)
		}
	}

	if v := os.Getenv("WAKEMEUP_SERVER"); v != "" {
		cfg.Server = v
	}
	if v := os.Getenv("WAKEMEUP_USERNAME"); v != "" {
		cfg.Username = v
	}
	if v := os.Getenv("WAKEMEUP_PASSWORD"); v != "" {
		cfg.Password = v
	}
	if cfg.BroadcastAddr == "" {
		cfg.BroadcastAddr = wol.DefaultBroadcastAddr
	}
	return cfg, nil
}
