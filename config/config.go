package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config represents the complete server configuration
type Config struct {
	Server ServerSettings `hcl:"server,block"`
	Tables []TableConfig  `hcl:"table,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address         string `hcl:"address,optional"`
	Port            int    `hcl:"port,optional"`
	LogLevel        string `hcl:"log_level,optional"`
	StartingCredits int    `hcl:"starting_credits,optional"`
	DealerDelayMs   int    `hcl:"dealer_delay_ms,optional"`
	Debug           bool   `hcl:"debug,optional"`
}

// TableConfig defines a blackjack table configuration
type TableConfig struct {
	Name      string `hcl:"name,label"`
	DeckCount int    `hcl:"deck_count,optional"`
	NoCutCard bool   `hcl:"no_cut_card,optional"`
	MinBet    int    `hcl:"min_bet,optional"`
}

// DefaultConfig returns the configuration used when no file is present
func DefaultConfig() *Config {
	return &Config{
		Server: ServerSettings{
			Address:         "localhost",
			Port:            8080,
			LogLevel:        "info",
			StartingCredits: 1000,
			DealerDelayMs:   600,
		},
		Tables: []TableConfig{
			{
				Name:      "main",
				DeckCount: 1,
				MinBet:    5,
			},
		},
	}
}

// Load reads the configuration from an HCL file. A missing file yields the
// defaults rather than an error.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	// Apply defaults for missing values
	if config.Server.Address == "" {
		config.Server.Address = "localhost"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = "info"
	}
	if config.Server.StartingCredits == 0 {
		config.Server.StartingCredits = 1000
	}
	if config.Server.DealerDelayMs == 0 {
		config.Server.DealerDelayMs = 600
	}

	if len(config.Tables) == 0 {
		config.Tables = DefaultConfig().Tables
	}
	for i := range config.Tables {
		if config.Tables[i].DeckCount == 0 {
			config.Tables[i].DeckCount = 1
		}
		if config.Tables[i].MinBet == 0 {
			config.Tables[i].MinBet = 5
		}
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Server.StartingCredits < 0 {
		return fmt.Errorf("starting credits cannot be negative")
	}
	if c.Server.DealerDelayMs < 0 {
		return fmt.Errorf("dealer delay cannot be negative")
	}

	if len(c.Tables) == 0 {
		return fmt.Errorf("at least one table must be configured")
	}

	seen := map[string]bool{}
	for _, table := range c.Tables {
		if seen[table.Name] {
			return fmt.Errorf("table %s: duplicate name", table.Name)
		}
		seen[table.Name] = true

		if table.DeckCount < 1 || table.DeckCount > 5 {
			return fmt.Errorf("table %s: deck count must be between 1 and 5", table.Name)
		}
		if table.MinBet < 1 {
			return fmt.Errorf("table %s: minimum bet must be positive", table.Name)
		}
		if table.MinBet > c.Server.StartingCredits {
			return fmt.Errorf("table %s: minimum bet exceeds the starting credits", table.Name)
		}
	}

	return nil
}

// ListenAddress returns the full address the server binds to
func (c *Config) ListenAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}
