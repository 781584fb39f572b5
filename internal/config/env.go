package config

import (
	"os"

	"github.com/quorumdev/quorum/internal/provider"
)

// envOverrides maps environment variables to config field setters.
var envOverrides = []struct {
	envVar string
	apply  func(*Config, string)
}{
	{
		envVar: "QUORUM_PROVIDER",
		apply: func(c *Config, v string) {
			c.Provider.Type = provider.Type(v)
		},
	},
	{
		envVar: "QUORUM_PROVIDER_CMD",
		apply: func(c *Config, v string) {
			c.Provider.Command = v
		},
	},
	{
		envVar: "QUORUM_GATE_MODE",
		apply: func(c *Config, v string) {
			c.Gate.Mode = v
		},
	},
	{
		envVar: "QUORUM_REPORT_DIR",
		apply: func(c *Config, v string) {
			c.Output.ReportDir = v
		},
	},
	{
		envVar: "QUORUM_LOG_LEVEL",
		apply: func(c *Config, v string) {
			c.LogLevel = v
		},
	},
}

// applyEnvOverrides modifies config in place with environment variable values.
func applyEnvOverrides(cfg *Config) {
	for _, override := range envOverrides {
		if val := os.Getenv(override.envVar); val != "" {
			override.apply(cfg, val)
		}
	}
}
