package config

import "strings"

const defaultStatsdPrefix = "hpi"

// StatsdConfig controls emission of metrics to a StatsD sink.
type StatsdConfig struct {
	Enabled bool   `env:"ENABLED" envDefault:"false"`
	Address string `env:"ADDRESS" envDefault:"127.0.0.1:8125"`
	Prefix  string `env:"PREFIX"  envDefault:"hpi"`
}

// Sanitize normalises derived fields and enforces safe defaults.
func (c *StatsdConfig) Sanitize() {
	c.Address = strings.TrimSpace(c.Address)
	if c.Address == "" {
		c.Enabled = false
	}
	if c.Prefix = strings.TrimSpace(c.Prefix); c.Prefix == "" {
		c.Prefix = defaultStatsdPrefix
	}
}

// IsEnabled returns true when metrics emission is active after sanitisation.
func (c *StatsdConfig) IsEnabled() bool {
	return c.Enabled && c.Address != ""
}
