package config

import (
	"github.com/kbukum/pullfeed/logger"
	"github.com/kbukum/pullfeed/validation"
)

// ServiceConfig contains the fields every binary needs. Binaries embed it:
//
//	type AppConfig struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Feed feed.Config     `yaml:"feed" mapstructure:"feed"`
//	}
type ServiceConfig struct {
	Name        string        `yaml:"name" mapstructure:"name"`
	Environment string        `yaml:"environment" mapstructure:"environment"`
	Debug       bool          `yaml:"debug" mapstructure:"debug"`
	Logging     logger.Config `yaml:"logging" mapstructure:"logging"`
}

// ApplyDefaults applies default values. Embedding structs call it first.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "pullfeed"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Debug && c.Logging.Level == "" {
		c.Logging.Level = "debug"
	}
	c.Logging.ApplyDefaults()
}

// Validate validates the base fields. Embedding structs call it first.
func (c *ServiceConfig) Validate() error {
	return validation.New().
		Required("name", c.Name).
		OneOf("environment", c.Environment, "development", "staging", "production").
		Nested("logging", c.Logging.Validate()).
		Err()
}

// GetServiceConfig returns the embedded base config.
func (c *ServiceConfig) GetServiceConfig() *ServiceConfig { return c }
