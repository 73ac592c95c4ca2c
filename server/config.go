package server

import (
	"time"

	"github.com/kbukum/pullfeed/server/middleware"
	"github.com/kbukum/pullfeed/validation"
)

// Config holds HTTP server configuration. WriteTimeout defaults to none
// since event streams stay open indefinitely.
type Config struct {
	Host         string                `yaml:"host" mapstructure:"host" json:"host"`
	Port         int                   `yaml:"port" mapstructure:"port" json:"port" validate:"min=0,max=65535"`
	ReadTimeout  time.Duration         `yaml:"read_timeout" mapstructure:"read_timeout" json:"read_timeout" validate:"min=0"`
	WriteTimeout time.Duration         `yaml:"write_timeout" mapstructure:"write_timeout" json:"write_timeout" validate:"min=0"`
	IdleTimeout  time.Duration         `yaml:"idle_timeout" mapstructure:"idle_timeout" json:"idle_timeout" validate:"min=0"`
	MaxBodyBytes int64                 `yaml:"max_body_bytes" mapstructure:"max_body_bytes" json:"max_body_bytes" validate:"min=0"`
	CORS         middleware.CORSConfig `yaml:"cors" mapstructure:"cors" json:"cors"`
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 15 * time.Second
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60 * time.Second
	}
	if c.MaxBodyBytes == 0 {
		c.MaxBodyBytes = 1 << 20
	}
	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = []string{"*"}
	}
	if len(c.CORS.AllowedMethods) == 0 {
		c.CORS.AllowedMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(c.CORS.AllowedHeaders) == 0 {
		c.CORS.AllowedHeaders = []string{"Origin", "Content-Type", "Accept", "Last-Event-ID", middleware.HeaderRequestID}
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	return validation.Validate(c)
}
