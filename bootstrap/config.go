package bootstrap

import (
	"github.com/kbukum/pullfeed/config"
)

// Config is the constraint for application configuration types. A pointer
// to any struct embedding config.ServiceConfig satisfies it once it
// defines ApplyDefaults and Validate.
//
//	type AppConfig struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Feed feed.Config     `yaml:"feed" mapstructure:"feed"`
//	}
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}
