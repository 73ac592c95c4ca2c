package demo

import (
	"time"

	"github.com/kbukum/pullfeed/validation"
)

// Config shapes the synthetic post streams.
type Config struct {
	// Total is the number of distinct posts the scroll stream yields
	// before it ends.
	Total int `yaml:"total" mapstructure:"total" json:"total" validate:"min=0"`
	// CorrectionEvery re-emits an edited copy of a recent post after every
	// n new posts. 0 disables corrections.
	CorrectionEvery int `yaml:"correction_every" mapstructure:"correction_every" json:"correction_every" validate:"min=0"`
	// FailAfter makes the scroll stream fail after n new posts instead of
	// ending cleanly. 0 never fails.
	FailAfter int `yaml:"fail_after" mapstructure:"fail_after" json:"fail_after" validate:"min=0"`
	// Latency delays every scroll reply.
	Latency time.Duration `yaml:"latency" mapstructure:"latency" json:"latency" validate:"min=0"`
	// LiveInterval is the period between live posts on the prefix stream.
	LiveInterval time.Duration `yaml:"live_interval" mapstructure:"live_interval" json:"live_interval" validate:"min=0"`
	// Seed makes authors and bodies reproducible.
	Seed uint64 `yaml:"seed" mapstructure:"seed" json:"seed"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Total == 0 {
		c.Total = 200
	}
	if c.CorrectionEvery == 0 {
		c.CorrectionEvery = 7
	}
	if c.Latency == 0 {
		c.Latency = 25 * time.Millisecond
	}
	if c.LiveInterval == 0 {
		c.LiveInterval = 4 * time.Second
	}
	if c.Seed == 0 {
		c.Seed = 1
	}
}

// Validate rejects negative values.
func (c *Config) Validate() error {
	return validation.Validate(c)
}
