package feed

import "github.com/kbukum/pullfeed/validation"

const (
	// DefaultInitialAmount is the size of the first pull after a source is bound.
	DefaultInitialAmount = 4
	// DefaultPullAmount is the size of each pull triggered by end-reached.
	DefaultPullAmount = 30
)

// Config sizes the scroll controller's batches.
type Config struct {
	InitialAmount int `yaml:"initial_amount" mapstructure:"initial_amount" json:"initial_amount" validate:"min=1"`
	PullAmount    int `yaml:"pull_amount" mapstructure:"pull_amount" json:"pull_amount" validate:"min=1"`
}

// ApplyDefaults fills zero amounts with the defaults.
func (c *Config) ApplyDefaults() {
	if c.InitialAmount == 0 {
		c.InitialAmount = DefaultInitialAmount
	}
	if c.PullAmount == 0 {
		c.PullAmount = DefaultPullAmount
	}
}

// Validate rejects non-positive amounts.
func (c *Config) Validate() error {
	return validation.Validate(c)
}
