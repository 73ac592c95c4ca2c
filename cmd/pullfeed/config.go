package main

import (
	"github.com/spf13/pflag"

	"github.com/kbukum/pullfeed/config"
	"github.com/kbukum/pullfeed/demo"
	"github.com/kbukum/pullfeed/feed"
	"github.com/kbukum/pullfeed/logger"
	"github.com/kbukum/pullfeed/observability"
	"github.com/kbukum/pullfeed/server"
	"github.com/kbukum/pullfeed/validation"
)

const (
	ModeTUI   = "tui"
	ModeServe = "serve"
)

// AppConfig is the pullfeed binary's configuration.
type AppConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Mode          string               `yaml:"mode" mapstructure:"mode"`
	Feed          feed.Config          `yaml:"feed" mapstructure:"feed"`
	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
	Demo          demo.Config          `yaml:"demo" mapstructure:"demo"`
}

// ApplyDefaults fills unset fields. The terminal surface owns stdout, so
// logs are discarded in tui mode unless sent to a file.
func (c *AppConfig) ApplyDefaults() {
	if c.Mode == "" {
		c.Mode = ModeTUI
	}
	if c.Mode == ModeTUI && (c.Logging.Output == "" || c.Logging.Output == logger.OutputStdout || c.Logging.Output == logger.OutputStderr) {
		c.Logging.Output = logger.OutputDiscard
	}
	c.ServiceConfig.ApplyDefaults()
	c.Feed.ApplyDefaults()
	c.Server.ApplyDefaults()
	if c.Observability.ServiceName == "" {
		c.Observability.ServiceName = c.Name
	}
	if c.Observability.Environment == "" {
		c.Observability.Environment = c.Environment
	}
	c.Observability.ApplyDefaults()
	c.Demo.ApplyDefaults()
}

// Validate validates every section.
func (c *AppConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	return validation.New().
		OneOf("mode", c.Mode, ModeTUI, ModeServe).
		Nested("feed", c.Feed.Validate()).
		Nested("server", c.Server.Validate()).
		Nested("observability", c.Observability.Validate()).
		Nested("demo", c.Demo.Validate()).
		Err()
}

// flagKeys maps command-line flags to config keys.
var flagKeys = map[string]string{
	"mode":        "mode",
	"initial":     "feed.initial_amount",
	"pull":        "feed.pull_amount",
	"port":        "server.port",
	"total":       "demo.total",
	"latency":     "demo.latency",
	"fail-after":  "demo.fail_after",
	"log-level":   "logging.level",
	"log-output":  "logging.output",
	"live-period": "demo.live_interval",
}

func newFlagSet() (*pflag.FlagSet, *string) {
	fs := pflag.NewFlagSet("pullfeed", pflag.ContinueOnError)
	configFile := fs.StringP("config", "c", "", "config file (default: ./config.yaml or ./config/pullfeed.yaml)")
	fs.StringP("mode", "m", ModeTUI, "surface to run: tui or serve")
	fs.Int("initial", feed.DefaultInitialAmount, "items pulled when a source is bound")
	fs.Int("pull", feed.DefaultPullAmount, "items pulled per end-reached signal")
	fs.Int("port", 8080, "HTTP port in serve mode")
	fs.Int("total", 200, "posts in the demo scroll stream")
	fs.Duration("latency", 0, "delay before each demo reply")
	fs.Int("fail-after", 0, "fail the demo stream after n posts")
	fs.Duration("live-period", 0, "interval between live demo posts")
	fs.String("log-level", "", "log level")
	fs.String("log-output", "", "log output: stdout, stderr, discard, or a file path")
	return fs, configFile
}

// loadConfig parses args and loads the configuration.
func loadConfig(args []string) (*AppConfig, error) {
	fs, configFile := newFlagSet()
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	cfg := &AppConfig{}
	if err := config.LoadConfig("pullfeed", cfg,
		config.WithConfigFile(*configFile),
		config.WithFlags(fs, flagKeys),
	); err != nil {
		return nil, err
	}
	return cfg, nil
}
