package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

type feedSection struct {
	InitialAmount int `mapstructure:"initial_amount"`
	PullAmount    int `mapstructure:"pull_amount"`
}

type testConfig struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`
	Feed          feedSection `mapstructure:"feed"`
	Mode          string      `mapstructure:"mode"`
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

const yamlConfig = `
name: pullfeed
environment: staging
logging:
  level: warn
  format: json
feed:
  initial_amount: 6
  pull_amount: 20
mode: tui
`

func TestServiceConfigApplyDefaults(t *testing.T) {
	c := ServiceConfig{}
	c.ApplyDefaults()
	if c.Name != "pullfeed" || c.Environment != "development" {
		t.Errorf("defaults = %+v", c)
	}
	if c.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q", c.Logging.Level)
	}

	c = ServiceConfig{Debug: true}
	c.ApplyDefaults()
	if c.Logging.Level != "debug" {
		t.Errorf("debug should lower the log level, got %q", c.Logging.Level)
	}
}

func TestServiceConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		cfg    ServiceConfig
		errMsg string
	}{
		{"valid", ServiceConfig{Name: "x", Environment: "production"}, ""},
		{"missing name", ServiceConfig{Environment: "production"}, "name: is required"},
		{"bad env", ServiceConfig{Name: "x", Environment: "qa"}, "environment: must be one of"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.cfg.Logging.ApplyDefaults()
			err := tt.cfg.Validate()
			if tt.errMsg == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("err = %v, want containing %q", err, tt.errMsg)
			}
		})
	}
}

func TestLoadConfigFromYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yml", yamlConfig)

	var cfg testConfig
	if err := LoadConfig("pullfeed", &cfg, WithConfigFile(path)); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Environment != "staging" || cfg.Logging.Level != "warn" {
		t.Errorf("service config = %+v", cfg.ServiceConfig)
	}
	if cfg.Feed.InitialAmount != 6 || cfg.Feed.PullAmount != 20 {
		t.Errorf("feed = %+v", cfg.Feed)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	var cfg testConfig
	err := LoadConfig("pullfeed", &cfg,
		WithConfigFile("/nonexistent/config.yml"),
		WithEnvFile("/nonexistent/.env"),
	)
	if err != nil {
		t.Fatalf("missing files should be skipped, got %v", err)
	}
}

func TestLoadConfigMalformedFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yml", "feed: [unclosed")
	var cfg testConfig
	if err := LoadConfig("pullfeed", &cfg, WithConfigFile(path)); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	var cfg testConfig
	err := LoadConfig("pullfeed", &cfg,
		WithFileSystem(&mockFS{}),
		WithDefaults(map[string]any{"feed.pull_amount": 30, "mode": "serve"}),
	)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Feed.PullAmount != 30 || cfg.Mode != "serve" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadConfigPrecedence(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yml", yamlConfig)
	t.Setenv("PULLFEED_FEED_PULL_AMOUNT", "50")
	t.Setenv("PULLFEED_FEED_INITIAL_AMOUNT", "8")
	t.Setenv("FEED_PULL_AMOUNT", "999")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("pull", 30, "")
	flags.Int("initial", 4, "")
	flags.String("mode", "serve", "")
	if err := flags.Parse([]string{"--pull", "70"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	var cfg testConfig
	err := LoadConfig("pullfeed", &cfg,
		WithConfigFile(path),
		WithFlags(flags, map[string]string{
			"pull":    "feed.pull_amount",
			"initial": "feed.initial_amount",
		}),
	)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Feed.PullAmount != 70 {
		t.Errorf("PullAmount = %d, flag should win", cfg.Feed.PullAmount)
	}
	if cfg.Feed.InitialAmount != 8 {
		t.Errorf("InitialAmount = %d, env should beat file and unset flag", cfg.Feed.InitialAmount)
	}
	if cfg.Mode != "tui" {
		t.Errorf("Mode = %q, unset flag default must not override file", cfg.Mode)
	}
}

func TestLoadConfigEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := writeFile(t, dir, ".env", "PULLFEED_MODE=serve\n")
	t.Cleanup(func() { os.Unsetenv("PULLFEED_MODE") })

	var cfg testConfig
	if err := LoadConfig("pullfeed", &cfg, WithEnvFile(envPath), WithConfigFile("/nonexistent")); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Mode != "serve" {
		t.Errorf("Mode = %q, want value from .env", cfg.Mode)
	}
}

type mockFS struct {
	files map[string]bool
}

func (m *mockFS) Exists(path string) bool  { return m.files[path] }
func (m *mockFS) LoadEnv(path string) error { return nil }

func TestResolverSearchOrder(t *testing.T) {
	fs := &mockFS{files: map[string]bool{
		"./cmd/pullfeed/config.yml": true,
		"./config.yml":              true,
		".env":                      true,
	}}
	r := &Resolver{FileSystem: fs}

	files := r.ResolveFiles("pullfeed", LoaderConfig{})
	if files.ConfigFile != "./cmd/pullfeed/config.yml" {
		t.Errorf("ConfigFile = %q", files.ConfigFile)
	}
	if files.EnvFile != ".env" {
		t.Errorf("EnvFile = %q", files.EnvFile)
	}

	files = r.ResolveFiles("pullfeed", LoaderConfig{ConfigFile: "/explicit.yml"})
	if files.ConfigFile != "/explicit.yml" {
		t.Errorf("explicit path ignored: %q", files.ConfigFile)
	}
}

func TestEnvKeyVariants(t *testing.T) {
	got := envKeyVariants("FEED_PULL_AMOUNT")
	want := []string{
		"feed_pull_amount",
		"feed.pull.amount",
		"feed.pull_amount",
		"feed_pull.amount",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("envKeyVariants = %v, want %v", got, want)
	}

	if got := envKeyVariants("MODE"); !reflect.DeepEqual(got, []string{"mode"}) {
		t.Errorf("single part = %v", got)
	}
}
