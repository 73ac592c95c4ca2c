// Package config loads layered configuration with viper.
//
// Sources, lowest precedence first: defaults, a YAML file (explicit or
// found under ./cmd/<service>/, ./config/ or the working directory),
// PULLFEED_-prefixed environment variables (a .env file is loaded into the
// environment first via godotenv), and explicitly set pflag flags.
//
//	var cfg AppConfig
//	err := config.LoadConfig("pullfeed", &cfg,
//	    config.WithConfigFile(path),
//	    config.WithFlags(flags, map[string]string{"pull": "feed.pull_amount"}),
//	)
package config
