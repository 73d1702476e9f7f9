package config

import "github.com/caarlos0/env/v11"

// LogConfig controls the global zerolog setup. With LOG_FILE unset, output
// goes to stdout; LOG_SAMPLE_EVERY of 0 or 1 disables sampling.
type LogConfig struct {
	Level       string `env:"LOG_LEVEL" envDefault:"info"`
	File        string `env:"LOG_FILE"`
	MaxMB       int    `env:"LOG_MAX_MB" envDefault:"10"`
	Pretty      bool   `env:"LOG_PRETTY" envDefault:"false"`
	SampleEvery int    `env:"LOG_SAMPLE_EVERY" envDefault:"0"`
}

func LoadLog() (LogConfig, error) {
	var cfg LogConfig
	err := env.Parse(&cfg)
	return cfg, err
}
