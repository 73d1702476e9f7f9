package config

import "github.com/caarlos0/env/v11"

type ServerConfig struct {
	PostgresDSN string `env:"POSTGRES_DSN,required,notEmpty"`
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`

	RoundsPerGame     int `env:"ROUNDS_PER_GAME" envDefault:"5"`
	InactivityMinutes int `env:"INACTIVITY_MINUTES" envDefault:"20"`
	SweepIntervalMins int `env:"SWEEP_INTERVAL_MINUTES" envDefault:"60"`
	MarketTickSeconds int `env:"MARKET_TICK_SECONDS" envDefault:"5"`
}

func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	err := env.Parse(&cfg)
	return cfg, err
}
