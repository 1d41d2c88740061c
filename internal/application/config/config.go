package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Debug      bool   `env:"DEBUG" envDefault:"false"`
	Port       string `env:"PORT" envDefault:"5000"`
	MetricPort string `env:"METRIC_PORT" envDefault:"9090"`
	Domain     string `env:"DOMAIN" envDefault:"http://localhost:5000"`

	// DataDir holds the media library: one subdirectory per movie,
	// episodes as <name>.mp4, optional <name>.jpg thumbnails.
	DataDir string `env:"DATA_DIR" envDefault:"./data"`

	// WebDir holds the static player/controller pages.
	WebDir string `env:"WEB_DIR" envDefault:"./web"`
}

func New() (*Config, error) {
	c, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	return &c, nil
}
