package main

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config is the full runtime configuration. The scoring constants default to
// the shipped game's balance (60 points per second survived, 3 seconds of
// jitter tolerance) but are tunable without a rebuild.
type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL"`
	DataDir     string `env:"DATA_DIR" envDefault:"data"`

	ScoreRatePerSecond    float64 `env:"SCORE_RATE_PER_SECOND" envDefault:"60"`
	ScoreToleranceSeconds float64 `env:"SCORE_TOLERANCE_SECONDS" envDefault:"3"`
	ShrinkThreshold       float64 `env:"SHRINK_THRESHOLD" envDefault:"0.85"`
	MaxEntries            int     `env:"MAX_ENTRIES" envDefault:"100"`
	TopN                  int     `env:"TOP_N" envDefault:"5"`

	AIURL   string `env:"AI_URL"`
	AIToken string `env:"AI_TOKEN"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

func (c Config) ScoringRules() ScoringRules {
	return ScoringRules{
		RatePerSecond:    c.ScoreRatePerSecond,
		ToleranceSeconds: c.ScoreToleranceSeconds,
		ShrinkThreshold:  c.ShrinkThreshold,
		MaxEntries:       c.MaxEntries,
		TopN:             c.TopN,
	}
}
