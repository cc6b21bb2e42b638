package config

import (
	"fmt"

	"go.uber.org/zap"
)

// NewLogger builds the production logger in production and the development logger elsewhere.
// LOG_LEVEL overrides the level of either.
func (c *Config) NewLogger() (*zap.Logger, error) {
	zcfg := zap.NewDevelopmentConfig()
	if c.Environment == "production" {
		zcfg = zap.NewProductionConfig()
	}
	if c.LogLevel != "" {
		level, err := zap.ParseAtomicLevel(c.LogLevel)
		if err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", c.LogLevel, err)
		}
		zcfg.Level = level
	}
	return zcfg.Build()
}
