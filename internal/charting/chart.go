package charting

import "errors"

var ErrDestroyed = errors.New("chart already destroyed")

// Chart is a live chart handle. Config returns the chart's own configuration,
// which callers patch in place before calling Update.
type Chart interface {
	ID() string
	Config() *Config
	Update() error
	Destroy()
	Destroyed() bool
}

// Renderer creates live charts from a configuration.
type Renderer interface {
	NewChart(cfg *Config) (Chart, error)
}
