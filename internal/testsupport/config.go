package testsupport

import (
	"path/filepath"
	"testing"

	"clipforge/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with a unique temp state directory per
// test and placeholder endpoints. It applies any provided options on top.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.API.URL = "http://backend.invalid"
	cfg.API.SocketURL = "ws://backend.invalid/ws"
	cfg.Paths.StateDir = filepath.Join(t.TempDir(), "state")

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithAPIURL points the config at a live test server.
func WithAPIURL(url string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.API.URL = url
	}
}

// WithSocketURL points the websocket endpoint at a live test server.
func WithSocketURL(url string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.API.SocketURL = url
	}
}
