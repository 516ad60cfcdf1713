package config

import "os"

const (
	defaultStateDir       = "~/.local/share/clipforge"
	defaultRequestTimeout = 100
	defaultPartSizeMiB    = 5
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		API: API{
			RequestTimeout: defaultRequestTimeout,
		},
		Paths: Paths{
			StateDir: defaultStateDir,
		},
		Upload: Upload{
			PartSizeMiB: defaultPartSizeMiB,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

// applyEnvFallbacks fills settings from the environment when the file leaves
// them empty.
func (c *Config) applyEnvFallbacks() {
	if c.API.URL == "" {
		c.API.URL = os.Getenv("CLIPFORGE_API_URL")
	}
	if c.API.SocketURL == "" {
		c.API.SocketURL = os.Getenv("CLIPFORGE_SOCKET_URL")
	}
}
