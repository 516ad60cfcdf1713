package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAPI(); err != nil {
		return err
	}
	if err := c.validateUpload(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateAPI() error {
	if c.API.URL == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/clipforge/config.toml"
		}
		return fmt.Errorf("api.url is required. Set CLIPFORGE_API_URL env var or edit %s (create with 'clipforge config init')", defaultPath)
	}
	parsed, err := url.Parse(c.API.URL)
	if err != nil || parsed.Host == "" {
		return fmt.Errorf("api.url %q is not a valid URL", c.API.URL)
	}
	switch parsed.Scheme {
	case "http", "https":
	default:
		return fmt.Errorf("api.url must use http or https, got %q", parsed.Scheme)
	}
	if c.API.SocketURL != "" {
		socket, err := url.Parse(c.API.SocketURL)
		if err != nil || socket.Host == "" {
			return fmt.Errorf("api.socket_url %q is not a valid URL", c.API.SocketURL)
		}
		switch socket.Scheme {
		case "ws", "wss":
		default:
			return fmt.Errorf("api.socket_url must use ws or wss, got %q", socket.Scheme)
		}
	}
	return nil
}

func (c *Config) validateUpload() error {
	if c.Upload.PartSizeMiB < 1 {
		return errors.New("upload.part_size_mib must be at least 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q is not recognized", c.Logging.Level)
	}
}
