// Package config loads, normalizes, and validates ClipForge client
// configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// CLIPFORGE_API_URL. The Config type centralizes every knob the CLI needs,
// allowing the backend URL, state directory, and upload tuning to be
// discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
