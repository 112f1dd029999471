// Package config loads, normalizes, and validates subman configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// YOUTUBE_API_KEY, HF_TOKEN, OPENROUTER_API_KEY, and OPENAI_API_KEY. The
// default subtitle, manuscript, and quiz directories are relative to the
// working directory, matching how the tool is used from a study folder.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, a known quiz provider, and clear validation errors.
package config
