// Package config loads and validates application settings from a YAML
// config file and QUESTLOG_-prefixed environment variables, giving the
// rest of the application type-safe access to server, database, auth,
// LLM and job configuration.
package config
