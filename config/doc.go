// Package config handles loading and parsing of configuration from YAML files
// and environment variables. It defines the gateway configuration structure
// including the listen address, upstream AI API mirrors, circuit breaker,
// health probing and metrics exposition settings.
package config
