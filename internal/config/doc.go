// Package config defines the gateway's YAML configuration, its defaults,
// and validation.
package config
