// Package config handles loading of configuration from an optional YAML file
// and ADD_-prefixed environment variables. It defines the logging settings
// shared by both run modes and the server settings used by serve mode.
package config
