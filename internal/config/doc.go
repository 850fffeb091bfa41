// Package config loads and validates the application configuration.
//
// Values resolve with priority defaults < config.yaml < environment.
// Environment variables use the FIP prefix (FIP_SERVER_PORT,
// FIP_LLM_API_KEY, ...); the config.yaml next to the binary is optional.
package config
