// Package config provides environment-based configuration.
//
// Loads branding, Discord OAuth credentials, bot API access, and session
// settings from the environment. Validates required fields at startup.
package config
