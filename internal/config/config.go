package config

import (
	"fmt"
	"os"
)

type Config struct {
	AppEnv              string
	Port                string
	BotAPIURL           string
	BotAPIKey           string
	DiscordClientID     string
	DiscordClientSecret string
	DiscordRedirectURI  string
	SessionSecret       string
	BotName             string
	BotLogoURL          string
	BotInviteURL        string
	SupportServerURL    string
	PrivacyURL          string
	TermsURL            string
	OwnerID             string
	RedisURL            string
	LogLevel            string
	LogFormat           string
}

func Load() (*Config, error) {
	cfg := &Config{
		AppEnv:              getEnv("APP_ENV", "development"),
		Port:                getEnv("PORT", "8080"),
		BotAPIURL:           getEnv("BOT_API_URL", ""),
		BotAPIKey:           getEnv("BOT_API_KEY", ""),
		DiscordClientID:     getEnv("DISCORD_CLIENT_ID", ""),
		DiscordClientSecret: getEnv("DISCORD_CLIENT_SECRET", ""),
		DiscordRedirectURI:  getEnv("DISCORD_REDIRECT_URI", ""),
		SessionSecret:       getEnv("SESSION_SECRET", ""),
		BotName:             getEnv("BOT_NAME", "GuildPulse"),
		BotLogoURL:          getEnv("BOT_LOGO_URL", ""),
		BotInviteURL:        getEnv("BOT_INVITE_URL", ""),
		SupportServerURL:    getEnv("SUPPORT_SERVER_URL", ""),
		PrivacyURL:          getEnv("PRIVACY_URL", "/privacy"),
		TermsURL:            getEnv("TERMS_URL", "/terms"),
		OwnerID:             getEnv("OWNER_ID", ""),
		RedisURL:            getEnv("REDIS_URL", ""),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFormat:           getEnv("LOG_FORMAT", "text"),
	}

	if cfg.BotAPIURL == "" {
		return nil, fmt.Errorf("BOT_API_URL is required")
	}
	if cfg.BotAPIKey == "" {
		return nil, fmt.Errorf("BOT_API_KEY is required")
	}
	if cfg.DiscordClientID == "" {
		return nil, fmt.Errorf("DISCORD_CLIENT_ID is required")
	}
	if cfg.DiscordClientSecret == "" {
		return nil, fmt.Errorf("DISCORD_CLIENT_SECRET is required")
	}
	if cfg.DiscordRedirectURI == "" {
		return nil, fmt.Errorf("DISCORD_REDIRECT_URI is required")
	}
	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET is required")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
