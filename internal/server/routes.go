package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints (no auth required)
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Public pages
	s.echo.GET("/", s.handleLanding)
	s.echo.GET("/privacy", s.handlePrivacy)
	s.echo.GET("/terms", s.handleTerms)

	// Auth flow
	s.echo.GET("/auth/login", s.handleLogin)
	s.echo.GET("/auth/callback", s.handleOAuthCallback)
	s.echo.GET("/auth/logout", s.handleLogout)

	// Dashboard pages (authenticated)
	s.echo.GET("/dashboard", s.handleDashboard, s.requireAuth)
	s.echo.GET("/dashboard/:guildID", s.handleGuildOverview, s.requireAuth)
	s.echo.GET("/dashboard/:guildID/aichat", s.handleGuildAIChat, s.requireAuth)
	s.echo.GET("/dashboard/:guildID/suggestions", s.handleGuildSuggestions, s.requireAuth)

	// JSON API (authenticated, proxied to the bot API)
	api := s.echo.Group("/api", s.requireAuth)
	api.GET("/guilds/:guildID/channels", s.handleGuildChannels)
	api.GET("/aichat/config/:guildID", s.handleAIChatConfig)
	api.POST("/aichat/save", s.handleAIChatSave)
	api.POST("/aichat/reset-memory", s.handleAIChatResetMemory)
	api.GET("/analytics", s.handleAnalytics)
	api.GET("/suggestions/config/:guildID", s.handleSuggestionsConfig)
	api.GET("/suggestions/stats/:guildID", s.handleSuggestionsStats)
	api.POST("/suggestions/setup", s.handleSuggestionsSetup)
	api.POST("/suggestions/toggle", s.handleSuggestionsToggle)

	// Static assets
	s.echo.Static("/static", "web/static")

	// Everything else gets the branded 404 page
	s.echo.RouteNotFound("/*", s.handleNotFound)
}
