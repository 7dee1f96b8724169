package server

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "github.com/guildpulse/dashboard/internal/errors"
)

// proxyUpstream performs exactly one bot API call and forwards the response
// body to the client untouched. Failures surface as a structured error with
// the fixed per-endpoint message at status 500; the real cause only goes to
// the logs via the error middleware.
func (s *Server) proxyUpstream(c echo.Context, method, upstreamPath, failureMessage string, forwardBody bool) error {
	ctx := c.Request().Context()

	var body []byte
	if forwardBody {
		b, err := io.ReadAll(c.Request().Body)
		if err != nil {
			return apperrors.ValidationError("Invalid request body")
		}
		body = b
	}

	raw, err := s.botClient.Call(ctx, method, upstreamPath, body)
	if err != nil {
		return apperrors.InternalError(failureMessage, err).WithField("endpoint", upstreamPath)
	}

	return c.JSONBlob(200, raw)
}

func (s *Server) handleGuildChannels(c echo.Context) error {
	path := "/api/guilds/" + c.Param("guildID") + "/channels"
	return s.proxyUpstream(c, http.MethodGet, path, "Failed to fetch channels", false)
}

func (s *Server) handleAIChatConfig(c echo.Context) error {
	path := "/api/aichat/config/" + c.Param("guildID")
	return s.proxyUpstream(c, http.MethodGet, path, "Failed to fetch AI chat config", false)
}

func (s *Server) handleAIChatSave(c echo.Context) error {
	return s.proxyUpstream(c, http.MethodPost, "/api/aichat/save", "Failed to save AI chat config", true)
}

func (s *Server) handleAIChatResetMemory(c echo.Context) error {
	return s.proxyUpstream(c, http.MethodPost, "/api/aichat/reset-memory", "Failed to reset AI chat memory", true)
}

func (s *Server) handleAnalytics(c echo.Context) error {
	return s.proxyUpstream(c, http.MethodGet, "/api/analytics", "Failed to fetch analytics", false)
}

func (s *Server) handleSuggestionsConfig(c echo.Context) error {
	path := "/api/suggestions/config/" + c.Param("guildID")
	return s.proxyUpstream(c, http.MethodGet, path, "Failed to fetch suggestions config", false)
}

func (s *Server) handleSuggestionsStats(c echo.Context) error {
	path := "/api/suggestions/stats/" + c.Param("guildID")
	return s.proxyUpstream(c, http.MethodGet, path, "Failed to fetch suggestions stats", false)
}

func (s *Server) handleSuggestionsSetup(c echo.Context) error {
	return s.proxyUpstream(c, http.MethodPost, "/api/suggestions/setup", "Failed to set up suggestions", true)
}

func (s *Server) handleSuggestionsToggle(c echo.Context) error {
	return s.proxyUpstream(c, http.MethodPost, "/api/suggestions/toggle", "Failed to toggle suggestions", true)
}
