package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/guildpulse/dashboard/internal/domain"
	apperrors "github.com/guildpulse/dashboard/internal/errors"
)

// handleDashboard renders the guild selector: the guilds the user can manage,
// each marked with whether the bot is already in it. The list is recomputed
// from the live identity and the upstream bot guild set on every request.
func (s *Server) handleDashboard(c echo.Context) error {
	identity, ok := currentIdentity(c)
	if !ok {
		return apperrors.InternalError("Internal error", nil).WithField("reason", "identity missing on authenticated route")
	}
	ctx := c.Request().Context()

	manageable := identity.ManageableGuilds()

	present, err := s.botClient.BotGuildIDs(ctx)
	if err != nil {
		// Degrade instead of failing the page: every guild shows as
		// bot-absent until the upstream recovers.
		slog.ErrorContext(ctx, "Bot guild list fetch failed, rendering selector without presence", "error", err)
		present = nil
	}

	return s.renderPage(c, "dashboard", 200, map[string]any{
		"Username":  identity.Username,
		"AvatarURL": identity.AvatarURL(),
		"Guilds":    domain.BuildGuildSummaries(manageable, present),
	})
}

// authorizeGuildPage runs the per-request access check for guild-scoped
// pages. Plain membership is enough; the manage-bit filter applies only to
// the selector. On denial it writes the 403 page itself and returns a nil
// identity without touching the upstream.
func (s *Server) authorizeGuildPage(c echo.Context) (*domain.Identity, string, error) {
	identity, ok := currentIdentity(c)
	if !ok {
		return nil, "", apperrors.InternalError("Internal error", nil).WithField("reason", "identity missing on authenticated route")
	}

	guildID := c.Param("guildID")
	if !identity.IsMember(guildID) {
		slog.WarnContext(c.Request().Context(), "Guild access denied", "guild_id", guildID, "user_id", identity.UserID)
		return nil, "", s.renderErrorPage(c, 403, "You do not have access to this server.")
	}

	return identity, guildID, nil
}

// renderGuildPage fetches the guild info resource and renders the named
// template with it.
func (s *Server) renderGuildPage(c echo.Context, templateName string) error {
	identity, guildID, err := s.authorizeGuildPage(c)
	if identity == nil {
		return err
	}
	ctx := c.Request().Context()

	raw, err := s.botClient.Call(ctx, http.MethodGet, "/api/guilds/"+guildID+"/info", nil)
	if err != nil {
		slog.ErrorContext(ctx, "Guild info fetch failed", "guild_id", guildID, "error", err)
		return s.renderErrorPage(c, 500, "Failed to load server information.")
	}

	var info map[string]any
	if err := json.Unmarshal(raw, &info); err != nil {
		slog.ErrorContext(ctx, "Guild info decode failed", "guild_id", guildID, "error", err)
		return s.renderErrorPage(c, 500, "Failed to load server information.")
	}

	return s.renderPage(c, templateName, 200, map[string]any{
		"Username":  identity.Username,
		"AvatarURL": identity.AvatarURL(),
		"GuildID":   guildID,
		"Guild":     info,
	})
}

func (s *Server) handleGuildOverview(c echo.Context) error {
	return s.renderGuildPage(c, "guild")
}

func (s *Server) handleGuildAIChat(c echo.Context) error {
	return s.renderGuildPage(c, "aichat")
}

func (s *Server) handleGuildSuggestions(c echo.Context) error {
	return s.renderGuildPage(c, "suggestions")
}
