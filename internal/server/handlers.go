package server

import (
	"bytes"
	"html/template"
	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/guildpulse/dashboard/internal/domain"
)

// Session keys
const (
	sessionName          = "guildpulse_session"
	sessionKeySID        = "sid"
	sessionKeyOAuthState = "oauth_state"
)

// contextKeyIdentity is the echo context key requireAuth stores the
// resolved identity under.
const contextKeyIdentity = "identity"

// renderTemplate renders a template to a buffer first to prevent partial HTML
// from being sent if template execution fails.
func renderTemplate(c echo.Context, tmpl *template.Template, status int, data map[string]any) error {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		slog.ErrorContext(c.Request().Context(), "Template execution failed", "path", c.Request().URL.Path, "error", err)
		return c.String(500, "Failed to render page")
	}
	return c.HTMLBlob(status, buf.Bytes())
}

// renderPage renders one of the startup-parsed templates with branding merged in.
func (s *Server) renderPage(c echo.Context, name string, status int, data map[string]any) error {
	if data == nil {
		data = map[string]any{}
	}
	data["BotName"] = s.config.BotName
	data["BotLogoURL"] = s.config.BotLogoURL
	data["BotInviteURL"] = s.config.BotInviteURL
	data["SupportServerURL"] = s.config.SupportServerURL
	data["PrivacyURL"] = s.config.PrivacyURL
	data["TermsURL"] = s.config.TermsURL
	return renderTemplate(c, s.templates[name], status, data)
}

// renderErrorPage renders the shared error template. Only the fixed message
// reaches the client; details stay in the logs.
func (s *Server) renderErrorPage(c echo.Context, status int, message string) error {
	return s.renderPage(c, "error", status, map[string]any{
		"Status":  status,
		"Message": message,
	})
}

// currentIdentity returns the identity placed on the context by requireAuth.
func currentIdentity(c echo.Context) (*domain.Identity, bool) {
	identity, ok := c.Get(contextKeyIdentity).(*domain.Identity)
	return identity, ok
}
