package server

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// handleLanding renders the public landing/login page. Clients that already
// hold a live session go straight to the dashboard.
func (s *Server) handleLanding(c echo.Context) error {
	if sess, err := s.cookies.Get(c.Request(), sessionName); err == nil {
		if raw, ok := sess.Values[sessionKeySID].(string); ok {
			if sid, err := uuid.Parse(raw); err == nil {
				if _, err := s.sessions.Get(c.Request().Context(), sid); err == nil {
					return c.Redirect(302, "/dashboard")
				}
			}
		}
	}

	return s.renderPage(c, "landing", 200, map[string]any{
		"LoginURL": "/auth/login",
	})
}

func (s *Server) handlePrivacy(c echo.Context) error {
	return s.renderPage(c, "privacy", 200, nil)
}

func (s *Server) handleTerms(c echo.Context) error {
	return s.renderPage(c, "terms", 200, nil)
}

func (s *Server) handleNotFound(c echo.Context) error {
	return s.renderPage(c, "notfound", 404, map[string]any{
		"Path": c.Request().URL.Path,
	})
}
