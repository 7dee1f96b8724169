package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	gorillasessions "github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"

	apperrors "github.com/guildpulse/dashboard/internal/errors"
	"github.com/guildpulse/dashboard/internal/metrics"
)

const oauthTimeout = 10 * time.Second

// requireAuth resolves the session cookie to a server-side identity. Anything
// short of a live identity redirects to the landing page; an expired session
// is indistinguishable from never having logged in.
func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess, err := s.cookies.Get(c.Request(), sessionName)
		if err != nil {
			return c.Redirect(302, "/")
		}

		raw, ok := sess.Values[sessionKeySID].(string)
		if !ok {
			return c.Redirect(302, "/")
		}

		sid, err := uuid.Parse(raw)
		if err != nil {
			return c.Redirect(302, "/")
		}

		identity, err := s.sessions.Get(c.Request().Context(), sid)
		if err != nil {
			return c.Redirect(302, "/")
		}

		// The store already rolled its TTL; re-save the cookie so the
		// client-side max-age rolls with it.
		if err := sess.Save(c.Request(), c.Response().Writer); err != nil {
			slog.WarnContext(c.Request().Context(), "Failed to refresh session cookie", "error", err)
		}

		c.Set(contextKeyIdentity, identity)
		return next(c)
	}
}

func generateOAuthState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate OAuth state: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// handleLogin starts the provider redirect: stash a CSRF state nonce in the
// cookie session and send the client to Discord.
func (s *Server) handleLogin(c echo.Context) error {
	state, err := generateOAuthState()
	if err != nil {
		return apperrors.InternalError("Internal error", err)
	}

	sess, err := s.cookies.Get(c.Request(), sessionName)
	if err != nil {
		slog.WarnContext(c.Request().Context(), "Failed to get session for OAuth state", "error", err)
	}
	sess.Values[sessionKeyOAuthState] = state
	if err := sess.Save(c.Request(), c.Response().Writer); err != nil {
		return apperrors.InternalError("Internal error", err)
	}

	return c.Redirect(302, s.oauthClient.AuthCodeURL(state))
}

func (s *Server) handleOAuthCallback(c echo.Context) error {
	code := c.QueryParam("code")
	if code == "" {
		return apperrors.ValidationError("Missing code parameter")
	}

	sess, err := s.cookies.Get(c.Request(), sessionName)
	if err != nil {
		return apperrors.ValidationError("Invalid session")
	}
	expectedState, ok := sess.Values[sessionKeyOAuthState].(string)
	if !ok || expectedState == "" {
		return apperrors.ValidationError("Missing OAuth state")
	}
	if c.QueryParam("state") != expectedState {
		return apperrors.ValidationError("Invalid OAuth state")
	}
	delete(sess.Values, sessionKeyOAuthState)

	ctx, cancel := context.WithTimeout(c.Request().Context(), oauthTimeout)
	defer cancel()

	identity, err := s.oauthClient.ExchangeCode(ctx, code)
	if err != nil {
		slog.ErrorContext(c.Request().Context(), "OAuth exchange failed", "error", err)
		metrics.OAuthLoginsTotal.WithLabelValues("failure").Inc()
		return s.resetToAnonymous(c, sess)
	}

	sid := uuid.New()
	if err := s.sessions.Put(ctx, sid, identity); err != nil {
		slog.ErrorContext(c.Request().Context(), "Failed to store session", "error", err)
		metrics.OAuthLoginsTotal.WithLabelValues("failure").Inc()
		return s.resetToAnonymous(c, sess)
	}

	sess.Values[sessionKeySID] = sid.String()
	if err := sess.Save(c.Request(), c.Response().Writer); err != nil {
		// The cookie never reached the client; drop the server-side entry
		// rather than leak a half-initialized session.
		if delErr := s.sessions.Delete(c.Request().Context(), sid); delErr != nil {
			slog.ErrorContext(c.Request().Context(), "Failed to clean up session", "error", delErr)
		}
		metrics.OAuthLoginsTotal.WithLabelValues("failure").Inc()
		return apperrors.InternalError("Failed to save session", err)
	}

	metrics.OAuthLoginsTotal.WithLabelValues("success").Inc()
	return c.Redirect(302, "/dashboard")
}

// resetToAnonymous destroys any partial session state after a failed exchange
// and sends the client back to the landing page. A half-initialized session
// must never survive.
func (s *Server) resetToAnonymous(c echo.Context, sess *gorillasessions.Session) error {
	if raw, ok := sess.Values[sessionKeySID].(string); ok {
		if sid, err := uuid.Parse(raw); err == nil {
			if err := s.sessions.Delete(c.Request().Context(), sid); err != nil {
				slog.ErrorContext(c.Request().Context(), "Failed to delete session", "error", err)
			}
		}
	}

	sess.Options.MaxAge = -1
	if err := sess.Save(c.Request(), c.Response().Writer); err != nil {
		slog.ErrorContext(c.Request().Context(), "Failed to clear session cookie", "error", err)
	}

	return c.Redirect(302, "/")
}

func (s *Server) handleLogout(c echo.Context) error {
	sess, err := s.cookies.Get(c.Request(), sessionName)
	if err != nil {
		slog.WarnContext(c.Request().Context(), "Failed to get session during logout", "error", err)
		sess, err = s.cookies.New(c.Request(), sessionName)
		if err != nil {
			slog.ErrorContext(c.Request().Context(), "Failed to create new session during logout", "error", err)
		}
	}

	// Destroy the server-side entry before touching the response: the logout
	// must be complete by the time the redirect goes out.
	if raw, ok := sess.Values[sessionKeySID].(string); ok {
		if sid, parseErr := uuid.Parse(raw); parseErr == nil {
			if delErr := s.sessions.Delete(c.Request().Context(), sid); delErr != nil {
				slog.ErrorContext(c.Request().Context(), "Failed to delete session", "error", delErr)
			}
		}
	}

	sess.Options.MaxAge = -1
	if err := sess.Save(c.Request(), c.Response().Writer); err != nil {
		return apperrors.InternalError("Failed to logout due to session error. Please try again or clear your browser cookies.", err)
	}

	return c.Redirect(302, "/")
}
