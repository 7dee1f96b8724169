package server

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	goredis "github.com/redis/go-redis/v9"

	"github.com/guildpulse/dashboard/internal/config"
	apperrors "github.com/guildpulse/dashboard/internal/errors"
	"github.com/guildpulse/dashboard/internal/platform/correlation"
	"github.com/guildpulse/dashboard/internal/session"
)

const sessionMaxAgeDays = 7

// pageTemplates are parsed once at startup; a missing file fails boot.
var pageTemplates = []string{
	"landing", "dashboard", "guild", "aichat", "suggestions",
	"privacy", "terms", "notfound", "error",
}

// botAPIClient is the upstream bot API surface the handlers need.
type botAPIClient interface {
	Call(ctx context.Context, method, path string, body []byte) (json.RawMessage, error)
	BotGuildIDs(ctx context.Context) (map[string]struct{}, error)
}

// redisHealthChecker is a minimal interface for Redis health checks
type redisHealthChecker interface {
	Ping(ctx context.Context) *goredis.StatusCmd
}

type Server struct {
	echo        *echo.Echo
	config      *config.Config
	botClient   botAPIClient
	sessions    session.Store
	cookies     *sessions.CookieStore
	oauthClient discordOAuthClient
	templates   map[string]*template.Template
	redisHealth redisHealthChecker // nil when the in-memory store is active
	startTime   time.Time
}

// NewServer wires the HTTP layer. redisHealth may be nil; readiness then
// skips the Redis check.
func NewServer(cfg *config.Config, botClient botAPIClient, store session.Store, redisHealth *goredis.Client) (*Server, error) {
	templates := make(map[string]*template.Template, len(pageTemplates))
	for _, name := range pageTemplates {
		tmpl, err := template.ParseFiles(fmt.Sprintf("web/templates/%s.html", name))
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		templates[name] = tmpl
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(correlationMiddleware())
	e.Use(apperrors.Middleware())

	cookies := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	cookies.Options = cookieOptions(cfg.AppEnv)

	srv := &Server{
		echo:        e,
		config:      cfg,
		botClient:   botClient,
		sessions:    store,
		cookies:     cookies,
		oauthClient: newDiscordOAuthClient(cfg.DiscordClientID, cfg.DiscordClientSecret, cfg.DiscordRedirectURI),
		templates:   templates,
		startTime:   time.Now(),
	}
	if redisHealth != nil {
		srv.redisHealth = redisHealth
	}

	srv.registerRoutes()

	return srv, nil
}

// cookieOptions returns the session cookie settings. The dashboard and the
// identity provider live on different origins, so production needs
// SameSite=None (which in turn requires Secure); local development keeps Lax.
func cookieOptions(appEnv string) *sessions.Options {
	opts := &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * sessionMaxAgeDays,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if appEnv == "production" {
		opts.Secure = true
		opts.SameSite = http.SameSiteNoneMode
	}
	return opts
}

// correlationMiddleware assigns each request a correlation ID so every log
// line emitted while handling it can be tied together.
func correlationMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := correlation.WithID(c.Request().Context(), correlation.NewID())
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
