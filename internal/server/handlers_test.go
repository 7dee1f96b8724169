package server

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/guildpulse/dashboard/internal/config"
	"github.com/guildpulse/dashboard/internal/domain"
	apperrors "github.com/guildpulse/dashboard/internal/errors"
	"github.com/guildpulse/dashboard/internal/session"
)

// --- Mock implementations ---

type mockBotClient struct {
	callFn        func(ctx context.Context, method, path string, body []byte) (json.RawMessage, error)
	botGuildIDsFn func(ctx context.Context) (map[string]struct{}, error)
	calls         []string
}

func (m *mockBotClient) Call(ctx context.Context, method, path string, body []byte) (json.RawMessage, error) {
	m.calls = append(m.calls, method+" "+path)
	if m.callFn != nil {
		return m.callFn(ctx, method, path, body)
	}
	return nil, fmt.Errorf("not implemented")
}

func (m *mockBotClient) BotGuildIDs(ctx context.Context) (map[string]struct{}, error) {
	m.calls = append(m.calls, "GET /api/bot/guilds")
	if m.botGuildIDsFn != nil {
		return m.botGuildIDsFn(ctx)
	}
	return map[string]struct{}{}, nil
}

type mockOAuthClient struct {
	identity *domain.Identity
	err      error
}

func (m *mockOAuthClient) AuthCodeURL(state string) string {
	return "https://discord.com/oauth2/authorize?state=" + state
}

func (m *mockOAuthClient) ExchangeCode(_ context.Context, _ string) (*domain.Identity, error) {
	return m.identity, m.err
}

// --- Test helpers ---

func testTemplates() map[string]*template.Template {
	parse := func(name, body string) *template.Template {
		return template.Must(template.New(name + ".html").Parse(body))
	}
	return map[string]*template.Template{
		"landing":     parse("landing", `Landing {{.LoginURL}}`),
		"dashboard":   parse("dashboard", `Dashboard {{.Username}}{{range .Guilds}} [{{.ID}} bot={{.BotPresent}}]{{end}}`),
		"guild":       parse("guild", `Guild {{.GuildID}} {{.Guild.name}}`),
		"aichat":      parse("aichat", `AIChat {{.GuildID}}`),
		"suggestions": parse("suggestions", `Suggestions {{.GuildID}}`),
		"privacy":     parse("privacy", `Privacy`),
		"terms":       parse("terms", `Terms`),
		"notfound":    parse("notfound", `NotFound {{.Path}}`),
		"error":       parse("error", `Error {{.Status}} {{.Message}}`),
	}
}

func newTestServer(t *testing.T, bot botAPIClient, opts ...func(*Server)) *Server {
	t.Helper()

	cookies := sessions.NewCookieStore([]byte("test-secret-key-32-bytes-long!!!"))
	cookies.Options = &sessions.Options{
		Path:   "/",
		MaxAge: 3600,
	}

	e := echo.New()
	// Install error middleware for tests to match production behavior
	e.Use(apperrors.Middleware())

	srv := &Server{
		echo: e,
		config: &config.Config{
			BotName:            "TestBot",
			DiscordClientID:    "test-client-id",
			DiscordRedirectURI: "http://localhost/auth/callback",
		},
		botClient: bot,
		sessions:  session.NewMemoryStore(clockwork.NewFakeClock()),
		cookies:   cookies,
		templates: testTemplates(),
		startTime: time.Now(),
	}

	for _, opt := range opts {
		opt(srv)
	}

	srv.registerRoutes()

	return srv
}

func withOAuthClient(oauth discordOAuthClient) func(*Server) {
	return func(s *Server) {
		s.oauthClient = oauth
	}
}

// loginAs stores the identity server-side and returns the cookies a browser
// would hold after the OAuth callback.
func loginAs(t *testing.T, srv *Server, identity *domain.Identity) []*http.Cookie {
	t.Helper()

	sid := uuid.New()
	require.NoError(t, srv.sessions.Put(context.Background(), sid, identity))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	sess, err := srv.cookies.Get(req, sessionName)
	require.NoError(t, err)
	sess.Values[sessionKeySID] = sid.String()
	require.NoError(t, sess.Save(req, rec))

	return rec.Result().Cookies()
}

// doRequest runs a request through the full router.
func doRequest(srv *Server, method, target string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	return rec
}

func memberIdentity() *domain.Identity {
	return &domain.Identity{
		UserID:   "100",
		Username: "tester",
		Guilds: []domain.GuildMembership{
			{ID: "A", Name: "Alpha", Permissions: "32"},
			{ID: "B", Name: "Beta", Permissions: "0"},
		},
	}
}
