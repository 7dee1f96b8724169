package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guildpulse/dashboard/internal/session"
)

// setOAuthState bakes a state nonce into the cookie session, as handleLogin
// would have before the provider redirect.
func setOAuthState(t *testing.T, srv *Server, state string) []*http.Cookie {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	sess, err := srv.cookies.Get(req, sessionName)
	require.NoError(t, err)
	sess.Values[sessionKeyOAuthState] = state
	require.NoError(t, sess.Save(req, rec))

	return rec.Result().Cookies()
}

func TestRequireAuth_NoSessionRedirectsToLanding(t *testing.T) {
	srv := newTestServer(t, &mockBotClient{})

	rec := doRequest(srv, http.MethodGet, "/dashboard", nil)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestRequireAuth_UnknownSessionIDRedirectsToLanding(t *testing.T) {
	srv := newTestServer(t, &mockBotClient{})

	// Valid cookie, but the server-side entry is gone (expired or deleted).
	cookies := loginAs(t, srv, memberIdentity())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	sess, err := srv.cookies.Get(req, sessionName)
	require.NoError(t, err)
	sid, err := uuid.Parse(sess.Values[sessionKeySID].(string))
	require.NoError(t, err)
	require.NoError(t, srv.sessions.Delete(context.Background(), sid))

	rec := doRequest(srv, http.MethodGet, "/dashboard", cookies)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestHandleLogin_RedirectsToProviderWithState(t *testing.T) {
	srv := newTestServer(t, &mockBotClient{}, withOAuthClient(&mockOAuthClient{}))

	rec := doRequest(srv, http.MethodGet, "/auth/login", nil)

	require.Equal(t, http.StatusFound, rec.Code)
	location, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "discord.com", location.Host)

	// The state in the redirect matches the one stored in the cookie session.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, cookie := range rec.Result().Cookies() {
		req.AddCookie(cookie)
	}
	sess, err := srv.cookies.Get(req, sessionName)
	require.NoError(t, err)
	assert.Equal(t, sess.Values[sessionKeyOAuthState], location.Query().Get("state"))
}

func TestHandleOAuthCallback_Success(t *testing.T) {
	identity := memberIdentity()
	srv := newTestServer(t, &mockBotClient{}, withOAuthClient(&mockOAuthClient{identity: identity}))

	cookies := setOAuthState(t, srv, "expected-state")
	rec := doRequest(srv, http.MethodGet, "/auth/callback?code=abc&state=expected-state", cookies)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/dashboard", rec.Header().Get("Location"))

	// The new cookie resolves to the stored identity.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, cookie := range rec.Result().Cookies() {
		req.AddCookie(cookie)
	}
	sess, err := srv.cookies.Get(req, sessionName)
	require.NoError(t, err)
	sid, err := uuid.Parse(sess.Values[sessionKeySID].(string))
	require.NoError(t, err)
	stored, err := srv.sessions.Get(context.Background(), sid)
	require.NoError(t, err)
	assert.Equal(t, identity.UserID, stored.UserID)
}

func TestHandleOAuthCallback_MissingCode(t *testing.T) {
	srv := newTestServer(t, &mockBotClient{}, withOAuthClient(&mockOAuthClient{}))

	cookies := setOAuthState(t, srv, "expected-state")
	rec := doRequest(srv, http.MethodGet, "/auth/callback?state=expected-state", cookies)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Missing code parameter","type":"validation"}`, rec.Body.String())
}

func TestHandleOAuthCallback_StateMismatch(t *testing.T) {
	srv := newTestServer(t, &mockBotClient{}, withOAuthClient(&mockOAuthClient{identity: memberIdentity()}))

	cookies := setOAuthState(t, srv, "expected-state")
	rec := doRequest(srv, http.MethodGet, "/auth/callback?code=abc&state=tampered", cookies)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid OAuth state","type":"validation"}`, rec.Body.String())
}

func TestHandleOAuthCallback_MissingState(t *testing.T) {
	srv := newTestServer(t, &mockBotClient{}, withOAuthClient(&mockOAuthClient{identity: memberIdentity()}))

	rec := doRequest(srv, http.MethodGet, "/auth/callback?code=abc&state=whatever", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleOAuthCallback_ExchangeFailureResetsToAnonymous(t *testing.T) {
	srv := newTestServer(t, &mockBotClient{}, withOAuthClient(&mockOAuthClient{err: errors.New("token exchange rejected")}))

	cookies := setOAuthState(t, srv, "expected-state")
	rec := doRequest(srv, http.MethodGet, "/auth/callback?code=abc&state=expected-state", cookies)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	// The cookie was expired, not replaced with a live session.
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == sessionName {
			assert.Equal(t, -1, cookie.MaxAge)
		}
	}
}

func TestHandleOAuthCallback_ExchangeFailureDestroysExistingSession(t *testing.T) {
	identity := memberIdentity()
	srv := newTestServer(t, &mockBotClient{}, withOAuthClient(&mockOAuthClient{err: errors.New("token exchange rejected")}))

	// A logged-in user re-runs the flow and the exchange fails: the old
	// session must not survive either.
	cookies := loginAs(t, srv, identity)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	sess, err := srv.cookies.Get(req, sessionName)
	require.NoError(t, err)
	sid, err := uuid.Parse(sess.Values[sessionKeySID].(string))
	require.NoError(t, err)
	sess.Values[sessionKeyOAuthState] = "expected-state"
	require.NoError(t, sess.Save(req, rec))

	result := doRequest(srv, http.MethodGet, "/auth/callback?code=abc&state=expected-state", rec.Result().Cookies())

	require.Equal(t, http.StatusFound, result.Code)
	assert.Equal(t, "/", result.Header().Get("Location"))

	_, err = srv.sessions.Get(context.Background(), sid)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestHandleLogout_DestroysSession(t *testing.T) {
	srv := newTestServer(t, &mockBotClient{})
	cookies := loginAs(t, srv, memberIdentity())

	rec := doRequest(srv, http.MethodGet, "/auth/logout", cookies)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	// Even replaying the old cookie no longer authenticates.
	after := doRequest(srv, http.MethodGet, "/dashboard", cookies)
	assert.Equal(t, http.StatusFound, after.Code)
	assert.Equal(t, "/", after.Header().Get("Location"))
}

func TestHandleLogout_WithoutSessionStillRedirects(t *testing.T) {
	srv := newTestServer(t, &mockBotClient{})

	rec := doRequest(srv, http.MethodGet, "/auth/logout", nil)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}
