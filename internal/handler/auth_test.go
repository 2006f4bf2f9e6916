package handler_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sebcun/ysws-tracker/internal/auth"
	"github.com/sebcun/ysws-tracker/internal/handler"
	"github.com/sebcun/ysws-tracker/internal/model"
	"github.com/sebcun/ysws-tracker/internal/repository/sqlite"
	"github.com/sebcun/ysws-tracker/internal/service"
)

// fakeProvider is an httptest server playing the identity provider: it
// issues a token for any code and returns the configured userinfo payload.
func fakeProvider(t *testing.T, userinfo string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"at-123","token_type":"bearer"}`))
	})
	mux.HandleFunc("/oauth/userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer at-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(userinfo))
	})
	return httptest.NewServer(mux)
}

func newAuthHandler(t *testing.T, providerURL string) (*handler.AuthHandler, *sqlite.IdentityDB) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	identityDB, err := sqlite.NewIdentity(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { identityDB.Close() })

	tokens, err := auth.NewTokenService("test-secret-that-is-long-enough")
	require.NoError(t, err)

	provider := auth.NewProvider("client-id", "client-secret",
		providerURL+"/oauth/authorize",
		providerURL+"/oauth/token",
		providerURL+"/oauth/userinfo",
		"http://localhost:8080/auth/callback",
	)

	users := service.NewUserService(identityDB.Users(), logger)
	return handler.NewAuthHandler(provider, tokens, users, logger), identityDB
}

func callbackRequest(state, cookieState, code string) *http.Request {
	target := "/auth/callback?state=" + url.QueryEscape(state)
	if code != "" {
		target += "&code=" + url.QueryEscape(code)
	}
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if cookieState != "" {
		req.AddCookie(&http.Cookie{Name: "oauth_state", Value: cookieState})
	}
	return req
}

func TestHandleLogin_RedirectsWithState(t *testing.T) {
	h, _ := newAuthHandler(t, "https://auth.example.com")

	rr := httptest.NewRecorder()
	h.HandleLogin(rr, httptest.NewRequest(http.MethodGet, "/login", nil))

	require.Equal(t, http.StatusFound, rr.Code)

	location, err := url.Parse(rr.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/oauth/authorize", location.Path)
	assert.Equal(t, "client-id", location.Query().Get("client_id"))
	assert.Contains(t, location.Query().Get("scope"), "verification_status")

	state := location.Query().Get("state")
	require.NotEmpty(t, state)

	// The same state must be pinned in the cookie for the callback check.
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "oauth_state", cookies[0].Name)
	assert.Equal(t, state, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestHandleCallback_StateMismatch(t *testing.T) {
	h, _ := newAuthHandler(t, "https://auth.example.com")

	rr := httptest.NewRecorder()
	h.HandleCallback(rr, callbackRequest("attacker-state", "real-state", "code-1"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	h.HandleCallback(rr, callbackRequest("some-state", "", "code-1"))
	assert.Equal(t, http.StatusBadRequest, rr.Code, "missing state cookie must fail")
}

func TestHandleCallback_EligibleUserGetsSession(t *testing.T) {
	srv := fakeProvider(t, `{
		"email":"kid@example.com","nickname":"Kid","name":"Kid Coder",
		"slack_id":"U0123ABCD","verification_status":"verified","ysws_eligible":true
	}`)
	defer srv.Close()

	h, identityDB := newAuthHandler(t, srv.URL)

	rr := httptest.NewRecorder()
	h.HandleCallback(rr, callbackRequest("state-1", "state-1", "code-1"))

	require.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/", rr.Header().Get("Location"))

	var sessionCookie *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == auth.SessionCookie {
			sessionCookie = c
		}
	}
	require.NotNil(t, sessionCookie, "callback must set the session cookie")
	assert.True(t, sessionCookie.HttpOnly)
	assert.NotEmpty(t, sessionCookie.Value)

	// The user row was created.
	user := lookupUser(t, identityDB, "kid@example.com")
	assert.Equal(t, "Kid", user.Nickname)
	assert.Equal(t, "U0123ABCD", user.SlackID)
}

func TestHandleCallback_IneligibleUserBounced(t *testing.T) {
	srv := fakeProvider(t, `{
		"email":"kid@example.com","nickname":"Kid",
		"slack_id":"U0123ABCD","verification_status":"pending","ysws_eligible":true
	}`)
	defer srv.Close()

	h, identityDB := newAuthHandler(t, srv.URL)

	rr := httptest.NewRecorder()
	h.HandleCallback(rr, callbackRequest("state-1", "state-1", "code-1"))

	require.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "/unauthorized", rr.Header().Get("Location"))

	for _, c := range rr.Result().Cookies() {
		assert.NotEqual(t, auth.SessionCookie, c.Name, "ineligible identity must not get a session")
	}

	// No account is created for ineligible identities.
	_, err := identityDB.Users().GetByID(context.Background(), "any")
	assert.Error(t, err)
}

func TestHandleCallback_ProviderFailureIsBadRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	h, _ := newAuthHandler(t, srv.URL)

	rr := httptest.NewRecorder()
	h.HandleCallback(rr, callbackRequest("state-1", "state-1", "code-1"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandleLogout_ClearsCookie(t *testing.T) {
	h, _ := newAuthHandler(t, "https://auth.example.com")

	rr := httptest.NewRecorder()
	h.HandleLogout(rr, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.SessionCookie, cookies[0].Name)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

// lookupUser reads the row for email through the store's login path;
// GetOrCreate returns an existing row untouched.
func lookupUser(t *testing.T, db *sqlite.IdentityDB, email string) *model.User {
	t.Helper()
	u := &model.User{Email: email}
	require.NoError(t, db.Users().GetOrCreate(context.Background(), u))
	return u
}
