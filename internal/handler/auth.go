package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/xid"

	"github.com/sebcun/ysws-tracker/internal/auth"
	"github.com/sebcun/ysws-tracker/internal/service"
)

// stateCookie stores the OAuth CSRF state between the redirect to the
// provider and the callback. It only needs to live for one round trip.
const stateCookie = "oauth_state"

const stateTTL = 10 * time.Minute

// AuthHandler owns the OAuth login flow and the session cookie.
type AuthHandler struct {
	provider *auth.Provider
	tokens   *auth.TokenService
	users    *service.UserService
	logger   *slog.Logger
}

func NewAuthHandler(provider *auth.Provider, tokens *auth.TokenService, users *service.UserService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{provider: provider, tokens: tokens, users: users, logger: logger}
}

// HandleLogin redirects the browser to the identity provider's authorize
// page with a fresh state value pinned in a short-lived cookie.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   int(stateTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.provider.AuthURL(state), http.StatusFound)
}

// HandleCallback completes the OAuth flow: it verifies the state, swaps the
// code for an identity, checks eligibility, gets-or-creates the user row and
// sets the session cookie. Ineligible identities land on /unauthorized
// instead of getting a session.
func (h *AuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid OAuth state"})
		return
	}
	// The state is single-use.
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})

	code := r.URL.Query().Get("code")
	if code == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "missing authorization code"})
		return
	}

	identity, err := h.provider.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("OAuth exchange failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	if !identity.Eligible() {
		h.logger.Info("ineligible login rejected",
			slog.String("email", identity.Email),
			slog.String("verification", identity.VerificationStatus),
		)
		http.Redirect(w, r, "/unauthorized", http.StatusFound)
		return
	}

	user, err := h.users.Login(r.Context(), identity.Email, identity.DisplayName(), identity.SlackID)
	if err != nil {
		h.logger.Error("failed to persist user at login", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	token, err := h.tokens.Generate(user.ID)
	if err != nil {
		h.logger.Error("failed to issue session token", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(auth.SessionDuration.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	h.logger.Info("user logged in", slog.String("user_id", user.ID), slog.String("email", user.Email))
	http.Redirect(w, r, "/", http.StatusFound)
}

// HandleLogout clears the session cookie. Idempotent.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w)
	writeJSON(w, http.StatusOK, SuccessResponse{Success: true})
}

// HandleUnauthorized is the landing page for identities that failed the
// eligibility check.
func (h *AuthHandler) HandleUnauthorized(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusForbidden)
	_, _ = w.Write([]byte(`<!doctype html>
<html>
<head><title>Not eligible</title></head>
<body>
<h1>Sorry, you can't use this program.</h1>
<p>Your account must be verified and eligible to participate. If you think
this is a mistake, reach out in Slack.</p>
</body>
</html>
`))
}
