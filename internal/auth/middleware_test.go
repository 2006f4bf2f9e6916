package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func sessionRequest(t *testing.T, tokens *TokenService, userID string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if userID != "" {
		token, err := tokens.Generate(userID)
		if err != nil {
			t.Fatalf("generating token: %v", err)
		}
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	}
	return req
}

func TestRequireAuth(t *testing.T) {
	tokens, err := NewTokenService(testSecret)
	if err != nil {
		t.Fatal(err)
	}

	var gotUserID string
	handler := RequireAuth(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, _ = UserIDFromContext(r.Context())
	}))

	// No cookie → 401, handler never runs.
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, sessionRequest(t, tokens, ""))
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("no cookie: status = %d, want 401", rr.Code)
	}

	// Garbage cookie → 401.
	rr = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "not-a-token"})
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("garbage cookie: status = %d, want 401", rr.Code)
	}

	// Valid cookie → handler sees the user ID.
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, sessionRequest(t, tokens, "user-42"))
	if rr.Code != http.StatusOK {
		t.Errorf("valid cookie: status = %d, want 200", rr.Code)
	}
	if gotUserID != "user-42" {
		t.Errorf("user ID in context = %q, want user-42", gotUserID)
	}
}

func TestOptionalAuth_NeverBlocks(t *testing.T) {
	tokens, err := NewTokenService(testSecret)
	if err != nil {
		t.Fatal(err)
	}

	var gotUserID string
	var ran bool
	handler := OptionalAuth(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ran = true
		gotUserID, _ = UserIDFromContext(r.Context())
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, sessionRequest(t, tokens, ""))
	if !ran || rr.Code != http.StatusOK {
		t.Errorf("anonymous request blocked: ran=%v status=%d", ran, rr.Code)
	}
	if gotUserID != "" {
		t.Errorf("anonymous request got user ID %q", gotUserID)
	}

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, sessionRequest(t, tokens, "user-42"))
	if gotUserID != "user-42" {
		t.Errorf("user ID = %q, want user-42", gotUserID)
	}
}
