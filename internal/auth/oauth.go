// Package auth handles the OAuth login flow and session tokens.
//
// All cryptography and token validation is delegated to the external
// identity provider — this package only drives the authorization-code flow:
// redirect the user out, exchange the returned code for an access token, and
// fetch the userinfo profile with it.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/sebcun/ysws-tracker/internal/apperror"
)

// Identity is the portion of the provider's userinfo response we care about.
// The provider returns more fields; we only unmarshal what we need.
type Identity struct {
	Email              string `json:"email"`
	Nickname           string `json:"nickname"`
	Name               string `json:"name"`
	SlackID            string `json:"slack_id"`
	VerificationStatus string `json:"verification_status"`
	YSWSEligible       bool   `json:"ysws_eligible"`
}

// DisplayName prefers the nickname, falling back to the full name —
// the same precedence the provider documents.
func (id *Identity) DisplayName() string {
	if id.Nickname != "" {
		return id.Nickname
	}
	return id.Name
}

// Eligible reports whether the provider considers this identity allowed in:
// verified, and flagged YSWS-eligible. Ineligible identities are bounced to
// the unauthorized page without creating an account.
func (id *Identity) Eligible() bool {
	return id.VerificationStatus == "verified" && id.YSWSEligible
}

// Provider wraps golang.org/x/oauth2 for the Hack Club authorization-code
// flow. The code-for-token exchange happens server-to-server using the
// client secret; the access token never reaches the browser.
type Provider struct {
	config      *oauth2.Config
	userinfoURL string
}

// NewProvider builds a Provider against the given endpoints. callbackURL must
// match the redirect URI registered with the provider exactly.
//
// AuthStyleInParams sends client_id/client_secret in the form-encoded POST
// body, which is what the provider's token endpoint expects.
func NewProvider(clientID, clientSecret, authURL, tokenURL, userinfoURL, callbackURL string) *Provider {
	return &Provider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes:       []string{"openid", "profile", "email", "slack_id", "verification_status"},
			Endpoint: oauth2.Endpoint{
				AuthURL:   authURL,
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		userinfoURL: userinfoURL,
	}
}

// AuthURL returns the provider URL to redirect the user to. The state value
// is stored in a short-lived cookie and verified on callback (CSRF check).
func (p *Provider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state)
}

// Exchange completes the flow: trades the authorization code for an access
// token, then fetches the userinfo profile with it.
//
// Any provider failure (transport error or non-200) comes back wrapped as an
// upstream error — the callback handler surfaces it as a generic 400 with no
// retry, per the auth-boundary contract.
func (p *Provider) Exchange(ctx context.Context, code string) (*Identity, error) {
	oauthToken, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("auth: exchanging OAuth code: %w", apperror.Upstream("identity provider", err))
	}

	// config.Client returns an *http.Client that adds the Bearer header to
	// every request.
	client := p.config.Client(ctx, oauthToken)
	client.Timeout = 15 * time.Second

	resp, err := client.Get(p.userinfoURL)
	if err != nil {
		return nil, fmt.Errorf("auth: fetching userinfo: %w", apperror.Upstream("identity provider", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth: userinfo: %w",
			apperror.Upstream("identity provider", fmt.Errorf("status %d", resp.StatusCode)))
	}

	var id Identity
	if err := json.NewDecoder(resp.Body).Decode(&id); err != nil {
		return nil, fmt.Errorf("auth: decoding userinfo response: %w", apperror.Upstream("identity provider", err))
	}

	if id.Email == "" {
		return nil, fmt.Errorf("auth: provider returned an identity without an email")
	}

	return &id, nil
}
