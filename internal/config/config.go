// Package config loads process configuration from the environment.
//
// Everything is read once at startup into an immutable Config value which is
// injected into the components that need it. In particular the admin and
// reviewer allow-lists live here — roles are never stored on user rows, they
// are derived per request from these lists.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port int

	IdentityDBPath string // users + projects + orders
	CatalogDBPath  string // faqs + rewards

	JWTSecret string

	// OAuth identity provider (Hack Club auth)
	OAuthClientID     string
	OAuthClientSecret string
	OAuthAuthURL      string
	OAuthTokenURL     string
	OAuthUserinfoURL  string
	OAuthCallbackURL  string

	// Hackatime time tracking
	HackatimeBaseURL   string
	HackatimeStartDate string // stats window start, YYYY-MM-DD

	// Slack messaging
	SlackBotToken    string
	SlackAPIURL      string
	SlackShipChannel string // public channel for shipped announcements

	// Allow-list roles. Admins match by email or Slack ID, reviewers by
	// Slack ID. Comma-separated in the environment.
	AdminAllowList    []string
	ReviewerAllowList []string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first if present (missing file is not an error).
func Load() (*Config, error) {
	_ = godotenv.Load()

	c := &Config{
		Port:               8080,
		IdentityDBPath:     envOr("IDENTITY_DB_PATH", "data/identity.db"),
		CatalogDBPath:      envOr("CATALOG_DB_PATH", "data/catalog.db"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		OAuthClientID:      os.Getenv("OAUTH_CLIENT_ID"),
		OAuthClientSecret:  os.Getenv("OAUTH_CLIENT_SECRET"),
		OAuthAuthURL:       envOr("OAUTH_AUTH_URL", "https://auth.hackclub.com/oauth/authorize"),
		OAuthTokenURL:      envOr("OAUTH_TOKEN_URL", "https://auth.hackclub.com/oauth/token"),
		OAuthUserinfoURL:   envOr("OAUTH_USERINFO_URL", "https://auth.hackclub.com/oauth/userinfo"),
		OAuthCallbackURL:   os.Getenv("OAUTH_CALLBACK_URL"),
		HackatimeBaseURL:   envOr("HACKATIME_BASE_URL", "https://hackatime.hackclub.com"),
		HackatimeStartDate: envOr("HACKATIME_START_DATE", "2025-12-16"),
		SlackBotToken:      os.Getenv("SLACK_BOT_TOKEN"),
		SlackAPIURL:        envOr("SLACK_API_URL", "https://slack.com/api"),
		SlackShipChannel:   envOr("SLACK_SHIP_CHANNEL", "C09FZ9G125V"),
		AdminAllowList:     splitList(os.Getenv("ADMIN_ALLOWLIST")),
		ReviewerAllowList:  splitList(os.Getenv("REVIEWER_ALLOWLIST")),
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", portStr, err)
		}
		c.Port = port
	}

	if c.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if c.OAuthClientID == "" || c.OAuthClientSecret == "" {
		return nil, fmt.Errorf("OAUTH_CLIENT_ID and OAUTH_CLIENT_SECRET are required")
	}
	if c.OAuthCallbackURL == "" {
		c.OAuthCallbackURL = fmt.Sprintf("http://localhost:%d/auth/callback", c.Port)
	}

	return c, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}
