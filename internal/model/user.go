// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered participant account.
//
// Identity comes from the Hack Club OAuth provider, so the stable external
// identifiers are the email address and the Slack member ID. We still generate
// our own internal string ID (xid) so primary keys aren't tied to a
// third-party's identifier scheme.
//
// Note that admin/reviewer status is NOT stored here. Roles are derived at
// request time by matching the email or Slack ID against configured
// allow-lists — see SessionUser and service.SessionService.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`    // Unique; get-or-create key on login
	Nickname  string    `json:"nickname"` // Display name from the provider
	SlackID   string    `json:"slackId"`  // Slack member ID, e.g. "U0123ABCD"
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SessionUser is an authenticated user augmented with role flags resolved
// from the configured allow-lists. It is produced once per request by the
// session resolver and passed explicitly to handlers — nothing reads roles
// out of ambient globals.
type SessionUser struct {
	User
	IsAdmin    bool `json:"isAdmin"`
	IsReviewer bool `json:"isReviewer"`
}
