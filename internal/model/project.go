package model

import (
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle state of a project submission.
//
// Transitions:
//
//	Building → Pending Review   (owner submits)
//	Pending Review → Shipped    (reviewer approves)
//	Pending Review → Building   (reviewer rejects)
//
// Admins may additionally set any status directly, so no state is truly
// terminal for them.
type Status string

const (
	StatusBuilding      Status = "Building"
	StatusPendingReview Status = "Pending Review"
	StatusShipped       Status = "Shipped"
)

// ParseStatus normalizes a status keyword ("building", "pending", "shipped",
// or the full display form) into a Status. Returns false for anything else.
func ParseStatus(s string) (Status, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "building":
		return StatusBuilding, true
	case "pending", "pending review", "pending_review":
		return StatusPendingReview, true
	case "shipped":
		return StatusShipped, true
	}
	return "", false
}

// Frozen reports whether hour accrual is frozen for this status. Once a
// project is submitted for review (or shipped) its hours keep the last stored
// value regardless of upstream tracker changes.
func (s Status) Frozen() bool {
	return s == StatusPendingReview || s == StatusShipped
}

// Project is a hackathon submission owned by a single user.
//
// TrackedProjects holds the comma-separated Hackatime sub-project names the
// submission accrues time from. Across one user's projects these names must
// be disjoint — a tracker name can back at most one submission at a time.
//
// Hours is the accrued total; HoursPaid is the portion already spent in the
// rewards marketplace. Both live on the project row so the order debit can
// happen in a single transaction against the identity store.
type Project struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	DemoLink        string    `json:"demoLink"`
	RepoLink        string    `json:"repoLink"`
	TrackedProjects string    `json:"trackedProjects"`
	Hours           float64   `json:"hours"`
	HoursPaid       float64   `json:"hoursPaid"`
	Status          Status    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// TrackerNames splits TrackedProjects into trimmed, deduplicated names.
func (p *Project) TrackerNames() []string {
	return SplitTrackerNames(p.TrackedProjects)
}

// SplitTrackerNames parses a comma-separated tracker list, trimming
// whitespace and dropping empties and duplicates while preserving order.
func SplitTrackerNames(s string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, part := range strings.Split(s, ",") {
		name := strings.TrimSpace(part)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// FormatDuration renders an hour count as HH:MM:SS, e.g. 3.53h → "03:31:48".
func FormatDuration(hours float64) string {
	if hours < 0 {
		hours = 0
	}
	total := int(hours*3600 + 0.5)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

// FormatHoursShort renders an hour count the way Slack messages show it,
// e.g. 3.53h → "3h 32m".
func FormatHoursShort(hours float64) string {
	if hours < 0 {
		hours = 0
	}
	totalMinutes := int(hours*60 + 0.5)
	return fmt.Sprintf("%dh %dm", totalMinutes/60, totalMinutes%60)
}

// PublicProject is the owner-stripped view returned by the public listing.
// It carries the owner's Slack ID (needed for the public filter) but never
// the email or display name.
type PublicProject struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DemoLink    string    `json:"demoLink"`
	RepoLink    string    `json:"repoLink"`
	SlackID     string    `json:"slackId"`
	Hours       float64   `json:"hours"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}
