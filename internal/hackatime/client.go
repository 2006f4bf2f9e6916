// Package hackatime is a client for the Hackatime time-tracking API.
//
// The API is a fixed external contract: per-user stats keyed by Slack member
// ID, returning the tracked sub-projects with their accumulated seconds.
// Calls are synchronous with a flat timeout — no retries; callers decide
// whether a failure is fatal (it isn't, anywhere in this app).
package hackatime

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sebcun/ysws-tracker/internal/apperror"
)

// ProjectStat is one tracked sub-project in a user's stats response.
type ProjectStat struct {
	Name         string `json:"name"`
	TotalSeconds int64  `json:"total_seconds"`
	Text         string `json:"text"` // human-formatted, e.g. "3 hrs 32 mins"
}

type statsResponse struct {
	Data struct {
		Projects []ProjectStat `json:"projects"`
	} `json:"data"`
}

type Client struct {
	baseURL   string
	startDate string
	http      *http.Client
}

// New creates a Client. startDate bounds the stats window (YYYY-MM-DD) so
// time tracked before the event doesn't count.
func New(baseURL, startDate string) *Client {
	return &Client{
		baseURL:   baseURL,
		startDate: startDate,
		http:      &http.Client{Timeout: 15 * time.Second},
	}
}

// ProjectStats fetches the tracked sub-projects for one user.
func (c *Client) ProjectStats(ctx context.Context, slackID string) ([]ProjectStat, error) {
	endpoint := fmt.Sprintf("%s/api/v1/users/%s/stats?limit=1000&features=projects&start_date=%s",
		c.baseURL, url.PathEscape(slackID), url.QueryEscape(c.startDate))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("hackatime: building request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hackatime: stats: %w", apperror.Upstream("hackatime", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("hackatime: stats: %w",
			apperror.Upstream("hackatime", fmt.Errorf("status %d", resp.StatusCode)))
	}

	var result statsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("hackatime: decoding stats response: %w", apperror.Upstream("hackatime", err))
	}

	return result.Data.Projects, nil
}

// SumSeconds totals the seconds of the stats whose names appear in names.
// Tracker names the user hasn't logged any time under simply contribute zero.
func SumSeconds(stats []ProjectStat, names []string) int64 {
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}

	var total int64
	for _, s := range stats {
		if wanted[s.Name] {
			total += s.TotalSeconds
		}
	}
	return total
}

// Hours converts tracked seconds to hours.
func Hours(seconds int64) float64 {
	return float64(seconds) / 3600
}
