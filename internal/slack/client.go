// Package slack posts lifecycle notifications to the Slack messaging API.
//
// Every send is fire-and-forget: the caller logs a failure and moves on, and
// a failed notification never rolls back the status change that triggered it.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sebcun/ysws-tracker/internal/apperror"
)

// Block is one Slack Block Kit element. The API accepts free-form JSON here,
// so a map keeps the builders readable without modelling the whole schema.
type Block map[string]any

type Client struct {
	apiURL string
	token  string
	http   *http.Client
}

func New(apiURL, botToken string) *Client {
	return &Client{
		apiURL: apiURL,
		token:  botToken,
		http:   &http.Client{Timeout: 15 * time.Second},
	}
}

type postMessageResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// PostMessage sends blocks to a channel. The channel may be a public channel
// ID or a user's Slack member ID (which opens a DM).
func (c *Client) PostMessage(ctx context.Context, channel string, blocks []Block) error {
	if c.token == "" {
		return fmt.Errorf("slack: bot token not configured")
	}

	payload, err := json.Marshal(map[string]any{
		"channel": channel,
		"blocks":  blocks,
	})
	if err != nil {
		return fmt.Errorf("slack: encoding message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/chat.postMessage", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("slack: building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("slack: chat.postMessage: %w", apperror.Upstream("slack", err))
	}
	defer resp.Body.Close()

	var result postMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("slack: decoding response: %w", apperror.Upstream("slack", err))
	}

	if !result.OK {
		return fmt.Errorf("slack: chat.postMessage: %w",
			apperror.Upstream("slack", fmt.Errorf("api error %q", result.Error)))
	}

	return nil
}
