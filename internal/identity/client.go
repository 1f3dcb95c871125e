package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client verifies identity-provider tokens. Sign-in itself lives with the
// provider; this only exchanges its token for a stable subject id.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Skip    bool
}

// New creates a client. Skip mode accepts every token as a local dev user.
func New(baseURL string, skip bool) *Client {
	return &Client{
		BaseURL: baseURL,
		Skip:    skip,
		HTTP: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Verify resolves a provider token to a subject id.
func (c *Client) Verify(ctx context.Context, providerToken string) (string, error) {
	if c.Skip {
		return "local-user", nil
	}
	if providerToken == "" {
		return "", fmt.Errorf("provider token required")
	}

	body, _ := json.Marshal(map[string]string{"token": providerToken})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/verify", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("identity request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("identity error %s: %s", resp.Status, string(respBody))
	}

	var out struct {
		Subject string `json:"subject"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if out.Subject == "" {
		return "", fmt.Errorf("identity returned empty subject")
	}
	return out.Subject, nil
}
