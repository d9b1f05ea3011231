// talks to the IGDB v4 API via the Twitch credential grant.
package igdb

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

var (
	DefaultAPIURL   = "https://api.igdb.com/v4"
	DefaultTokenURL = "https://id.twitch.tv/oauth2/token"
)

// RetryPolicy bounds how often a query is re-attempted and how long to
// sleep between attempts.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     func(attempt int) time.Duration
}

// 5 attempts, sleeping 2^attempt seconds between them.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 5,
		Backoff: func(attempt int) time.Duration {
			return time.Duration(1<<uint(attempt)) * time.Second
		},
	}
}

type Client struct {
	ClientID     string
	ClientSecret string
	Token        string

	APIURL   string
	TokenURL string

	HTTPClient *http.Client
	Retry      RetryPolicy

	// IGDB allows 4 req/sec, we stay well under it.
	RateLimit time.Duration

	// replaced in tests with a recording stub.
	Sleep func(time.Duration)
}

func NewClient(client_id string, client_secret string) *Client {
	return &Client{
		ClientID:     client_id,
		ClientSecret: client_secret,
		APIURL:       DefaultAPIURL,
		TokenURL:     DefaultTokenURL,
		HTTPClient:   &http.Client{Timeout: 15 * time.Second},
		Retry:        DefaultRetryPolicy(),
		RateLimit:    time.Second,
		Sleep:        time.Sleep,
	}
}

// exchanges the client credentials for a bearer token.
// a single attempt only. any failure here is a configuration problem
// and the caller is expected to give up.
func (c *Client) Authenticate(ctx context.Context) error {
	if c.ClientID == "" || c.ClientSecret == "" {
		return fmt.Errorf("missing client id or client secret")
	}

	params := url.Values{}
	params.Set("client_id", c.ClientID)
	params.Set("client_secret", c.ClientSecret)
	params.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.TokenURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create token request: %w", err)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to get token: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("token endpoint returned %d", resp.StatusCode)
	}

	token := gjson.GetBytes(body, "access_token")
	if !token.Exists() || token.String() == "" {
		return fmt.Errorf("token response missing 'access_token'")
	}

	c.Token = token.String()
	return nil
}

// one POST of an apicalypse query body, no retries.
// returns the response text and status, or an error on network failure.
func (c *Client) do(ctx context.Context, endpoint string, query string) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIURL+endpoint, strings.NewReader(query))
	if err != nil {
		return "", 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Client-ID", c.ClientID)
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("failed to fetch '%s': %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, fmt.Errorf("failed to read response body: %w", err)
	}

	return string(body), resp.StatusCode, nil
}

// issues a query with bounded retries and exponential backoff.
// exhaustion is not an error: the second return value is false and the
// caller is expected to skip that unit of work and move on.
func (c *Client) query(ctx context.Context, endpoint string, query string) (string, bool) {
	for attempt := 0; attempt < c.Retry.MaxAttempts; attempt++ {
		body, status, err := c.do(ctx, endpoint, query)
		if err != nil {
			slog.Warn("request failed", "endpoint", endpoint, "attempt", attempt+1, "error", err)
			c.Sleep(c.Retry.Backoff(attempt))
			continue
		}

		slog.Debug("got response", "endpoint", endpoint, "status", status)

		// a 400 from IGDB is usually transient load shedding, not a
		// malformed query. logged apart from the other failures but
		// handled the same way.
		if status == http.StatusBadRequest && attempt < c.Retry.MaxAttempts-1 {
			slog.Warn("bad request response, retrying", "endpoint", endpoint, "attempt", attempt+1)
			c.Sleep(c.Retry.Backoff(attempt))
			continue
		}

		if status < 200 || status > 299 {
			slog.Warn("unsuccessful response, waiting and trying again", "endpoint", endpoint, "status", status, "attempt", attempt+1)
			c.Sleep(c.Retry.Backoff(attempt))
			continue
		}

		return body, true
	}

	slog.Error("giving up after repeated attempts", "endpoint", endpoint, "num-attempts", c.Retry.MaxAttempts)
	return "", false
}
