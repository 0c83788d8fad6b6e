// internal/nyt/client.go
//
// HTTP client for the public puzzle feed.
// Each date is tried on the v2 endpoint first (newer format, includes image
// puzzles) and falls back to v1.

package nyt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultBaseURL is the puzzle feed root.
const DefaultBaseURL = "https://www.nytimes.com/svc/connections"

// ErrNotFound is returned when no API version has a puzzle for the date.
var ErrNotFound = errors.New("puzzle not available")

// Client fetches puzzle payloads by date.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient returns a Client with a bounded request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// FetchByDate downloads and decodes the puzzle published on date ("YYYY-MM-DD").
func (c *Client) FetchByDate(ctx context.Context, date string) (*Payload, error) {
	var errs []error
	for _, version := range []string{"v2", "v1"} {
		p, err := c.fetch(ctx, version, date)
		if err == nil {
			return p, nil
		}
		log.Warn().Err(err).Str("version", version).Str("date", date).Msg("fetch puzzle failed")
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	return nil, fmt.Errorf("%w: %s: %w", ErrNotFound, date, errors.Join(errs...))
}

func (c *Client) fetch(ctx context.Context, version, date string) (*Payload, error) {
	url := fmt.Sprintf("%s/%s/%s.json", c.BaseURL, version, date)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: status %d", url, res.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	return Decode(body)
}
