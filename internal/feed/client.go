package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrFetchFailed reports that the calendar document could not be retrieved.
var ErrFetchFailed = errors.New("feed fetch failed")

const DefaultTimeout = 30 * time.Second

// Client downloads the calendar feed over HTTP.
type Client struct {
	url        string
	httpClient *http.Client
}

func NewClient(feedURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		url: feedURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Fetch performs a GET on the feed URL and returns the body. Any transport
// error or non-2xx status wraps ErrFetchFailed.
func (c *Client) Fetch(ctx context.Context) ([]byte, error) {
	if c.url == "" {
		return nil, fmt.Errorf("%w: feed URL is empty", ErrFetchFailed)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrFetchFailed, err)
	}
	req.Header.Set("Accept", "text/calendar")

	log.Debug().Str("url", RedactURL(c.url)).Msg("Fetching feed")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, redactErr(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrFetchFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read body: %v", ErrFetchFailed, err)
	}

	log.Info().
		Str("url", RedactURL(c.url)).
		Int("bytes", len(body)).
		Msg("Feed downloaded")

	return body, nil
}

// RedactURL keeps only scheme and host; feed URLs carry a personal token.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "ics://...(redacted)"
	}
	return u.Scheme + "://" + u.Host + "/...(redacted)"
}

// redactErr strips the request URL out of *url.Error values.
func redactErr(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return fmt.Errorf("%s %s: %w", uerr.Op, RedactURL(uerr.URL), uerr.Err)
	}
	return err
}
