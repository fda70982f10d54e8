// Package fetch downloads plugin archives over HTTP(S).
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/soyeahso/duckshell/internal/logging"
)

// ErrTooLarge is returned when a response body exceeds the configured limit.
var ErrTooLarge = errors.New("response body too large")

type (
	// Client performs synchronous GET requests and returns whole bodies.
	Client struct {
		http      *retryablehttp.Client
		userAgent string
		maxBytes  int64
		log       *logging.Logger
	}

	// Options configures a Client.
	Options struct {
		Timeout   time.Duration // 0 = no timeout
		RetryMax  int           // 0 = single attempt
		UserAgent string
		MaxBytes  int64 // 0 = unlimited

		// RetryWaitMin / RetryWaitMax bound the backoff between attempts.
		// Zero values keep the library defaults.
		RetryWaitMin time.Duration
		RetryWaitMax time.Duration
	}
)

// New creates a Client. Library log output is routed through log.
func New(opts Options, log *logging.Logger) *Client {
	sub := log.Sub("fetch")

	rc := retryablehttp.NewClient()
	rc.RetryMax = opts.RetryMax
	rc.HTTPClient.Timeout = opts.Timeout
	rc.Logger = leveledLogger{log: sub}
	if opts.RetryWaitMin > 0 {
		rc.RetryWaitMin = opts.RetryWaitMin
	}
	if opts.RetryWaitMax > 0 {
		rc.RetryWaitMax = opts.RetryWaitMax
	}

	return &Client{
		http:      rc,
		userAgent: opts.UserAgent,
		maxBytes:  opts.MaxBytes,
		log:       sub,
	}
}

// Fetch GETs url and returns the response body. Any status other than 200 is
// an error.
func (c *Client) Fetch(ctx context.Context, url string) (body []byte, err error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: unexpected status %s", url, resp.Status)
	}

	var r io.Reader = resp.Body
	if c.maxBytes > 0 {
		r = io.LimitReader(resp.Body, c.maxBytes+1)
	}
	body, err = io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading body from %s: %w", url, err)
	}
	if c.maxBytes > 0 && int64(len(body)) > c.maxBytes {
		return nil, fmt.Errorf("GET %s: %w (limit %d bytes)", url, ErrTooLarge, c.maxBytes)
	}

	c.log.Debug().
		Str("url", url).
		Int("bytes", len(body)).
		Dur("duration", time.Since(start)).
		Msg("fetched")

	return body, nil
}

// leveledLogger adapts logging.Logger to retryablehttp.LeveledLogger.
type leveledLogger struct {
	log *logging.Logger
}

func (l leveledLogger) Error(msg string, kv ...interface{}) {
	l.log.Error().Fields(kv).Msg(msg)
}

func (l leveledLogger) Info(msg string, kv ...interface{}) {
	l.log.Debug().Fields(kv).Msg(msg)
}

func (l leveledLogger) Debug(msg string, kv ...interface{}) {
	l.log.Debug().Fields(kv).Msg(msg)
}

func (l leveledLogger) Warn(msg string, kv ...interface{}) {
	l.log.Warn().Fields(kv).Msg(msg)
}
