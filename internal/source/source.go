// Package source opens the dashboard's input files. A location is either a
// local path or an http(s) URL; remote reads go through retries with
// exponential backoff and a circuit breaker.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"os"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/climate-dashboard/internal/common"
)

// BackoffConfig controls exponential backoff behaviour.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultBackoff is used by NewOpener when no backoff is given.
var DefaultBackoff = BackoffConfig{
	MaxRetries:      3,
	InitialInterval: 500 * time.Millisecond,
	MaxInterval:     5 * time.Second,
}

var (
	// ErrCircuitOpen is returned when the breaker refuses a remote read.
	ErrCircuitOpen = errors.New("circuit breaker open")

	errRateLimited   = errors.New("rate limited")
	errServerError   = errors.New("server error")
	errUnexpected    = errors.New("unexpected status code")
	errNoHTTPClient  = errors.New("http client not configured")
	errInvalidConfig = errors.New("invalid backoff configuration")
)

// Opener resolves locations to readers.
type Opener struct {
	client  *http.Client
	backoff BackoffConfig
	circuit *gobreaker.CircuitBreaker
}

// NewOpener creates an Opener. client may be nil if only local paths are
// used; backoff may be the zero value to select DefaultBackoff.
func NewOpener(client *http.Client, backoff BackoffConfig) *Opener {
	if backoff == (BackoffConfig{}) {
		backoff = DefaultBackoff
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "data-source",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
	return &Opener{
		client:  client,
		backoff: backoff,
		circuit: cb,
	}
}

// IsRemote reports whether location is fetched over HTTP.
func IsRemote(location string) bool {
	return common.HasAnyPrefix(location, "http://", "https://")
}

// Open returns a reader for location. The caller closes it.
func (o *Opener) Open(ctx context.Context, location string) (io.ReadCloser, error) {
	if !IsRemote(location) {
		f, err := os.Open(location)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", location, err)
		}
		return f, nil
	}

	buildRequest := func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, location, nil)
	}
	resp, err := o.doRequestWithResilience(ctx, buildRequest)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", location, err)
	}
	return resp.Body, nil
}

// ReadAll reads the whole of location.
func (o *Opener) ReadAll(ctx context.Context, location string) ([]byte, error) {
	rc, err := o.Open(ctx, location)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", location, err)
	}
	return data, nil
}

// doRequestWithResilience executes the HTTP request with retries, exponential
// backoff, and the circuit breaker.
func (o *Opener) doRequestWithResilience(
	ctx context.Context,
	buildRequest func() (*http.Request, error),
) (*http.Response, error) {
	if o.client == nil {
		return nil, errNoHTTPClient
	}
	if o.backoff.MaxRetries < 0 || o.backoff.InitialInterval <= 0 {
		return nil, errInvalidConfig
	}

	var attempt int
	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		req, err := buildRequest()
		if err != nil {
			return nil, err
		}
		req = req.WithContext(ctx)

		result, err := o.circuit.Execute(func() (interface{}, error) {
			resp, execErr := o.client.Do(req)
			if execErr != nil {
				return nil, execErr
			}
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return resp, nil
			}

			resp.Body.Close()
			switch {
			case resp.StatusCode == http.StatusTooManyRequests:
				return nil, errRateLimited
			case resp.StatusCode >= 500:
				return nil, errServerError
			default:
				return nil, fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode)
			}
		})
		if err == nil {
			resp, ok := result.(*http.Response)
			if !ok {
				return nil, fmt.Errorf("unexpected result type from circuit breaker")
			}
			return resp, nil
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", ErrCircuitOpen, err)
		}
		// Client errors will not improve on retry.
		if errors.Is(err, errUnexpected) || attempt >= o.backoff.MaxRetries {
			return nil, err
		}

		delay := o.backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if delay > o.backoff.MaxInterval && o.backoff.MaxInterval > 0 {
			delay = o.backoff.MaxInterval
		}
		slog.Warn("source: retrying", "url", req.URL.String(), "attempt", attempt+1, "delay", delay, "err", err)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		attempt++
	}
}
