package scraper

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"
)

const (
	DefaultUserAgent    = "jaundice/1.0"
	DefaultMaxBodyBytes = int64(10 * 1024 * 1024)
)

// FetchError reports a transport failure or a non-2xx response.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

type ScraperConfig struct {
	UserAgent    string
	RateLimit    float64 // requests per second and host, 0 disables limiting
	Burst        int
	MaxBodyBytes int64
	TLSConfig    *tls.Config
	Client       *http.Client // overrides the client built from TLSConfig
}

// Scraper fetches single pages. One Scraper and its connection pool are
// shared by all pipelines of a process.
type Scraper struct {
	config ScraperConfig
	client *http.Client

	mu       sync.Mutex
	limiters map[string]*rate.Limiter // by host, nil when limiting is off
}

func NewWithConfig(config ScraperConfig) (*Scraper, error) {
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}
	if config.MaxBodyBytes == 0 {
		config.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if config.Burst == 0 {
		config.Burst = 1
	}
	if config.RateLimit < 0 {
		return nil, fmt.Errorf("rate limit must not be negative, got %v", config.RateLimit)
	}

	client := config.Client
	if client == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = config.TLSConfig
		transport.MaxIdleConnsPerHost = 10
		// deadlines come from the caller's context
		client = &http.Client{Transport: transport}
	}

	s := &Scraper{
		config: config,
		client: client,
	}
	if config.RateLimit > 0 {
		s.limiters = make(map[string]*rate.Limiter)
	}
	return s, nil
}

func New() *Scraper {
	s, _ := NewWithConfig(ScraperConfig{})
	return s
}

// Fetch downloads url and returns its body decoded to UTF-8. Context
// cancellation and deadlines are returned as context errors, everything
// else that prevents getting a 2xx body as *FetchError.
func (s *Scraper) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}

	if limiter := s.limiterFor(req.URL.Host); limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", ctxErr
			}
			// the limiter refuses waits that would outlive the deadline
			return "", fmt.Errorf("rate limit wait for %s: %w", url, context.DeadlineExceeded)
		}
	}
	req.Header.Set("User-Agent", s.config.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := s.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", &FetchError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := s.readBody(resp)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", &FetchError{URL: url, Err: err}
	}
	return body, nil
}

func (s *Scraper) limiterFor(host string) *rate.Limiter {
	if s.limiters == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	limiter, ok := s.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(s.config.RateLimit), s.config.Burst)
		s.limiters[host] = limiter
	}
	return limiter
}

func (s *Scraper) readBody(resp *http.Response) (string, error) {
	limited := io.LimitReader(resp.Body, s.config.MaxBodyBytes)

	reader, err := charset.NewReader(limited, resp.Header.Get("Content-Type"))
	if err != nil {
		return "", fmt.Errorf("detect charset: %w", err)
	}

	var sb strings.Builder
	if _, err := io.Copy(&sb, reader); err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return sb.String(), nil
}

// IsFetchError reports whether err carries a *FetchError.
func IsFetchError(err error) bool {
	var fetchErr *FetchError
	return errors.As(err, &fetchErr)
}
