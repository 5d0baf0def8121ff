package scraper

import (
	"context"
	"fmt"
	"io"
	mathrand "math/rand"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"carlister/scrapeworker/config"
	"carlister/scrapeworker/helpers"
	"carlister/scrapeworker/logger"
	"carlister/scrapeworker/pkg/errors"
	"carlister/scrapeworker/services/cache"
)

const blockKey = "cargurus_rate_limited"

// PageFetcher retrieves one page of HTML from the source site.
type PageFetcher interface {
	Fetch(ctx context.Context, pageURL string) (string, error)
}

// RetryPolicy controls retry behavior for the fetcher. Sleep is injectable
// so tests can use a fake clock.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Sleep       func(ctx context.Context, d time.Duration) error
}

// DefaultRetryPolicy returns the policy used in production.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    8 * time.Second,
		Sleep:       sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Backoff returns the jittered delay before the attempt following the
// given zero-based attempt number: base * 2^attempt, capped at MaxDelay,
// plus up to 50% random jitter.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	d := p.BaseDelay << uint(attempt)
	if d > p.MaxDelay || d <= 0 {
		d = p.MaxDelay
	}
	jitter := time.Duration(mathrand.Int63n(int64(d)/2 + 1))
	return d + jitter
}

// Fetcher issues HTTP GETs against the source site with per-attempt
// timeouts, rotating header profiles, retry with exponential backoff and an
// optional cooldown guard backed by the cache service. It holds no mutable
// per-call state, so concurrent Fetch calls need no coordination.
type Fetcher struct {
	client    *http.Client
	policy    RetryPolicy
	timeout   time.Duration
	limiter   *rate.Limiter
	cache     cache.CacheService
	blockTime time.Duration
	log       *logger.Logger
}

// NewFetcher creates a fetcher from the application config. cacheSvc may be
// nil, which disables the rate-limit cooldown guard.
func NewFetcher(cfg config.Config, cacheSvc cache.CacheService) *Fetcher {
	policy := RetryPolicy{
		MaxAttempts: cfg.MaxRetries,
		BaseDelay:   cfg.BaseBackoff,
		MaxDelay:    cfg.MaxBackoff,
		Sleep:       sleepContext,
	}
	return &Fetcher{
		client:    &http.Client{},
		policy:    policy,
		timeout:   cfg.FetchTimeout,
		limiter:   rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		cache:     cacheSvc,
		blockTime: cfg.BlockTime,
		log:       logger.ForFetcher(),
	}
}

// NewFetcherWithPolicy creates a fetcher with an explicit retry policy and
// HTTP client. Used by tests to inject a fake sleep.
func NewFetcherWithPolicy(client *http.Client, policy RetryPolicy, timeout time.Duration, cacheSvc cache.CacheService, blockTime time.Duration) *Fetcher {
	return &Fetcher{
		client:    client,
		policy:    policy,
		timeout:   timeout,
		cache:     cacheSvc,
		blockTime: blockTime,
		log:       logger.ForFetcher(),
	}
}

// Fetch retrieves the page at pageURL as UTF-8 HTML.
//
// Transport errors, timeouts, HTTP 429 and 5xx responses are retried with
// backoff under a different header profile; any other 4xx fails
// immediately. A 429 additionally arms the cooldown guard so subsequent
// calls short-circuit before the network until it expires.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	if f.cache != nil {
		if _, err := f.cache.Get(blockKey); err == nil {
			return "", errors.NewFetch("fetcher", "source site is cooling down after rate limiting", nil)
		}
	}

	var lastErr error
	for attempt := 0; attempt < f.policy.MaxAttempts; attempt++ {
		if attempt > 0 {
			if err := f.policy.Sleep(ctx, f.policy.Backoff(attempt-1)); err != nil {
				return "", errors.NewFetch("fetcher", "canceled while waiting to retry", err)
			}
		}
		if f.limiter != nil {
			if err := f.limiter.Wait(ctx); err != nil {
				return "", errors.NewFetch("fetcher", "canceled while rate limiting", err)
			}
		}

		html, status, err := f.attempt(ctx, pageURL, helpers.ProfileAt(attempt))
		if err != nil {
			lastErr = err
			f.log.Warn().Err(err).Str("url", pageURL).Int("attempt", attempt+1).Msg("Fetch attempt failed")
			continue
		}

		switch {
		case status == http.StatusOK && html != "":
			return html, nil
		case status == http.StatusOK:
			lastErr = fmt.Errorf("empty response body")
		case status == http.StatusTooManyRequests:
			lastErr = fmt.Errorf("rate limited with status %d", status)
			f.armBlockGuard()
		case status >= 500:
			lastErr = fmt.Errorf("server error status %d", status)
		default:
			// Other 4xx responses indicate a rejected request; retrying
			// the same URL wastes time.
			return "", errors.NewFetch("fetcher", fmt.Sprintf("request rejected with status %d", status), nil)
		}
		f.log.Warn().Str("url", pageURL).Int("status", status).Int("attempt", attempt+1).Msg("Retryable fetch failure")
	}

	return "", errors.NewFetch("fetcher",
		fmt.Sprintf("giving up after %d attempts", f.policy.MaxAttempts), lastErr)
}

// attempt performs a single GET with its own timeout.
func (f *Fetcher) attempt(ctx context.Context, pageURL string, profile helpers.HeaderProfile) (string, int, error) {
	attemptCtx := ctx
	if f.timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create request: %w", err)
	}
	helpers.ApplyProfile(req, profile)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", resp.StatusCode, nil
	}

	html, err := helpers.DecodeUTF8(body, resp.Header.Get("Content-Type"))
	if err != nil {
		return "", resp.StatusCode, err
	}
	return html, resp.StatusCode, nil
}

func (f *Fetcher) armBlockGuard() {
	if f.cache == nil || f.blockTime <= 0 {
		return
	}
	value := []byte(fmt.Sprintf("%d", int(f.blockTime.Seconds())))
	if err := f.cache.Set(blockKey, value, f.blockTime); err != nil {
		f.log.Warn().Err(err).Msg("Failed to arm rate-limit cooldown")
	}
}
