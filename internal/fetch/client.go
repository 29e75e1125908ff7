// Package fetch implements the outbound HTTP layer on top of gocolly.
// Each call clones a base collector, picks an egress proxy from the
// rotator, paces itself against a shared rate limiter, and returns the
// raw response for the crawl engine to classify.
package fetch

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"alkoteka-crawler/internal/metrics"
	"alkoteka-crawler/internal/proxy"
)

// defaultUserAgent is used when no user-agent list is configured.
const defaultUserAgent = "alkoteka-crawler/0.1"

// defaultHeaders mirror what the storefront frontend sends to its own
// API; the endpoint rejects requests that look too unlike a browser.
var defaultHeaders = map[string]string{
	"Accept":           "application/json, text/plain, */*",
	"Accept-Language":  "ru-RU,ru;q=0.9,en-US;q=0.8,en;q=0.7",
	"Cache-Control":    "no-cache",
	"Origin":           "https://alkoteka.com",
	"X-Requested-With": "XMLHttpRequest",
}

// Config controls client behavior.
type Config struct {
	UserAgents []string
	Timeout    time.Duration
	Delay      time.Duration
}

// Request is one outbound fetch.
type Request struct {
	URL     string
	Referer string
}

// Response carries the status, body, and the egress address that served
// the request ("" when the request went out directly).
type Response struct {
	StatusCode int
	Body       []byte
	Proxy      string
}

// Client issues paced, proxy-rotated GETs against the catalog API.
type Client struct {
	cfg           Config
	rotator       *proxy.Rotator
	limiter       *rate.Limiter
	baseCollector *colly.Collector
	logger        *zap.Logger
}

// New builds a Client. The rotator may be disabled; requests then go
// out directly.
func New(cfg Config, rotator *proxy.Rotator, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	limit := rate.Inf
	if cfg.Delay > 0 {
		limit = rate.Every(cfg.Delay)
	}

	c := colly.NewCollector(
		colly.Async(false),
		colly.AllowURLRevisit(),
		colly.ParseHTTPErrorResponse(),
	)

	return &Client{
		cfg:           cfg,
		rotator:       rotator,
		limiter:       rate.NewLimiter(limit, 1),
		baseCollector: c,
		logger:        logger.Named("fetch"),
	}
}

// Fetch executes a single GET. The returned error is transport-level
// only (connect/timeout/proxy); HTTP error statuses come back as a
// normal Response for the caller to classify. Transport failures are
// charged against the proxy that served the request.
func (c *Client) Fetch(ctx context.Context, req Request) (Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return Response{}, fmt.Errorf("pace request: %w", err)
	}

	collector := c.baseCollector.Clone()
	collector.UserAgent = c.userAgent()
	collector.SetRequestTimeout(c.cfg.Timeout)

	transport := newHTTPTransport()
	proxyAddr := ""
	if c.rotator != nil {
		if proxyURL, addr, ok := c.rotator.Pick(); ok {
			transport.Proxy = http.ProxyURL(proxyURL)
			proxyAddr = addr
		}
	}
	collector.WithTransport(transport)

	var (
		result   Response
		fetchErr error
	)
	collector.OnRequest(func(r *colly.Request) {
		for key, value := range defaultHeaders {
			r.Headers.Set(key, value)
		}
		if req.Referer != "" {
			r.Headers.Set("Referer", req.Referer)
		}
	})
	collector.OnResponse(func(r *colly.Response) {
		result = Response{
			StatusCode: r.StatusCode,
			Body:       append([]byte(nil), r.Body...),
			Proxy:      proxyAddr,
		}
	})
	collector.OnError(func(_ *colly.Response, err error) {
		fetchErr = err
	})

	metrics.Requests.Inc()
	if err := c.visit(ctx, collector, req.URL, &fetchErr); err != nil {
		metrics.RequestErrors.Inc()
		if proxyAddr != "" {
			c.rotator.MarkFailure(proxyAddr)
			c.logger.Debug("proxy charged with transport failure",
				zap.String("proxy", proxyAddr), zap.Error(err))
		}
		return Response{Proxy: proxyAddr}, err
	}

	switch result.StatusCode {
	case http.StatusForbidden:
		metrics.ForbiddenHits.Inc()
	case http.StatusTooManyRequests:
		metrics.RateLimitHits.Inc()
	}
	return result, nil
}

func (c *Client) visit(ctx context.Context, collector *colly.Collector, url string, fetchErr *error) error {
	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("fetch canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("visit %s: %w", url, err)
		}
		if *fetchErr != nil {
			return fmt.Errorf("fetch %s: %w", url, *fetchErr)
		}
		return nil
	}
}

func (c *Client) userAgent() string {
	if len(c.cfg.UserAgents) == 0 {
		return defaultUserAgent
	}
	return c.cfg.UserAgents[rand.IntN(len(c.cfg.UserAgents))]
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
