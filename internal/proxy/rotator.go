// Package proxy manages the pool of outbound egress addresses used by
// the fetch layer. Addresses rotate round-robin, accumulate failure
// counts, and are evicted permanently once they fail too often. When
// the pool runs dry the rotator disables itself for the rest of the
// run rather than failing the crawl.
package proxy

import (
	"fmt"
	"net/url"
	"strings"
	"sync"

	"go.uber.org/zap"

	"alkoteka-crawler/internal/metrics"
)

// maxFailures is the per-address failure budget before eviction.
const maxFailures = 3

// Modes of operation.
const (
	ModeRotating = "rotating"
	ModeSingle   = "single"
)

// Config controls rotator behavior.
type Config struct {
	Enabled  bool
	Mode     string
	Endpoint string
	Auth     string
	ListFile string
	List     []string
}

// Rotator owns the proxy pool. All state sits behind one mutex; callers
// never mutate the pool directly.
type Rotator struct {
	mu       sync.Mutex
	enabled  bool
	mode     string
	endpoint string
	auth     string
	pool     []string
	failures map[string]int
	index    int

	authWarned bool
	logger     *zap.Logger
}

// New builds a Rotator from config. A missing or empty proxy source is
// a configuration failure that disables the subsystem, never an error:
// the crawl proceeds without proxies.
func New(cfg Config, logger *zap.Logger) *Rotator {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Rotator{
		mode:     cfg.Mode,
		endpoint: strings.TrimSpace(cfg.Endpoint),
		auth:     cfg.Auth,
		failures: make(map[string]int),
		logger:   logger.Named("proxy"),
	}
	if !cfg.Enabled {
		return r
	}

	switch cfg.Mode {
	case ModeSingle:
		if r.endpoint == "" {
			r.logger.Warn("proxy endpoint not configured, disabling proxy subsystem")
			return r
		}
		r.enabled = true
	default:
		r.mode = ModeRotating
		pool, err := loadList(cfg.ListFile, cfg.List)
		if err != nil {
			r.logger.Warn("failed to load proxy list, disabling proxy subsystem", zap.Error(err))
			return r
		}
		if len(pool) == 0 {
			r.logger.Warn("no proxies loaded, disabling proxy subsystem")
			return r
		}
		r.pool = pool
		r.enabled = true
		r.logger.Info("proxy pool loaded", zap.Int("proxies", len(pool)))
	}
	return r
}

// Enabled reports whether the rotator is still handing out proxies.
func (r *Rotator) Enabled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enabled
}

// Remaining returns the number of active addresses in the pool.
func (r *Rotator) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pool)
}

// Pick selects the egress for one request. In single mode it always
// returns the fixed endpoint; in rotating mode it round-robins over the
// active pool. The second result is false when no proxy applies, which
// after pool exhaustion stays false for the rest of the run.
func (r *Rotator) Pick() (*url.URL, string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.enabled {
		return nil, "", false
	}
	if r.mode == ModeSingle {
		u, err := r.proxyURL(r.endpoint)
		if err != nil {
			r.logger.Warn("invalid proxy endpoint, disabling proxy subsystem",
				zap.String("endpoint", r.endpoint), zap.Error(err))
			r.enabled = false
			return nil, "", false
		}
		return u, r.endpoint, true
	}

	for attempts := 0; attempts < len(r.pool)*2; attempts++ {
		if len(r.pool) == 0 {
			break
		}
		addr := r.pool[r.index%len(r.pool)]
		r.index++
		if r.failures[addr] >= maxFailures {
			continue
		}
		u, err := r.proxyURL(addr)
		if err != nil {
			r.logger.Warn("dropping unparsable proxy address", zap.String("proxy", addr), zap.Error(err))
			r.evictLocked(addr)
			continue
		}
		return u, addr, true
	}

	r.logger.Error("no working proxies available, disabling proxy subsystem")
	r.enabled = false
	return nil, "", false
}

// MarkFailure records a transport-level failure against an address,
// evicting it once it reaches the failure budget. Single-endpoint mode
// has no pool to evict from, so the call is a no-op there.
func (r *Rotator) MarkFailure(addr string) {
	if addr == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.enabled || r.mode != ModeRotating {
		return
	}
	r.failures[addr]++
	if r.failures[addr] < maxFailures {
		return
	}
	r.evictLocked(addr)
}

// evictLocked removes addr from the pool. Callers hold r.mu.
func (r *Rotator) evictLocked(addr string) {
	for i, p := range r.pool {
		if p != addr {
			continue
		}
		r.pool = append(r.pool[:i], r.pool[i+1:]...)
		r.failures[addr] = maxFailures
		metrics.ProxyEvictions.Inc()
		r.logger.Warn("evicted failing proxy",
			zap.String("proxy", addr), zap.Int("remaining", len(r.pool)))
		break
	}
	if len(r.pool) == 0 {
		r.enabled = false
		r.logger.Error("no working proxies left, disabling proxy subsystem")
	}
}

// proxyURL parses addr and attaches configured basic-auth credentials
// when the address does not already embed its own. A malformed
// credential string is logged once and skipped.
func (r *Rotator) proxyURL(addr string) (*url.URL, error) {
	u, err := url.Parse(addr)
	if err != nil {
		return nil, fmt.Errorf("parse proxy url: %w", err)
	}
	if r.auth == "" || u.User != nil {
		return u, nil
	}
	user, pass, ok := strings.Cut(r.auth, ":")
	if !ok {
		if !r.authWarned {
			r.logger.Warn("invalid proxy auth format, expected username:password")
			r.authWarned = true
		}
		return u, nil
	}
	u.User = url.UserPassword(user, pass)
	return u, nil
}
