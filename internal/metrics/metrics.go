// Package metrics exposes Prometheus collectors for the crawler and a
// small HTTP surface to scrape them from while a run is in flight.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Requests tracks the number of catalog API requests dispatched.
	Requests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "alkoteka_requests_total",
		Help: "The total number of HTTP requests sent to the catalog API.",
	})
	// RequestErrors tracks requests that ended in a transport error.
	RequestErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "alkoteka_request_errors_total",
		Help: "The total number of failed HTTP requests.",
	})
	// RateLimitHits tracks 429 responses from the catalog API.
	RateLimitHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "alkoteka_rate_limit_hits_total",
		Help: "The total number of times the crawler was rate limited.",
	})
	// ForbiddenHits tracks 403 responses from the catalog API.
	ForbiddenHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "alkoteka_forbidden_hits_total",
		Help: "The total number of forbidden responses received.",
	})
	// Retries tracks requests that were resubmitted after a recoverable failure.
	Retries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "alkoteka_retries_total",
		Help: "The total number of request retries.",
	})
	// DroppedRequests tracks requests abandoned after exhausting retries.
	DroppedRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "alkoteka_dropped_requests_total",
		Help: "The total number of requests dropped after the retry budget.",
	})
	// ProxyEvictions tracks proxies removed from the rotation pool.
	ProxyEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "alkoteka_proxy_evictions_total",
		Help: "The total number of proxies evicted for repeated failures.",
	})
	// Products tracks canonical product records handed to the sink.
	Products = promauto.NewCounter(prometheus.CounterOpts{
		Name: "alkoteka_products_total",
		Help: "The total number of product records emitted.",
	})
	// CategoriesTruncated tracks categories abandoned before their last page.
	CategoriesTruncated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "alkoteka_categories_truncated_total",
		Help: "The total number of categories truncated by repeated failures.",
	})
)
