// Package sink delivers canonical product records to their destination.
// The crawl engine only sees the Sink interface; the concrete targets
// are a JSON-lines file, Postgres, or an in-memory buffer for tests.
package sink

import (
	"context"

	"alkoteka-crawler/internal/catalog"
)

// Sink accepts the canonical product stream.
type Sink interface {
	Write(ctx context.Context, p catalog.Product) error
	Close(ctx context.Context) error
}
