package sink

import (
	"context"
	"sync"

	"alkoteka-crawler/internal/catalog"
)

// Memory buffers records in memory. Test double for the other sinks.
type Memory struct {
	mu       sync.Mutex
	products []catalog.Product
	closed   bool
}

// NewMemory returns an empty in-memory sink.
func NewMemory() *Memory {
	return &Memory{}
}

// Write appends the record to the buffer.
func (s *Memory) Write(_ context.Context, p catalog.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = append(s.products, p)
	return nil
}

// Close marks the sink closed.
func (s *Memory) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Products returns a copy of everything written so far.
func (s *Memory) Products() []catalog.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]catalog.Product(nil), s.products...)
}

// Closed reports whether Close was called.
func (s *Memory) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
