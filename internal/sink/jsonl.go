package sink

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"alkoteka-crawler/internal/catalog"
)

// JSONL writes one product record per line to a file.
type JSONL struct {
	mu   sync.Mutex
	file *os.File
	buf  *bufio.Writer
	enc  *json.Encoder
}

// NewJSONL creates or truncates path and returns a sink writing to it.
func NewJSONL(path string) (*JSONL, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}
	buf := bufio.NewWriter(file)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	return &JSONL{file: file, buf: buf, enc: enc}, nil
}

// Write appends one record as a JSON line.
func (s *JSONL) Write(_ context.Context, p catalog.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enc.Encode(p); err != nil {
		return fmt.Errorf("encode product: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying file.
func (s *JSONL) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.buf.Flush(); err != nil {
		return fmt.Errorf("flush output file: %w", err)
	}
	if err := s.file.Close(); err != nil {
		return fmt.Errorf("close output file: %w", err)
	}
	return nil
}
