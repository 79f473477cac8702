package sequence

import (
	"context"
	"sync"
)

// MockAllocator is a test implementation of Allocator.
// Use in unit tests to avoid database dependencies.
type MockAllocator struct {
	mu       sync.Mutex
	counters map[string]int64

	// Prefix and PadWidth apply to all document types. Defaults: "COM", 6.
	Prefix   string
	PadWidth int

	// NextValueErr, when set, is returned by both methods.
	NextValueErr error
}

// NewMockAllocator creates an in-memory allocator starting all counters at zero.
func NewMockAllocator() *MockAllocator {
	return &MockAllocator{counters: make(map[string]int64)}
}

// NextValue implements Allocator.
func (m *MockAllocator) NextValue(ctx context.Context, counterName string) (int64, error) {
	if m.NextValueErr != nil {
		return 0, m.NextValueErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[counterName]++
	return m.counters[counterName], nil
}

// NextDocumentNumber implements Allocator.
func (m *MockAllocator) NextDocumentNumber(ctx context.Context, docType string) (string, error) {
	v, err := m.NextValue(ctx, "doc:"+docType)
	if err != nil {
		return "", err
	}
	prefix := m.Prefix
	if prefix == "" {
		prefix = "COM"
	}
	return FormatDocumentNumber(prefix, m.PadWidth, v), nil
}

// Ensure compile-time interface compliance.
var _ Allocator = (*MockAllocator)(nil)
