package sequence

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDocumentNumber(t *testing.T) {
	tests := []struct {
		name     string
		prefix   string
		padWidth int
		value    int64
		want     string
	}{
		{"default width", "COM", 0, 42, "COM000042"},
		{"explicit width", "COM", 6, 1, "COM000001"},
		{"overflow keeps digits", "COM", 4, 123456, "COM123456"},
		{"other prefix", "INV", 6, 7, "INV000007"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDocumentNumber(tt.prefix, tt.padWidth, tt.value))
		})
	}
}

func TestMockAllocator_Sequential(t *testing.T) {
	m := NewMockAllocator()
	ctx := context.Background()

	v1, err := m.NextValue(ctx, CounterRecords)
	require.NoError(t, err)
	v2, err := m.NextValue(ctx, CounterRecords)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v1)
	assert.Equal(t, int64(2), v2)

	// Counters are independent per name.
	other, err := m.NextValue(ctx, "other")
	require.NoError(t, err)
	assert.Equal(t, int64(1), other)

	n, err := m.NextDocumentNumber(ctx, "PURCHASE")
	require.NoError(t, err)
	assert.Equal(t, "COM000001", n)
}

func TestMockAllocator_ConcurrentUnique(t *testing.T) {
	m := NewMockAllocator()
	ctx := context.Background()

	const goroutines = 10
	const perGoroutine = 50

	var wg sync.WaitGroup
	results := make(chan int64, goroutines*perGoroutine)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				v, err := m.NextValue(ctx, CounterRecords)
				if err != nil {
					t.Error(err)
					return
				}
				results <- v
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[int64]bool)
	for v := range results {
		assert.False(t, seen[v], "value %d issued twice", v)
		seen[v] = true
	}
	assert.Len(t, seen, goroutines*perGoroutine)
}

func TestMockAllocator_ErrInjection(t *testing.T) {
	m := NewMockAllocator()
	m.NextValueErr = errors.New("boom")

	_, err := m.NextValue(context.Background(), CounterRecords)
	assert.Error(t, err)
	_, err = m.NextDocumentNumber(context.Background(), "PURCHASE")
	assert.Error(t, err)
}
