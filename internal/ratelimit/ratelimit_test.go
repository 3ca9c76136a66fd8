package ratelimit

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestBudget_Limit(t *testing.T) {
	b := NewRequestBudget("gemini", 2)

	require.NoError(t, b.Use())
	require.NoError(t, b.Use())
	assert.False(t, b.CanUse())

	err := b.Use()
	assert.True(t, errors.Is(err, ErrBudgetExhausted))

	stats := b.GetStats()
	assert.Equal(t, 2, stats["used"])
	assert.Equal(t, 1, stats["denied"])
}

func TestRequestBudget_Unlimited(t *testing.T) {
	b := NewRequestBudget("gemini", 0)
	for i := 0; i < 100; i++ {
		require.NoError(t, b.Use())
	}
	assert.True(t, b.CanUse())
}

func TestRequestBudget_ResetsDaily(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	b := newRequestBudget("gemini", 1, func() time.Time { return now })

	require.NoError(t, b.Use())
	assert.False(t, b.CanUse())

	now = now.Add(25 * time.Hour)
	assert.True(t, b.CanUse())
	require.NoError(t, b.Use())
}

func TestRequestBudget_Concurrent(t *testing.T) {
	b := NewRequestBudget("gemini", 10)
	var wg sync.WaitGroup
	var mu sync.Mutex
	ok := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if b.Use() == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 10, ok)
}
