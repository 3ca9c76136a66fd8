package ratelimit

import (
	"sync"
	"time"

	"github.com/rotisserie/eris"

	"github.com/deusflow/contentcore/internal/logger"
)

// ErrBudgetExhausted is returned by Use once the period's budget is spent.
var ErrBudgetExhausted = eris.New("request budget exhausted")

// RequestBudget caps how many paid API requests run per day.
type RequestBudget struct {
	mu        sync.Mutex
	name      string
	used      int
	max       int // 0 = unlimited
	denied    int
	period    time.Duration
	resetTime time.Time
	now       func() time.Time
}

// NewRequestBudget allows max requests per 24h; max <= 0 means unlimited.
func NewRequestBudget(name string, max int) *RequestBudget {
	return newRequestBudget(name, max, time.Now)
}

func newRequestBudget(name string, max int, now func() time.Time) *RequestBudget {
	if max < 0 {
		max = 0
	}
	return &RequestBudget{
		name:      name,
		max:       max,
		period:    24 * time.Hour,
		resetTime: now().Add(24 * time.Hour),
		now:       now,
	}
}

// CanUse reports whether a request would fit in the budget.
func (b *RequestBudget) CanUse() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.checkReset()
	return b.max == 0 || b.used < b.max
}

// Use consumes one request.
func (b *RequestBudget) Use() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.checkReset()
	if b.max > 0 && b.used >= b.max {
		b.denied++
		logger.Warn("request budget reached", "budget", b.name, "used", b.used, "limit", b.max)
		return ErrBudgetExhausted
	}
	b.used++
	logger.Debug("request budget used", "budget", b.name, "used", b.used, "limit", b.max)
	return nil
}

// GetStats returns current usage.
func (b *RequestBudget) GetStats() map[string]interface{} {
	b.mu.Lock()
	defer b.mu.Unlock()

	return map[string]interface{}{
		"name":       b.name,
		"used":       b.used,
		"limit":      b.max,
		"denied":     b.denied,
		"reset_time": b.resetTime,
	}
}

// checkReset resets counters once the period is over. Callers hold mu.
func (b *RequestBudget) checkReset() {
	now := b.now()
	if now.After(b.resetTime) {
		logger.Info("resetting request budget", "budget", b.name, "used", b.used, "denied", b.denied)
		b.used = 0
		b.denied = 0
		b.resetTime = now.Add(b.period)
	}
}
