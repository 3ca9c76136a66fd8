package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetrics_CountersConcurrent(t *testing.T) {
	m := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.AddEndpointsFetched(1)
			m.AddDuplicatesFiltered(2)
			m.IncrementAnalysesRun()
		}()
	}
	wg.Wait()

	stats := m.GetStats()
	assert.Equal(t, int64(50), stats["endpoints_fetched"])
	assert.Equal(t, int64(100), stats["duplicates_filtered"])
	assert.Equal(t, int64(50), stats["analyses_run"])
}

func TestMetrics_HealthTransitions(t *testing.T) {
	m := New()
	assert.True(t, m.GetStats()["is_healthy"].(bool))

	m.SetError("all feeds down")
	stats := m.GetStats()
	assert.False(t, stats["is_healthy"].(bool))
	assert.Equal(t, "all feeds down", stats["last_error"])

	m.SetLastRun()
	assert.True(t, m.GetStats()["is_healthy"].(bool))
}

func TestMetrics_ProcessingAverage(t *testing.T) {
	m := New()
	m.RecordProcessingTime(100 * time.Millisecond)
	m.RecordProcessingTime(300 * time.Millisecond)
	assert.Equal(t, int64(200), m.GetStats()["average_processing_time_ms"])
}
