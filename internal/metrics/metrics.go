package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	EndpointsFetched    int64
	EndpointFailures    int64
	EntriesSkipped      int64
	ArticlesEnriched    int64
	EnrichmentsDegraded int64
	DuplicatesFiltered  int64
	FallbacksServed     int64
	AnalysesRun         int64
	AnalysesDegraded    int64
	SummariesGenerated  int64

	// Timings
	LastProcessingTime    time.Duration
	AverageProcessingTime time.Duration
	TotalProcessingTime   time.Duration
	ProcessingCount       int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = New()

func New() *Metrics {
	return &Metrics{IsHealthy: true}
}

func (m *Metrics) add(counter *int64, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	*counter += int64(n)
}

func (m *Metrics) AddEndpointsFetched(n int)    { m.add(&m.EndpointsFetched, n) }
func (m *Metrics) AddEndpointFailures(n int)    { m.add(&m.EndpointFailures, n) }
func (m *Metrics) AddEntriesSkipped(n int)      { m.add(&m.EntriesSkipped, n) }
func (m *Metrics) AddArticlesEnriched(n int)    { m.add(&m.ArticlesEnriched, n) }
func (m *Metrics) AddEnrichmentsDegraded(n int) { m.add(&m.EnrichmentsDegraded, n) }
func (m *Metrics) AddDuplicatesFiltered(n int)  { m.add(&m.DuplicatesFiltered, n) }
func (m *Metrics) IncrementFallbacksServed()    { m.add(&m.FallbacksServed, 1) }
func (m *Metrics) IncrementAnalysesRun()        { m.add(&m.AnalysesRun, 1) }
func (m *Metrics) IncrementAnalysesDegraded()   { m.add(&m.AnalysesDegraded, 1) }
func (m *Metrics) IncrementSummariesGenerated() { m.add(&m.SummariesGenerated, 1) }

func (m *Metrics) RecordProcessingTime(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastProcessingTime = duration
	m.TotalProcessingTime += duration
	m.ProcessingCount++

	if m.ProcessingCount > 0 {
		m.AverageProcessingTime = m.TotalProcessingTime / time.Duration(m.ProcessingCount)
	}
}

func (m *Metrics) SetLastRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

// SetError marks the process unhealthy until the next successful run.
func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"endpoints_fetched":          m.EndpointsFetched,
		"endpoint_failures":          m.EndpointFailures,
		"entries_skipped":            m.EntriesSkipped,
		"articles_enriched":          m.ArticlesEnriched,
		"enrichments_degraded":       m.EnrichmentsDegraded,
		"duplicates_filtered":        m.DuplicatesFiltered,
		"fallbacks_served":           m.FallbacksServed,
		"analyses_run":               m.AnalysesRun,
		"analyses_degraded":          m.AnalysesDegraded,
		"summaries_generated":        m.SummariesGenerated,
		"last_processing_time_ms":    m.LastProcessingTime.Milliseconds(),
		"average_processing_time_ms": m.AverageProcessingTime.Milliseconds(),
		"last_run_time":              m.LastRunTime.Format(time.RFC3339),
		"last_error_time":            m.LastErrorTime.Format(time.RFC3339),
		"last_error":                 m.LastError,
		"is_healthy":                 m.IsHealthy,
	}
}
