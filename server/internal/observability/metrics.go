// Package observability collects in-process metrics for provider calls.
package observability

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics aggregates provider-call metrics. All methods are safe for
// concurrent use.
type Metrics struct {
	mu sync.Mutex

	requestTotal  atomic.Int64
	requestFailed atomic.Int64

	providerMetrics map[string]*ProviderMetrics

	// durations keeps a bounded window of recent call latencies for
	// percentile snapshots.
	durations    []time.Duration
	maxDurations int
}

// ProviderMetrics counts calls for a single provider.
type ProviderMetrics struct {
	callCount     atomic.Int64
	errorCount    atomic.Int64
	totalDuration atomic.Int64 // milliseconds
}

// NewMetrics creates a metrics collector keeping the last maxDurations call
// latencies.
func NewMetrics(maxDurations int) *Metrics {
	if maxDurations <= 0 {
		maxDurations = 1000
	}
	return &Metrics{
		providerMetrics: make(map[string]*ProviderMetrics),
		durations:       make([]time.Duration, 0, maxDurations),
		maxDurations:    maxDurations,
	}
}

// RecordCall records one provider call outcome.
func (m *Metrics) RecordCall(provider string, duration time.Duration, err error) {
	m.requestTotal.Add(1)
	if err != nil {
		m.requestFailed.Add(1)
	}

	m.mu.Lock()
	pm, ok := m.providerMetrics[provider]
	if !ok {
		pm = &ProviderMetrics{}
		m.providerMetrics[provider] = pm
	}
	if len(m.durations) >= m.maxDurations {
		copy(m.durations, m.durations[1:])
		m.durations = m.durations[:len(m.durations)-1]
	}
	m.durations = append(m.durations, duration)
	m.mu.Unlock()

	pm.callCount.Add(1)
	pm.totalDuration.Add(duration.Milliseconds())
	if err != nil {
		pm.errorCount.Add(1)
	}
}

// ProviderSnapshot is the aggregated view of one provider.
type ProviderSnapshot struct {
	CallCount    int64 `json:"callCount"`
	ErrorCount   int64 `json:"errorCount"`
	AvgLatencyMs int64 `json:"avgLatencyMs"`
}

// Snapshot is the aggregated view of all provider calls.
type Snapshot struct {
	TotalRequests int64                       `json:"totalRequests"`
	FailedCount   int64                       `json:"failedCount"`
	P50LatencyMs  int64                       `json:"p50LatencyMs"`
	P95LatencyMs  int64                       `json:"p95LatencyMs"`
	Providers     map[string]ProviderSnapshot `json:"providers"`
}

// Snapshot returns the current aggregated view.
func (m *Metrics) Snapshot() Snapshot {
	snapshot := Snapshot{
		TotalRequests: m.requestTotal.Load(),
		FailedCount:   m.requestFailed.Load(),
		Providers:     make(map[string]ProviderSnapshot),
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for name, pm := range m.providerMetrics {
		calls := pm.callCount.Load()
		ps := ProviderSnapshot{
			CallCount:  calls,
			ErrorCount: pm.errorCount.Load(),
		}
		if calls > 0 {
			ps.AvgLatencyMs = pm.totalDuration.Load() / calls
		}
		snapshot.Providers[name] = ps
	}

	if len(m.durations) > 0 {
		sorted := make([]time.Duration, len(m.durations))
		copy(sorted, m.durations)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
		snapshot.P50LatencyMs = sorted[len(sorted)*50/100].Milliseconds()
		p95 := len(sorted) * 95 / 100
		if p95 >= len(sorted) {
			p95 = len(sorted) - 1
		}
		snapshot.P95LatencyMs = sorted[p95].Milliseconds()
	}

	return snapshot
}
