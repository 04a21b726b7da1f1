package pipeline

import (
	"slices"
	"sync"
	"time"
)

// StatsSnapshot aggregates recent per-document check latencies.
type StatsSnapshot struct {
	Count int     `json:"count"`
	MinMs int64   `json:"min_ms"`
	MaxMs int64   `json:"max_ms"`
	AvgMs float64 `json:"avg_ms"`
	P50Ms float64 `json:"p50_ms"`
	P95Ms float64 `json:"p95_ms"`
	P99Ms float64 `json:"p99_ms"`
}

type timing struct {
	at time.Time
	ms int64
}

// DurationStats keeps per-document durations inside a rolling window.
type DurationStats struct {
	mu     sync.Mutex
	window time.Duration
	data   []timing
	now    func() time.Time
}

func NewDurationStats(window time.Duration) *DurationStats {
	if window <= 0 {
		window = time.Hour
	}
	return &DurationStats{window: window, now: time.Now}
}

// Record adds one sample; negative durations count as zero.
func (s *DurationStats) Record(ms int64) {
	ms = max(ms, 0)
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.expireLocked(now)
	s.data = append(s.data, timing{at: now, ms: ms})
}

func (s *DurationStats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	s.expireLocked(s.now())
	values := make([]int64, len(s.data))
	for i, d := range s.data {
		values[i] = d.ms
	}
	s.mu.Unlock()

	if len(values) == 0 {
		return StatsSnapshot{}
	}
	slices.Sort(values)
	var sum int64
	for _, v := range values {
		sum += v
	}
	return StatsSnapshot{
		Count: len(values),
		MinMs: values[0],
		MaxMs: values[len(values)-1],
		AvgMs: float64(sum) / float64(len(values)),
		P50Ms: percentile(values, 50),
		P95Ms: percentile(values, 95),
		P99Ms: percentile(values, 99),
	}
}

func (s *DurationStats) expireLocked(now time.Time) {
	cutoff := now.Add(-s.window)
	i := 0
	for i < len(s.data) && s.data[i].at.Before(cutoff) {
		i++
	}
	s.data = s.data[i:]
}

// percentile interpolates linearly between the closest ranks of sorted.
func percentile(sorted []int64, pct float64) float64 {
	n := len(sorted)
	switch {
	case n == 0:
		return 0
	case pct <= 0:
		return float64(sorted[0])
	case pct >= 100:
		return float64(sorted[n-1])
	}
	idx := float64(n-1) * pct / 100
	lo := int(idx)
	if lo+1 >= n {
		return float64(sorted[lo])
	}
	frac := idx - float64(lo)
	return float64(sorted[lo]) + float64(sorted[lo+1]-sorted[lo])*frac
}
