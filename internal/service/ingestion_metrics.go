package service

import (
	"fmt"
	"sync"
	"time"
)

// IngestionStats tracks counts of one ingestion refresh
type IngestionStats struct {
	mu        sync.RWMutex
	StartTime time.Time
	Duration  time.Duration
	Fetched   int
	Stored    int64
	Rejected  int
	Failed    int
}

// NewIngestionStats creates a new stats tracker
func NewIngestionStats() *IngestionStats {
	return &IngestionStats{StartTime: time.Now()}
}

// RecordFetched adds fetched records
func (m *IngestionStats) RecordFetched(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Fetched += n
}

// RecordStored adds stored records
func (m *IngestionStats) RecordStored(n int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Stored += n
}

// RecordRejected adds records that failed validation
func (m *IngestionStats) RecordRejected(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Rejected += n
}

// RecordFailure increments the failed fetch count
func (m *IngestionStats) RecordFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Failed++
}

// Finish stamps the duration
func (m *IngestionStats) Finish() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Duration = time.Since(m.StartTime)
}

// String returns a formatted string representation of the stats
func (m *IngestionStats) String() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	acceptRate := float64(0)
	if m.Fetched > 0 {
		acceptRate = float64(m.Fetched-m.Rejected) / float64(m.Fetched) * 100
	}

	return fmt.Sprintf(
		"IngestionStats{Fetched=%d, Accepted=%.1f%%, Stored=%d, Rejected=%d, Failed=%d, Duration=%v}",
		m.Fetched,
		acceptRate,
		m.Stored,
		m.Rejected,
		m.Failed,
		m.Duration,
	)
}
