package common

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Stats holds atomic counters for ingest telemetry.
type Stats struct {
	Rows  atomic.Uint64
	Bytes atomic.Uint64
	Files atomic.Uint64

	start time.Time
}

// NewStats creates a new Stats instance with the clock started.
func NewStats() *Stats {
	return &Stats{start: time.Now()}
}

// AddRows increments the row counter.
func (s *Stats) AddRows(n uint64) { s.Rows.Add(n) }

// AddBytes increments the byte counter.
func (s *Stats) AddBytes(n uint64) { s.Bytes.Add(n) }

// AddFile increments the file counter.
func (s *Stats) AddFile() { s.Files.Add(1) }

// Elapsed returns time since the stats were created.
func (s *Stats) Elapsed() time.Duration { return time.Since(s.start) }

// Summary formats a one-line ingest summary.
func (s *Stats) Summary() string {
	elapsed := s.Elapsed()
	rows := s.Rows.Load()
	rate := 0.0
	if elapsed.Seconds() > 0 {
		rate = float64(rows) / elapsed.Seconds()
	}
	return fmt.Sprintf("%d rows from %d file(s) in %v (%.0f rows/sec)",
		rows, s.Files.Load(), elapsed.Round(time.Millisecond), rate)
}
