// Package solar provides shared domain types for the solar activity
// index pipeline: raw index records and cycle extrema rows as they are
// stored in ClickHouse.
package solar

import "time"

// IndexRecord is one raw activity index sample in solar.indices_raw.
type IndexRecord struct {
	Date       time.Time `ch:"date"`
	Index      string    `ch:"index"`       // symbolic key, e.g. "sidc_ssn_daily"
	Value      float64   `ch:"value"`       // index value; missing samples are not stored
	SourceFile string    `ch:"source_file"` // cache file the sample came from
}

// CycleExtremum is one cycle row in solar.cycle_extrema.
type CycleExtremum struct {
	Index     string    `ch:"index"`
	Cycle     int32     `ch:"cycle"`
	RiseStart time.Time `ch:"rise_start"`
	MinTime   time.Time `ch:"min_time"`
	MinValue  float64   `ch:"min_value"`
	MaxTime   time.Time `ch:"max_time"`
	MaxValue  float64   `ch:"max_value"`
	FallEnd   time.Time `ch:"fall_end"`
}

// SchemaVersion is the current solar schema version.
const SchemaVersion = 2
