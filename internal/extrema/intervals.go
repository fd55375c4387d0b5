package extrema

import "time"

// IntervalKind labels a derived time range.
type IntervalKind string

const (
	Rise    IntervalKind = "rise"
	Fall    IntervalKind = "fall"
	Full    IntervalKind = "full"
	MinBand IntervalKind = "min_band"
	MaxBand IntervalKind = "max_band"
)

// Interval is a half-open [Start, End) time range tagged with a kind
// and the cycle it belongs to. Intervals are derived on demand and are
// not persisted.
type Interval struct {
	Kind  IntervalKind
	Cycle int
	Start time.Time
	End   time.Time
}

// IndicatorExtrema derives named intervals from a formatted extrema
// table, for selecting rising, falling, or near-extremum data windows.
type IndicatorExtrema struct {
	table Table
}

// NewIndicatorExtrema wraps a formatted table.
func NewIndicatorExtrema(t Table) *IndicatorExtrema {
	return &IndicatorExtrema{table: t}
}

// Table returns the underlying extrema table.
func (x *IndicatorExtrema) Table() Table { return x.table }

// Intervals emits rise and fall intervals between the extrema of each
// row and across adjacent rows, plus a full interval spanning one
// complete cycle. The last row only yields its within-row interval,
// since the following cycle's first extremum is unknown.
func (x *IndicatorExtrema) Intervals() []Interval {
	var out []Interval

	for i, row := range x.table.Rows {
		first, second := row.orderedExtrema()

		within := Fall
		if first.Equal(row.MinTime) {
			within = Rise
		}
		out = append(out, Interval{Kind: within, Cycle: row.Cycle, Start: first, End: second})

		if i+1 < len(x.table.Rows) {
			next, _ := x.table.Rows[i+1].orderedExtrema()

			across := Rise
			if within == Rise {
				across = Fall
			}
			out = append(out,
				Interval{Kind: across, Cycle: row.Cycle, Start: second, End: next},
				Interval{Kind: Full, Cycle: row.Cycle, Start: first, End: next},
			)
		}
	}

	return out
}

// Bands emits a [t-before, t+after) interval around every extremum
// timestamp. Pass the same duration twice for a symmetric band. Bands
// of adjacent cycles may overlap; overlap resolution is intentionally
// left to the caller, no clipping happens here.
func (x *IndicatorExtrema) Bands(before, after time.Duration) []Interval {
	out := make([]Interval, 0, 2*len(x.table.Rows))
	for _, row := range x.table.Rows {
		out = append(out,
			Interval{Kind: MinBand, Cycle: row.Cycle, Start: row.MinTime.Add(-before), End: row.MinTime.Add(after)},
			Interval{Kind: MaxBand, Cycle: row.Cycle, Start: row.MaxTime.Add(-before), End: row.MaxTime.Add(after)},
		)
	}
	return out
}

// orderedExtrema returns the row's two extremum timestamps in
// chronological order.
func (r Row) orderedExtrema() (time.Time, time.Time) {
	if r.MinTime.Before(r.MaxTime) {
		return r.MinTime, r.MaxTime
	}
	return r.MaxTime, r.MinTime
}
