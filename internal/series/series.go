// Package series provides time-indexed float series utilities for the
// solar activity pipeline: construction with duplicate-timestamp cleanup,
// gap-tolerant linear interpolation, and centered rolling smoothing.
package series

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"
)

// ErrInvalidSeries is returned for empty, non-monotonic, or otherwise
// malformed input where a valid time-indexed series is required.
var ErrInvalidSeries = errors.New("invalid series")

// Series is an immutable time-indexed sequence of float64 samples.
// Timestamps are strictly increasing; duplicate timestamps are dropped
// at construction, keeping the first occurrence.
type Series struct {
	times  []time.Time
	values []float64
}

// New builds a Series from parallel time and value slices.
// Duplicate timestamps are reduced to their first occurrence.
// Timestamps must otherwise be in increasing order; out-of-order input
// returns ErrInvalidSeries rather than being silently sorted.
func New(times []time.Time, values []float64) (Series, error) {
	if len(times) != len(values) {
		return Series{}, fmt.Errorf("%w: %d timestamps vs %d values", ErrInvalidSeries, len(times), len(values))
	}

	ts := make([]time.Time, 0, len(times))
	vs := make([]float64, 0, len(values))

	for i := range times {
		if len(ts) > 0 {
			prev := ts[len(ts)-1]
			if times[i].Equal(prev) {
				// Duplicate timestamp: first occurrence wins.
				continue
			}
			if times[i].Before(prev) {
				return Series{}, fmt.Errorf("%w: timestamp %s after %s is out of order",
					ErrInvalidSeries, times[i].Format(time.RFC3339), prev.Format(time.RFC3339))
			}
		}
		ts = append(ts, times[i])
		vs = append(vs, values[i])
	}

	return Series{times: ts, values: vs}, nil
}

// Len returns the number of samples.
func (s Series) Len() int { return len(s.times) }

// Time returns the timestamp of sample i.
func (s Series) Time(i int) time.Time { return s.times[i] }

// Value returns the value of sample i.
func (s Series) Value(i int) float64 { return s.values[i] }

// Start returns the first timestamp. Zero time for an empty series.
func (s Series) Start() time.Time {
	if len(s.times) == 0 {
		return time.Time{}
	}
	return s.times[0]
}

// End returns the last timestamp. Zero time for an empty series.
func (s Series) End() time.Time {
	if len(s.times) == 0 {
		return time.Time{}
	}
	return s.times[len(s.times)-1]
}

// Times returns a copy of the timestamp index.
func (s Series) Times() []time.Time {
	out := make([]time.Time, len(s.times))
	copy(out, s.times)
	return out
}

// Values returns a copy of the sample values.
func (s Series) Values() []float64 {
	out := make([]float64, len(s.values))
	copy(out, s.values)
	return out
}

// Slice returns the sub-series covering samples [i, j).
func (s Series) Slice(i, j int) Series {
	return Series{times: s.times[i:j], values: s.values[i:j]}
}

// Map returns a new Series with fn applied to every value.
// The first error from fn aborts the whole conversion.
func (s Series) Map(fn func(float64) (float64, error)) (Series, error) {
	vs := make([]float64, len(s.values))
	for i, v := range s.values {
		nv, err := fn(v)
		if err != nil {
			return Series{}, fmt.Errorf("value at %s: %w", s.times[i].Format(time.RFC3339), err)
		}
		vs[i] = nv
	}
	return Series{times: s.times, values: vs}, nil
}

// Interpolate returns values aligned to target via linear interpolation
// over the known samples. NaN samples are treated as gaps and bridged.
// Target timestamps strictly before the first or after the last known
// (non-NaN) sample yield NaN; the series is never extrapolated.
func (s Series) Interpolate(target []time.Time) []float64 {
	// Index of non-NaN samples only; NaN samples never anchor a segment.
	known := make([]int, 0, len(s.values))
	for i, v := range s.values {
		if !math.IsNaN(v) {
			known = append(known, i)
		}
	}

	out := make([]float64, len(target))
	if len(known) == 0 {
		for i := range out {
			out[i] = math.NaN()
		}
		return out
	}

	first := s.times[known[0]]
	last := s.times[known[len(known)-1]]

	for i, t := range target {
		if t.Before(first) || t.After(last) {
			out[i] = math.NaN()
			continue
		}

		// First known sample at or after t.
		j := sort.Search(len(known), func(k int) bool {
			return !s.times[known[k]].Before(t)
		})
		hi := known[j]
		if s.times[hi].Equal(t) {
			out[i] = s.values[hi]
			continue
		}
		lo := known[j-1]

		span := s.times[hi].Sub(s.times[lo]).Seconds()
		frac := t.Sub(s.times[lo]).Seconds() / span
		out[i] = s.values[lo] + frac*(s.values[hi]-s.values[lo])
	}

	return out
}

// RollingMean returns a centered rolling mean of the given window size.
// Edge samples use the partial window that fits; NaN samples are excluded
// from the mean, and a window with no valid samples yields NaN.
// A window of 1 or less returns the series unchanged.
func (s Series) RollingMean(window int) Series {
	if window <= 1 || len(s.values) == 0 {
		return s
	}

	half := window / 2
	vs := make([]float64, len(s.values))

	for i := range s.values {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		hi := i + (window-1)/2
		if hi > len(s.values)-1 {
			hi = len(s.values) - 1
		}

		sum := 0.0
		n := 0
		for k := lo; k <= hi; k++ {
			if math.IsNaN(s.values[k]) {
				continue
			}
			sum += s.values[k]
			n++
		}
		if n == 0 {
			vs[i] = math.NaN()
		} else {
			vs[i] = sum / float64(n)
		}
	}

	return Series{times: s.times, values: vs}
}
