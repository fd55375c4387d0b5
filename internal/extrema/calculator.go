// Package extrema segments a long activity index series into solar
// cycles and locates the alternating minima and maxima that bound them.
//
// Detection runs on a smoothed copy of the series so short-period noise
// does not generate spurious threshold crossings; extremum timing always
// comes from the original samples.
package extrema

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"time"

	"github.com/KI7MT/solar-cycle-tools/internal/series"
)

// ErrInvalidName is returned by SetName for empty, malformed, or
// reserved names.
var ErrInvalidName = errors.New("invalid extrema name")

var nameRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_.-]*$`)

// reservedNames are column labels of the extrema table; using one as a
// series name would make the persisted output ambiguous.
var reservedNames = map[string]bool{
	"cycle":      true,
	"rise_start": true,
	"fall_end":   true,
	"min_time":   true,
	"max_time":   true,
	"min_value":  true,
	"max_value":  true,
}

// Calculator finds cycle extrema of a single-column series via
// threshold-crossing segmentation. The zero value is not usable; build
// with NewCalculator and tune the exported fields before Compute.
type Calculator struct {
	// Threshold separates "high activity" from "low activity" samples.
	Threshold Threshold

	// SmoothWindow is the centered rolling-mean width applied before
	// crossing detection. Values <= 1 disable smoothing.
	SmoothWindow int

	// MinSeparation rejects a candidate extremum closer than this to the
	// previous accepted extremum of the same kind. Zero disables the check.
	MinSeparation time.Duration

	// MinSamples rejects windows with fewer samples. Zero disables the check.
	MinSamples int

	// CycleOrigin is the cycle number assigned to the first complete cycle.
	CycleOrigin int

	name string
}

// NewCalculator returns a Calculator with the given threshold and
// conventional defaults: no smoothing, no separation or sample minimum,
// cycles numbered from 1.
func NewCalculator(th Threshold) *Calculator {
	return &Calculator{
		Threshold:   th,
		CycleOrigin: 1,
	}
}

// SetName sets the label used in the formatted table. Names must be
// non-empty identifiers and must not collide with table column labels.
func (c *Calculator) SetName(name string) error {
	if !nameRe.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if reservedNames[name] {
		return fmt.Errorf("%w: %q is a reserved column label", ErrInvalidName, name)
	}
	c.name = name
	return nil
}

// Name returns the label set via SetName.
func (c *Calculator) Name() string { return c.name }

// ExtremumKind tags an extremum as a cycle minimum or maximum.
type ExtremumKind int

const (
	Minimum ExtremumKind = iota
	Maximum
)

func (k ExtremumKind) String() string {
	if k == Minimum {
		return "min"
	}
	return "max"
}

// crossing marks the first sample index on the new side of the threshold.
type crossing struct {
	idx    int
	rising bool
}

// window is one [start, end) segment between two adjacent crossings.
type window struct {
	start, end int // sample indices, end exclusive
	seek       ExtremumKind
}

// extremum is a candidate cycle turning point found inside one window.
type extremum struct {
	kind     ExtremumKind
	idx      int
	time     time.Time
	value    float64
	winStart int
	winEnd   int
}

// Compute runs the full detection pipeline and returns the formatted
// extrema table. A series with fewer than two crossings yields an empty
// table; an empty input series is a hard error.
func (c *Calculator) Compute(s series.Series) (Table, error) {
	if s.Len() == 0 {
		return Table{}, fmt.Errorf("%w: empty input", series.ErrInvalidSeries)
	}

	smooth := s.RollingMean(c.SmoothWindow)

	th, err := c.Threshold.Resolve(smooth)
	if err != nil {
		return Table{}, err
	}

	crossings := filterAlternating(findThresholdCrossings(smooth, th))
	windows := cutIntervals(crossings)
	candidates := findExtrema(s, windows)
	accepted := c.validateExtrema(candidates)

	return c.formatExtrema(s, accepted), nil
}

// findThresholdCrossings locates every sign change of smooth - th.
// Samples exactly on the threshold (or NaN) have sign zero; a change
// into or out of zero counts as a tentative crossing in the direction
// of the sign step, which is what makes the alternation filter necessary.
func findThresholdCrossings(smooth series.Series, th []float64) []crossing {
	var out []crossing
	prev := 0
	havePrev := false

	for i := 0; i < smooth.Len(); i++ {
		d := smooth.Value(i) - th[i]
		sign := 0
		switch {
		case math.IsNaN(d):
			continue
		case d > 0:
			sign = 1
		case d < 0:
			sign = -1
		}

		if havePrev && sign != prev {
			out = append(out, crossing{idx: i, rising: sign > prev})
		}
		prev = sign
		havePrev = true
	}

	return out
}

// filterAlternating reduces each run of same-direction crossings to its
// first occurrence, so the remaining crossings strictly alternate.
func filterAlternating(crossings []crossing) []crossing {
	var out []crossing
	for _, cr := range crossings {
		if len(out) > 0 && out[len(out)-1].rising == cr.rising {
			continue
		}
		out = append(out, cr)
	}
	return out
}

// cutIntervals partitions the series into [crossing_i, crossing_i+1)
// windows. A rising start means the window climbs toward a maximum.
// Samples before the first and after the last crossing belong to no
// complete window and are ignored.
func cutIntervals(crossings []crossing) []window {
	if len(crossings) < 2 {
		return nil
	}
	out := make([]window, 0, len(crossings)-1)
	for i := 0; i+1 < len(crossings); i++ {
		seek := Minimum
		if crossings[i].rising {
			seek = Maximum
		}
		out = append(out, window{
			start: crossings[i].idx,
			end:   crossings[i+1].idx,
			seek:  seek,
		})
	}
	return out
}

// findExtrema locates the extremum of each window on the original,
// unsmoothed series: detection may run on smoothed data, but extremum
// timing must reflect the real samples. Windows of only NaN samples
// yield no candidate.
func findExtrema(s series.Series, windows []window) []extremum {
	var out []extremum
	for _, w := range windows {
		best := -1
		for i := w.start; i < w.end; i++ {
			v := s.Value(i)
			if math.IsNaN(v) {
				continue
			}
			if best < 0 {
				best = i
				continue
			}
			if w.seek == Maximum && v > s.Value(best) {
				best = i
			}
			if w.seek == Minimum && v < s.Value(best) {
				best = i
			}
		}
		if best < 0 {
			continue
		}
		out = append(out, extremum{
			kind:     w.seek,
			idx:      best,
			time:     s.Time(best),
			value:    s.Value(best),
			winStart: w.start,
			winEnd:   w.end,
		})
	}
	return out
}

// validateExtrema drops candidates that fail the neighbor constraints:
// too close to the previous accepted extremum of the same kind, or from
// a window with too few samples. Rejected windows contribute nothing;
// no substitute extremum is invented.
func (c *Calculator) validateExtrema(candidates []extremum) []extremum {
	var out []extremum
	lastOfKind := map[ExtremumKind]time.Time{}

	for _, e := range candidates {
		if c.MinSamples > 0 && e.winEnd-e.winStart < c.MinSamples {
			continue
		}
		if c.MinSeparation > 0 {
			if prev, ok := lastOfKind[e.kind]; ok && e.time.Sub(prev) < c.MinSeparation {
				continue
			}
		}
		lastOfKind[e.kind] = e.time
		out = append(out, e)
	}
	return out
}

// formatExtrema pairs consecutive opposite-kind extrema into cycle rows.
// Validation can leave two same-kind extrema adjacent; the later one is
// dropped so the output always alternates. Pairs are non-overlapping
// ((e0,e1), (e2,e3), ...); a trailing unpaired extremum yields no row.
func (c *Calculator) formatExtrema(s series.Series, accepted []extremum) Table {
	var alternating []extremum
	for _, e := range accepted {
		if len(alternating) > 0 && alternating[len(alternating)-1].kind == e.kind {
			continue
		}
		alternating = append(alternating, e)
	}

	t := Table{Name: c.name}
	cycle := c.CycleOrigin
	for i := 0; i+1 < len(alternating); i += 2 {
		first, second := alternating[i], alternating[i+1]

		row := Row{
			Cycle:     cycle,
			RiseStart: s.Time(first.winStart),
			FallEnd:   s.Time(second.winEnd),
		}
		if first.kind == Minimum {
			row.MinTime, row.MinValue = first.time, first.value
			row.MaxTime, row.MaxValue = second.time, second.value
		} else {
			row.MaxTime, row.MaxValue = first.time, first.value
			row.MinTime, row.MinValue = second.time, second.value
		}

		t.Rows = append(t.Rows, row)
		cycle++
	}

	return t
}
