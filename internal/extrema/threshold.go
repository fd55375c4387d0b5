package extrema

import (
	"fmt"

	"github.com/KI7MT/solar-cycle-tools/internal/series"
)

// Threshold produces the reference level that crossing detection
// subtracts from the (smoothed) series. The two variants are a fixed
// scalar and a callable evaluated against the smoothed series.
type Threshold interface {
	// Resolve returns one threshold value per sample of s.
	Resolve(s series.Series) ([]float64, error)
}

// Fixed is a constant threshold broadcast over the whole series.
type Fixed float64

// Resolve implements Threshold.
func (f Fixed) Resolve(s series.Series) ([]float64, error) {
	out := make([]float64, s.Len())
	for i := range out {
		out[i] = float64(f)
	}
	return out, nil
}

// Func is a threshold computed from the smoothed series. It may return
// a single value (broadcast) or one value per sample. Errors propagate
// to the calculator unmodified.
type Func func(s series.Series) ([]float64, error)

// Resolve implements Threshold.
func (fn Func) Resolve(s series.Series) ([]float64, error) {
	vals, err := fn(s)
	if err != nil {
		return nil, err
	}
	switch len(vals) {
	case s.Len():
		return vals, nil
	case 1:
		out := make([]float64, s.Len())
		for i := range out {
			out[i] = vals[0]
		}
		return out, nil
	default:
		return nil, fmt.Errorf("threshold func returned %d values for %d samples", len(vals), s.Len())
	}
}
