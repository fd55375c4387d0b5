// Package indices exposes long-running solar activity indices (sunspot
// number, F10.7 flux) as time-indexed series: provider-specific raw
// file parsers plus a shared indicator surface with missing-value
// normalization and no-extrapolation interpolation.
package indices

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/KI7MT/solar-cycle-tools/internal/series"
)

// ErrUnsupportedMissingValue is returned when a raw value looks like a
// missing-data sentinel but no conversion rule covers it. Letting an
// unrecognized sentinel pass into interpolation would corrupt
// everything downstream, so this fails loudly instead of guessing.
var ErrUnsupportedMissingValue = errors.New("unsupported missing value convention")

// ErrNoData is returned by operations that need loaded data.
var ErrNoData = errors.New("no data loaded")

// ConvertFunc normalizes one raw value, mapping provider missing-value
// sentinels to NaN.
type ConvertFunc func(v float64) (float64, error)

// SentinelMissing builds a ConvertFunc that maps the listed sentinel
// values to NaN. Activity indices are non-negative by definition, so
// any other negative value is an unrecognized missing-value convention
// and is rejected.
func SentinelMissing(sentinels ...float64) ConvertFunc {
	return func(v float64) (float64, error) {
		if math.IsNaN(v) {
			return v, nil
		}
		for _, s := range sentinels {
			if v == s {
				return math.NaN(), nil
			}
		}
		if v < 0 {
			return 0, fmt.Errorf("%w: %g", ErrUnsupportedMissingValue, v)
		}
		return v, nil
	}
}

// Indicator owns one loaded activity index series and answers
// interpolation queries against it.
type Indicator struct {
	// Name is the symbolic index key, e.g. "sidc_ssn_daily".
	Name string

	// ConvertMissing normalizes raw sentinel values at load time.
	// Nil leaves values untouched.
	ConvertMissing ConvertFunc

	data   series.Series
	loaded bool
}

// NewSIDCDaily returns an indicator for SILSO daily sunspot numbers.
// SIDC encodes missing days as -1.
func NewSIDCDaily() *Indicator {
	return &Indicator{Name: "sidc_ssn_daily", ConvertMissing: SentinelMissing(-1)}
}

// NewSIDCMonthly returns an indicator for SILSO monthly mean sunspot
// numbers. Missing months are encoded as -1.
func NewSIDCMonthly() *Indicator {
	return &Indicator{Name: "sidc_ssn_monthly", ConvertMissing: SentinelMissing(-1)}
}

// NewNOAAFlux returns an indicator for NOAA SWPC observed F10.7 flux.
// NOAA encodes missing samples as -1.
func NewNOAAFlux() *Indicator {
	return &Indicator{Name: "noaa_flux", ConvertMissing: SentinelMissing(-1)}
}

// NewGFZSSN returns an indicator for the GFZ Potsdam daily sunspot
// number column. GFZ encodes missing values as -1.
func NewGFZSSN() *Indicator {
	return &Indicator{Name: "gfz_ssn", ConvertMissing: SentinelMissing(-1)}
}

// SetData stores s after normalizing missing-value sentinels through
// the ConvertMissing hook.
func (ind *Indicator) SetData(s series.Series) error {
	if ind.ConvertMissing != nil {
		var err error
		s, err = s.Map(ind.ConvertMissing)
		if err != nil {
			return fmt.Errorf("%s: %w", ind.Name, err)
		}
	}
	ind.data = s
	ind.loaded = true
	return nil
}

// Data returns the loaded series.
func (ind *Indicator) Data() (series.Series, error) {
	if !ind.loaded {
		return series.Series{}, fmt.Errorf("%s: %w", ind.Name, ErrNoData)
	}
	return ind.data, nil
}

// Interpolate aligns the loaded series to target via linear
// interpolation. Target timestamps outside the known range yield NaN;
// the indicator never extrapolates.
func (ind *Indicator) Interpolate(target []time.Time) ([]float64, error) {
	if !ind.loaded {
		return nil, fmt.Errorf("%s: %w", ind.Name, ErrNoData)
	}
	return ind.data.Interpolate(target), nil
}
