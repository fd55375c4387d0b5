package indices

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/KI7MT/solar-cycle-tools/internal/series"
)

func mkSeries(t *testing.T, values ...float64) series.Series {
	t.Helper()
	times := make([]time.Time, len(values))
	for i := range values {
		times[i] = time.Date(2024, 1, 1+i, 0, 0, 0, 0, time.UTC)
	}
	s, err := series.New(times, values)
	require.NoError(t, err)
	return s
}

func TestSentinelMissing(t *testing.T) {
	convert := SentinelMissing(-1)

	v, err := convert(42.5)
	require.NoError(t, err)
	require.Equal(t, 42.5, v)

	v, err = convert(-1)
	require.NoError(t, err)
	require.True(t, math.IsNaN(v))

	v, err = convert(math.NaN())
	require.NoError(t, err)
	require.True(t, math.IsNaN(v))

	_, err = convert(-999)
	require.ErrorIs(t, err, ErrUnsupportedMissingValue)
}

func TestIndicator_SetDataConvertsSentinels(t *testing.T) {
	ind := NewSIDCDaily()
	require.NoError(t, ind.SetData(mkSeries(t, 10, -1, 30)))

	data, err := ind.Data()
	require.NoError(t, err)
	require.Equal(t, 10.0, data.Value(0))
	require.True(t, math.IsNaN(data.Value(1)))
	require.Equal(t, 30.0, data.Value(2))
}

func TestIndicator_SetDataRejectsUnknownSentinel(t *testing.T) {
	ind := NewNOAAFlux()
	err := ind.SetData(mkSeries(t, 10, -99, 30))
	require.ErrorIs(t, err, ErrUnsupportedMissingValue)

	// The indicator stays unloaded after a failed load.
	_, err = ind.Data()
	require.ErrorIs(t, err, ErrNoData)
}

func TestIndicator_InterpolateBridgesSentinelGaps(t *testing.T) {
	ind := NewSIDCDaily()
	require.NoError(t, ind.SetData(mkSeries(t, 10, -1, 30)))

	// The sentinel day becomes a gap and interpolation bridges it
	// from the neighbors.
	got, err := ind.Interpolate([]time.Time{
		time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.InDelta(t, 20.0, got[0], 1e-9)
}

func TestIndicator_InterpolateNeverExtrapolates(t *testing.T) {
	ind := NewGFZSSN()
	require.NoError(t, ind.SetData(mkSeries(t, 10, 20, 30)))

	got, err := ind.Interpolate([]time.Time{
		time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.True(t, math.IsNaN(got[0]))
	require.True(t, math.IsNaN(got[1]))
}

func TestIndicator_NoData(t *testing.T) {
	ind := NewSIDCMonthly()

	_, err := ind.Data()
	require.ErrorIs(t, err, ErrNoData)

	_, err = ind.Interpolate([]time.Time{time.Now().UTC()})
	require.ErrorIs(t, err, ErrNoData)
}
