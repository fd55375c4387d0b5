package indices

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const sidcDailySample = `# SILSO daily total sunspot number
1818;01;01;1818.001;  -1; -1.0;   0;1
1818;01;05;1818.012;  42;  4.1;   1;1
2024;03;15;2024.203; 120; 11.3;  35;0

9999;01;01;bad line that must be skipped
`

func TestParseSIDCDaily(t *testing.T) {
	s, err := ParseSIDCDaily(strings.NewReader(sidcDailySample))
	require.NoError(t, err)
	require.Equal(t, 3, s.Len())

	require.Equal(t, time.Date(1818, 1, 1, 0, 0, 0, 0, time.UTC), s.Time(0))
	require.Equal(t, -1.0, s.Value(0))
	require.Equal(t, 42.0, s.Value(1))
	require.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), s.Time(2))
	require.Equal(t, 120.0, s.Value(2))
}

const sidcMonthlySample = `1749;01;1749.042;  96.7; -1.0;  -1;1
1749;02;1749.123; 104.3; -1.0;  -1;1
# trailing comment
`

func TestParseSIDCMonthly(t *testing.T) {
	s, err := ParseSIDCMonthly(strings.NewReader(sidcMonthlySample))
	require.NoError(t, err)
	require.Equal(t, 2, s.Len())

	// Monthly values are stamped mid-month.
	require.Equal(t, time.Date(1749, 1, 15, 0, 0, 0, 0, time.UTC), s.Time(0))
	require.Equal(t, 96.7, s.Value(0))
	require.Equal(t, time.Date(1749, 2, 15, 0, 0, 0, 0, time.UTC), s.Time(1))
}

const noaaSample = `[
  {"time-tag": "2019-12", "ssn": 1.5, "smoothed_ssn": 1.8, "f10.7": 71.2, "smoothed_f10.7": 70.0},
  {"time-tag": "2020-01", "ssn": 6.2, "smoothed_ssn": 2.1, "f10.7": 72.9, "smoothed_f10.7": 70.3},
  {"time-tag": "garbage", "ssn": 99.0, "f10.7": 99.0}
]`

func TestParseNOAAIndices(t *testing.T) {
	ssn, err := ParseNOAAIndices(strings.NewReader(noaaSample), NOAAFieldSSN)
	require.NoError(t, err)
	require.Equal(t, 2, ssn.Len())
	require.Equal(t, time.Date(2019, 12, 15, 0, 0, 0, 0, time.UTC), ssn.Time(0))
	require.Equal(t, 1.5, ssn.Value(0))
	require.Equal(t, 6.2, ssn.Value(1))

	flux, err := ParseNOAAIndices(strings.NewReader(noaaSample), NOAAFieldF107)
	require.NoError(t, err)
	require.Equal(t, 2, flux.Len())
	require.Equal(t, 71.2, flux.Value(0))
	require.Equal(t, 72.9, flux.Value(1))
}

func TestParseNOAAIndices_UnknownField(t *testing.T) {
	_, err := ParseNOAAIndices(strings.NewReader(noaaSample), "kp")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown NOAA field")
}

func TestParseNOAAIndices_BadJSON(t *testing.T) {
	_, err := ParseNOAAIndices(strings.NewReader("{not json"), NOAAFieldSSN)
	require.Error(t, err)
}

// One GFZ row: date, decimal days, Bsr, dB, Kp1-8, ap1-8, Ap, SN,
// F10.7obs, F10.7adj, definitive flag.
const gfzSample = `# GFZ Kp, ap, Ap, SN, F10.7
2024 03 15 45365.5 20893.5 2590 21 1.667 2.000 1.333 1.000 0.667 1.000 1.333 1.667 6 7 5 4 3 4 5 6 5  87 142.1 140.8 1
2024 03 16 45366.5 20894.5 2590 22 1.000 0.667 0.667 1.000 1.333 1.667 2.000 2.333 4 3 3 4 5 6 7 9 5  -1 139.6 138.3 1
short line 1 2 3
`

func TestParseGFZSSN(t *testing.T) {
	s, err := ParseGFZSSN(strings.NewReader(gfzSample))
	require.NoError(t, err)
	require.Equal(t, 2, s.Len())

	require.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), s.Time(0))
	require.Equal(t, 87.0, s.Value(0))

	// Sentinel days stay as -1 until the indicator's missing-value
	// hook runs.
	require.Equal(t, -1.0, s.Value(1))
}
