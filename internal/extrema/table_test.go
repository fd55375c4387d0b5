package extrema

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func sampleTable() Table {
	return Table{
		Name: "sidc_ssn_monthly",
		Rows: []Row{
			{
				Cycle:     24,
				RiseStart: time.Date(2008, 1, 15, 0, 0, 0, 0, time.UTC),
				MinTime:   time.Date(2008, 12, 15, 0, 0, 0, 0, time.UTC),
				MinValue:  2.2,
				MaxTime:   time.Date(2014, 4, 15, 0, 0, 0, 0, time.UTC),
				MaxValue:  116.4,
				FallEnd:   time.Date(2019, 11, 15, 0, 0, 0, 0, time.UTC),
			},
			{
				Cycle:     25,
				RiseStart: time.Date(2019, 11, 15, 0, 0, 0, 0, time.UTC),
				MinTime:   time.Date(2019, 12, 15, 0, 0, 0, 0, time.UTC),
				MinValue:  1.8,
				MaxTime:   time.Date(2024, 8, 15, 0, 0, 0, 0, time.UTC),
				MaxValue:  215.5,
				FallEnd:   time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
			},
		},
	}
}

func TestCSVRoundTrip(t *testing.T) {
	orig := sampleTable()

	var buf bytes.Buffer
	require.NoError(t, orig.WriteCSV(&buf))

	got, err := ReadCSV(&buf)
	require.NoError(t, err)
	require.Equal(t, orig.Rows, got.Rows)
}

func TestCSVRoundTrip_EmptyTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Table{}.WriteCSV(&buf))

	got, err := ReadCSV(&buf)
	require.NoError(t, err)
	require.Empty(t, got.Rows)
}

func TestReadCSV_RejectsMalformedHeader(t *testing.T) {
	_, err := ReadCSV(bytes.NewReader([]byte("a,b,c\n")))
	require.Error(t, err)
}

func TestReadCSV_RejectsBadTimestamp(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Table{}.WriteCSV(&buf))
	buf.WriteString("1,not-a-time,2020-01-01T00:00:00Z,1,2020-06-01T00:00:00Z,2,2021-01-01T00:00:00Z\n")

	_, err := ReadCSV(&buf)
	require.Error(t, err)
}

func TestParquetRoundTrip(t *testing.T) {
	orig := sampleTable()
	path := filepath.Join(t.TempDir(), "extrema.parquet")

	require.NoError(t, orig.WriteParquet(path))

	got, err := ReadParquet(path)
	require.NoError(t, err)
	require.Equal(t, orig.Rows, got.Rows)
}
