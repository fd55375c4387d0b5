package cache

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeCacheFile(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("data\n"), 0644))
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestDataCtime_EmptyDirIsZeroTime(t *testing.T) {
	l := &Loader{Dir: t.TempDir(), Prefix: "sidc_ssn_daily", Ext: "csv"}

	ctime, err := l.DataCtime()
	require.NoError(t, err)
	require.True(t, ctime.IsZero())
}

func TestDataCtime_MissingDirIsZeroTime(t *testing.T) {
	l := &Loader{Dir: filepath.Join(t.TempDir(), "nope"), Prefix: "x", Ext: "csv"}

	ctime, err := l.DataCtime()
	require.NoError(t, err)
	require.True(t, ctime.IsZero())
}

func TestDataCtime_PicksNewestMatchingFile(t *testing.T) {
	dir := t.TempDir()
	writeCacheFile(t, dir, "sidc_ssn_daily_20260101.csv")
	writeCacheFile(t, dir, "sidc_ssn_daily_20260310.csv")
	writeCacheFile(t, dir, "sidc_ssn_daily_20260205.csv")
	// Non-matching names are ignored.
	writeCacheFile(t, dir, "noaa_flux_20269999.csv")
	writeCacheFile(t, dir, "sidc_ssn_daily_20260401.json")
	writeCacheFile(t, dir, "sidc_ssn_daily.csv")

	l := &Loader{Dir: dir, Prefix: "sidc_ssn_daily", Ext: "csv"}

	ctime, err := l.DataCtime()
	require.NoError(t, err)
	require.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), ctime)
}

func TestDataAge_WholeDays(t *testing.T) {
	dir := t.TempDir()
	writeCacheFile(t, dir, "noaa_flux_20260810.json")

	l := &Loader{
		Dir:    dir,
		Prefix: "noaa_flux",
		Ext:    "json",
		Now:    fixedClock(time.Date(2026, 8, 17, 15, 42, 0, 0, time.UTC)),
	}

	age, err := l.DataAge()
	require.NoError(t, err)
	require.Equal(t, 7*24*time.Hour, age, "time of day must not affect the age")
}

func TestMaybeUpdate_StalenessBoundary(t *testing.T) {
	freshness := 7 * 24 * time.Hour

	cases := []struct {
		name      string
		fileDate  string
		wantFetch bool
	}{
		{"age equal to threshold does not fetch", "20260810", false},
		{"age one day past threshold fetches", "20260809", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			writeCacheFile(t, dir, "gfz_kp_"+tc.fileDate+".txt")

			l := &Loader{
				Dir:       dir,
				Prefix:    "gfz_kp",
				Ext:       "txt",
				Freshness: freshness,
				Now:       fixedClock(time.Date(2026, 8, 17, 0, 0, 0, 0, time.UTC)),
			}

			fetched := false
			err := l.MaybeUpdate(func() error {
				fetched = true
				return nil
			})
			require.NoError(t, err)
			require.Equal(t, tc.wantFetch, fetched)
		})
	}
}

func TestMaybeUpdate_MissingCacheFetches(t *testing.T) {
	l := &Loader{
		Dir:       t.TempDir(),
		Prefix:    "sidc_ssn_daily",
		Ext:       "csv",
		Freshness: 365 * 24 * time.Hour,
	}

	fetched := false
	require.NoError(t, l.MaybeUpdate(func() error {
		fetched = true
		return nil
	}))
	require.True(t, fetched)
}

func TestMaybeUpdate_IdempotentRefresh(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 8, 17, 9, 0, 0, 0, time.UTC)

	l := &Loader{
		Dir:       dir,
		Prefix:    "sidc_ssn_daily",
		Ext:       "csv",
		Freshness: 7 * 24 * time.Hour,
		Now:       fixedClock(now),
	}

	fetches := 0
	fetch := func() error {
		fetches++
		writeCacheFile(t, dir, l.DatedFilename(now))
		return nil
	}

	require.NoError(t, l.MaybeUpdate(fetch))
	require.NoError(t, l.MaybeUpdate(fetch))
	require.Equal(t, 1, fetches, "second call with a fresh cache must not fetch")
}

func TestMaybeUpdate_FetchFailureIsHardError(t *testing.T) {
	cause := errors.New("connection refused")

	l := &Loader{Dir: t.TempDir(), Prefix: "noaa_flux", Ext: "json", Freshness: time.Hour}

	err := l.MaybeUpdate(func() error { return cause })
	require.Error(t, err)

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	require.Equal(t, "noaa_flux", fe.Key)
	require.ErrorIs(t, err, cause, "the original fetch error must stay reachable")
}

func TestWriteFile_AtomicNoTempLeftover(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sidc_ssn_daily_20260817.csv")

	n, err := WriteFile(path, strings.NewReader("a;b;c\n"))
	require.NoError(t, err)
	require.Equal(t, int64(6), n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "a;b;c\n", string(data))

	_, err = os.Stat(path + ".tmp")
	require.True(t, os.IsNotExist(err), "temp file must be renamed away")
}

func TestWriteFile_GzipRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sidc_ssn_daily_20260817.csv.gz")

	_, err := WriteFile(path, strings.NewReader("2026;08;17;2026.62;120.5;8.1;33;0\n"))
	require.NoError(t, err)

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, "2026;08;17;2026.62;120.5;8.1;33;0\n", string(data))
}

func TestOpen_PlainFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plain.csv")
	require.NoError(t, os.WriteFile(path, []byte("x\n"), 0644))

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	require.Equal(t, "x\n", string(data))
}

func TestCurrentPath(t *testing.T) {
	dir := t.TempDir()
	writeCacheFile(t, dir, "gfz_kp_20260101.txt")
	writeCacheFile(t, dir, "gfz_kp_20260301.txt")

	l := &Loader{Dir: dir, Prefix: "gfz_kp", Ext: "txt"}

	path, err := l.CurrentPath()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "gfz_kp_20260301.txt"), path)
}

func TestCurrentPath_EmptyCache(t *testing.T) {
	l := &Loader{Dir: t.TempDir(), Prefix: "gfz_kp", Ext: "txt"}

	path, err := l.CurrentPath()
	require.NoError(t, err)
	require.Empty(t, path)
}

func TestPrune_RemovesSupersededFiles(t *testing.T) {
	dir := t.TempDir()
	writeCacheFile(t, dir, "noaa_flux_20260101.json")
	writeCacheFile(t, dir, "noaa_flux_20260201.json")
	writeCacheFile(t, dir, "noaa_flux_20260301.json")
	writeCacheFile(t, dir, "sidc_ssn_daily_20250101.csv")

	l := &Loader{Dir: dir, Prefix: "noaa_flux", Ext: "json"}
	require.NoError(t, l.Prune())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	require.ElementsMatch(t, []string{
		"noaa_flux_20260301.json",
		"sidc_ssn_daily_20250101.csv",
	}, names)
}

func TestPrune_EmptyCache(t *testing.T) {
	l := &Loader{Dir: t.TempDir(), Prefix: "noaa_flux", Ext: "json"}
	require.NoError(t, l.Prune())
}
