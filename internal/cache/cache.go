// Package cache manages the local date-stamped cache of raw activity
// index files. Files are named {prefix}_{YYYYMMDD}.{ext}; the embedded
// date is the record's creation date and drives staleness decisions.
//
// The cache directory is not lock-protected: concurrent refreshes from
// multiple processes against the same directory are unsupported.
package cache

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/pgzip"
)

// DateLayout is the date encoding used in cache file names.
const DateLayout = "20060102"

// FetchError wraps a failed refresh download. The underlying error is
// preserved for the caller; no retry is attempted here.
type FetchError struct {
	Key string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s failed: %v", e.Key, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// FetchFunc downloads fresh raw data and writes new cache files
// following the date-stamped naming convention. On failure it returns
// an error and leaves any existing cache files untouched.
type FetchFunc func() error

// Loader tracks freshness of one index's cache files and triggers a
// caller-supplied fetch when they are missing or stale.
type Loader struct {
	Dir       string        // cache directory
	Prefix    string        // file name prefix, e.g. "sidc_ssn_daily"
	Ext       string        // file extension without the dot, e.g. "csv" or "csv.gz"
	Freshness time.Duration // maximum acceptable age before refresh

	// Now is the clock used for age calculations. Defaults to time.Now;
	// overridable for tests.
	Now func() time.Time

	ctime    time.Time
	resolved bool
}

// DatedFilename returns the cache file name for the given creation date.
func (l *Loader) DatedFilename(date time.Time) string {
	return fmt.Sprintf("%s_%s.%s", l.Prefix, date.Format(DateLayout), l.Ext)
}

// CurrentPath returns the path of the newest cache file, or "" when the
// cache is empty.
func (l *Loader) CurrentPath() (string, error) {
	ctime, err := l.DataCtime()
	if err != nil {
		return "", err
	}
	if ctime.IsZero() {
		return "", nil
	}
	return filepath.Join(l.Dir, l.DatedFilename(ctime)), nil
}

// DataCtime scans the cache directory for files matching the naming
// convention and returns the most recent embedded date. An empty or
// missing directory yields the zero time, not an error.
func (l *Loader) DataCtime() (time.Time, error) {
	if l.resolved {
		return l.ctime, nil
	}

	entries, err := os.ReadDir(l.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			l.ctime = time.Time{}
			l.resolved = true
			return l.ctime, nil
		}
		return time.Time{}, fmt.Errorf("read cache dir: %w", err)
	}

	var newest time.Time
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		date, ok := l.parseFilename(e.Name())
		if !ok {
			continue
		}
		if date.After(newest) {
			newest = date
		}
	}

	l.ctime = newest
	l.resolved = true
	return newest, nil
}

// parseFilename extracts the creation date from {prefix}_{YYYYMMDD}.{ext}.
func (l *Loader) parseFilename(name string) (time.Time, bool) {
	rest, ok := strings.CutPrefix(name, l.Prefix+"_")
	if !ok {
		return time.Time{}, false
	}
	stamp, ok := strings.CutSuffix(rest, "."+l.Ext)
	if !ok || len(stamp) != len(DateLayout) {
		return time.Time{}, false
	}
	date, err := time.Parse(DateLayout, stamp)
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}

// DataAge returns today minus the cache creation date, resolving the
// creation date first if needed. An empty cache reports an age of one
// day beyond any representable freshness window.
func (l *Loader) DataAge() (time.Duration, error) {
	ctime, err := l.DataCtime()
	if err != nil {
		return 0, err
	}
	if ctime.IsZero() {
		return 1<<62 - 1, nil
	}
	now := time.Now
	if l.Now != nil {
		now = l.Now
	}
	// Age is measured in whole days: today's date minus the embedded
	// creation date, ignoring the time of day.
	t := now().UTC()
	today := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return today.Sub(ctime), nil
}

// MaybeUpdate invokes fetch iff the cache is missing or its age exceeds
// the freshness window; otherwise it is a no-op. This is the only
// side-effecting entry point: calling it twice in immediate succession
// performs at most one fetch. A fetch failure is returned as a
// *FetchError wrapping the original error; stale files on disk are left
// as they were.
func (l *Loader) MaybeUpdate(fetch FetchFunc) error {
	age, err := l.DataAge()
	if err != nil {
		return err
	}
	if age <= l.Freshness {
		return nil
	}

	if err := fetch(); err != nil {
		return &FetchError{Key: l.Prefix, Err: err}
	}

	// Force a rescan so the freshly written files are picked up.
	l.resolved = false
	return nil
}

// Prune removes cache files superseded by the newest one. A refresh
// writes a new file rather than mutating in place, so old dates pile
// up until pruned.
func (l *Loader) Prune() error {
	newest, err := l.DataCtime()
	if err != nil {
		return err
	}
	if newest.IsZero() {
		return nil
	}

	entries, err := os.ReadDir(l.Dir)
	if err != nil {
		return fmt.Errorf("read cache dir: %w", err)
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		date, ok := l.parseFilename(e.Name())
		if !ok || !date.Before(newest) {
			continue
		}
		if err := os.Remove(filepath.Join(l.Dir, e.Name())); err != nil {
			return fmt.Errorf("prune %s: %w", e.Name(), err)
		}
	}
	return nil
}

// WriteFile writes r to path via a temp file and atomic rename, so an
// interrupted process never leaves a half-written file looking fresh.
// Paths ending in .gz are gzip-compressed on the way down.
func WriteFile(path string, r io.Reader) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return 0, fmt.Errorf("create cache dir: %w", err)
	}

	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return 0, fmt.Errorf("create file failed: %w", err)
	}

	var (
		n  int64
		gz *gzip.Writer
	)
	w := io.Writer(f)
	if strings.HasSuffix(path, ".gz") {
		gz = gzip.NewWriter(f)
		w = gz
	}

	n, err = io.Copy(w, r)
	if err == nil && gz != nil {
		err = gz.Close()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}

	if err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("write failed: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("rename failed: %w", err)
	}

	return n, nil
}

// Open opens a cache file for reading, transparently decompressing
// .gz files using parallel gzip.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}

	gz, err := pgzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("gzip open failed: %w", err)
	}
	return &gzipReadCloser{gz: gz, f: f}, nil
}

type gzipReadCloser struct {
	gz *pgzip.Reader
	f  *os.File
}

func (r *gzipReadCloser) Read(p []byte) (int, error) { return r.gz.Read(p) }

func (r *gzipReadCloser) Close() error {
	gerr := r.gz.Close()
	ferr := r.f.Close()
	if gerr != nil {
		return gerr
	}
	return ferr
}
