package extrema

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

// Row is one complete activity cycle. RiseStart and FallEnd are the
// window boundaries enclosing the cycle's two extrema; MinTime and
// MaxTime are the extremum timestamps themselves. Within a row the
// timestamps are ordered RiseStart <= first extremum <= second extremum
// <= FallEnd, with min/max order depending on which came first.
type Row struct {
	Cycle     int
	RiseStart time.Time
	MinTime   time.Time
	MinValue  float64
	MaxTime   time.Time
	MaxValue  float64
	FallEnd   time.Time
}

// Table is the cycle-indexed output of a Calculator run. It is
// immutable once formatted.
type Table struct {
	Name string // series label, set via Calculator.SetName
	Rows []Row
}

var csvHeader = []string{"cycle", "rise_start", "min_time", "min_value", "max_time", "max_value", "fall_end"}

// csvTimeLayout keeps whole-second UTC timestamps, which is all the
// daily and monthly index data carries.
const csvTimeLayout = time.RFC3339

// WriteCSV writes the table in the persisted delimited format.
// A table written and re-read through ReadCSV reproduces itself.
func (t Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, r := range t.Rows {
		rec := []string{
			strconv.Itoa(r.Cycle),
			r.RiseStart.UTC().Format(csvTimeLayout),
			r.MinTime.UTC().Format(csvTimeLayout),
			strconv.FormatFloat(r.MinValue, 'g', -1, 64),
			r.MaxTime.UTC().Format(csvTimeLayout),
			strconv.FormatFloat(r.MaxValue, 'g', -1, 64),
			r.FallEnd.UTC().Format(csvTimeLayout),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a table previously written by WriteCSV.
func ReadCSV(r io.Reader) (Table, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		return Table{}, fmt.Errorf("read header: %w", err)
	}
	if len(header) != len(csvHeader) {
		return Table{}, fmt.Errorf("unexpected header %v", header)
	}

	var t Table
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Table{}, err
		}

		row, err := parseCSVRow(rec)
		if err != nil {
			return Table{}, err
		}
		t.Rows = append(t.Rows, row)
	}

	return t, nil
}

func parseCSVRow(rec []string) (Row, error) {
	if len(rec) != len(csvHeader) {
		return Row{}, fmt.Errorf("expected %d columns, got %d", len(csvHeader), len(rec))
	}

	var (
		row Row
		err error
	)
	if row.Cycle, err = strconv.Atoi(rec[0]); err != nil {
		return Row{}, fmt.Errorf("invalid cycle %q: %w", rec[0], err)
	}
	if row.RiseStart, err = time.Parse(csvTimeLayout, rec[1]); err != nil {
		return Row{}, fmt.Errorf("invalid rise_start %q: %w", rec[1], err)
	}
	if row.MinTime, err = time.Parse(csvTimeLayout, rec[2]); err != nil {
		return Row{}, fmt.Errorf("invalid min_time %q: %w", rec[2], err)
	}
	if row.MinValue, err = strconv.ParseFloat(rec[3], 64); err != nil {
		return Row{}, fmt.Errorf("invalid min_value %q: %w", rec[3], err)
	}
	if row.MaxTime, err = time.Parse(csvTimeLayout, rec[4]); err != nil {
		return Row{}, fmt.Errorf("invalid max_time %q: %w", rec[4], err)
	}
	if row.MaxValue, err = strconv.ParseFloat(rec[5], 64); err != nil {
		return Row{}, fmt.Errorf("invalid max_value %q: %w", rec[5], err)
	}
	if row.FallEnd, err = time.Parse(csvTimeLayout, rec[6]); err != nil {
		return Row{}, fmt.Errorf("invalid fall_end %q: %w", rec[6], err)
	}

	return row, nil
}
