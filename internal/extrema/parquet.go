package extrema

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"
)

// parquetRow mirrors Row with Unix-second timestamps for the Parquet schema.
type parquetRow struct {
	Cycle     int32   `parquet:"cycle"`
	RiseStart int64   `parquet:"rise_start"`
	MinTime   int64   `parquet:"min_time"`
	MinValue  float64 `parquet:"min_value"`
	MaxTime   int64   `parquet:"max_time"`
	MaxValue  float64 `parquet:"max_value"`
	FallEnd   int64   `parquet:"fall_end"`
}

// WriteParquet writes the table to path as a Parquet file.
func (t Table) WriteParquet(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create parquet file: %w", err)
	}

	w := parquet.NewGenericWriter[parquetRow](f)

	rows := make([]parquetRow, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = parquetRow{
			Cycle:     int32(r.Cycle),
			RiseStart: r.RiseStart.Unix(),
			MinTime:   r.MinTime.Unix(),
			MinValue:  r.MinValue,
			MaxTime:   r.MaxTime.Unix(),
			MaxValue:  r.MaxValue,
			FallEnd:   r.FallEnd.Unix(),
		}
	}

	if _, err := w.Write(rows); err != nil {
		f.Close()
		return fmt.Errorf("write parquet rows: %w", err)
	}
	if err := w.Close(); err != nil {
		f.Close()
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return f.Close()
}

// ReadParquet loads a table previously written by WriteParquet.
func ReadParquet(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Table{}, err
	}

	pf, err := parquet.OpenFile(f, info.Size())
	if err != nil {
		return Table{}, fmt.Errorf("open parquet file: %w", err)
	}

	reader := parquet.NewGenericReader[parquetRow](pf)
	defer reader.Close()

	var t Table
	buf := make([]parquetRow, 64)
	for {
		n, err := reader.Read(buf)
		for _, pr := range buf[:n] {
			t.Rows = append(t.Rows, Row{
				Cycle:     int(pr.Cycle),
				RiseStart: unixUTC(pr.RiseStart),
				MinTime:   unixUTC(pr.MinTime),
				MinValue:  pr.MinValue,
				MaxTime:   unixUTC(pr.MaxTime),
				MaxValue:  pr.MaxValue,
				FallEnd:   unixUTC(pr.FallEnd),
			})
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return Table{}, fmt.Errorf("read parquet rows: %w", err)
		}
	}

	return t, nil
}

func unixUTC(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}
