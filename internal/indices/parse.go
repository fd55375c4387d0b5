// Raw format parsers for the supported index providers. Parsers keep
// provider sentinel values (-1) as-is; Indicator.SetData normalizes
// them through the missing-value hook.
package indices

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/KI7MT/solar-cycle-tools/internal/series"
)

// ParseSIDCDaily parses the SILSO daily total sunspot number CSV:
// YYYY;MM;DD;decimal_year;SSN;std_dev;observations;flag
func ParseSIDCDaily(r io.Reader) (series.Series, error) {
	var (
		times  []time.Time
		values []float64
	)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, ";")
		if len(fields) < 5 {
			continue
		}

		year, _ := strconv.Atoi(strings.TrimSpace(fields[0]))
		month, _ := strconv.Atoi(strings.TrimSpace(fields[1]))
		day, _ := strconv.Atoi(strings.TrimSpace(fields[2]))
		ssn, err := strconv.ParseFloat(strings.TrimSpace(fields[4]), 64)
		if err != nil {
			continue
		}

		if year < 1700 || year > 2100 || month < 1 || month > 12 || day < 1 || day > 31 {
			continue
		}

		times = append(times, time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC))
		values = append(values, ssn)
	}
	if err := scanner.Err(); err != nil {
		return series.Series{}, err
	}

	return series.New(times, values)
}

// ParseSIDCMonthly parses the SILSO monthly mean sunspot number CSV:
// YYYY;MM;decimal_year;SSN;std_dev;observations;flag
// Each month is stamped mid-month, matching how the NOAA monthly
// indices are bucketed.
func ParseSIDCMonthly(r io.Reader) (series.Series, error) {
	var (
		times  []time.Time
		values []float64
	)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, ";")
		if len(fields) < 4 {
			continue
		}

		year, _ := strconv.Atoi(strings.TrimSpace(fields[0]))
		month, _ := strconv.Atoi(strings.TrimSpace(fields[1]))
		ssn, err := strconv.ParseFloat(strings.TrimSpace(fields[3]), 64)
		if err != nil {
			continue
		}

		if year < 1700 || year > 2100 || month < 1 || month > 12 {
			continue
		}

		times = append(times, time.Date(year, time.Month(month), 15, 0, 0, 0, 0, time.UTC))
		values = append(values, ssn)
	}
	if err := scanner.Err(); err != nil {
		return series.Series{}, err
	}

	return series.New(times, values)
}

// NOAARecord is one entry of the NOAA SWPC observed solar cycle JSON.
type NOAARecord struct {
	TimeTag      string  `json:"time-tag"`
	SSN          float64 `json:"ssn"`
	SmoothedSSN  float64 `json:"smoothed_ssn"`
	F107         float64 `json:"f10.7"`
	SmoothedF107 float64 `json:"smoothed_f10.7"`
}

// NOAA field selectors for ParseNOAAIndices.
const (
	NOAAFieldSSN  = "ssn"
	NOAAFieldF107 = "f10.7"
)

// ParseNOAAIndices parses the NOAA SWPC observed-solar-cycle-indices
// JSON and extracts the selected field as a monthly series (mid-month
// stamped, matching the "YYYY-MM" time tags).
func ParseNOAAIndices(r io.Reader, field string) (series.Series, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return series.Series{}, err
	}

	var records []NOAARecord
	if err := json.Unmarshal(data, &records); err != nil {
		return series.Series{}, fmt.Errorf("parse NOAA JSON: %w", err)
	}

	var (
		times  []time.Time
		values []float64
	)

	for _, rec := range records {
		parts := strings.Split(rec.TimeTag, "-")
		if len(parts) != 2 {
			continue
		}

		year, _ := strconv.Atoi(parts[0])
		month, _ := strconv.Atoi(parts[1])
		if year < 1700 || year > 2100 || month < 1 || month > 12 {
			continue
		}

		var v float64
		switch field {
		case NOAAFieldSSN:
			v = rec.SSN
		case NOAAFieldF107:
			v = rec.F107
		default:
			return series.Series{}, fmt.Errorf("unknown NOAA field %q", field)
		}

		times = append(times, time.Date(year, time.Month(month), 15, 0, 0, 0, 0, time.UTC))
		values = append(values, v)
	}

	return series.New(times, values)
}

// ParseGFZSSN parses the daily sunspot number column (col 24) of the
// GFZ Potsdam Kp_ap_Ap_SN_F107 whitespace-delimited table.
func ParseGFZSSN(r io.Reader) (series.Series, error) {
	var (
		times  []time.Time
		values []float64
	)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 27 {
			continue
		}

		year, err := strconv.Atoi(fields[0])
		if err != nil || year < 1900 || year > 2100 {
			continue
		}
		month, _ := strconv.Atoi(fields[1])
		day, _ := strconv.Atoi(fields[2])
		if month < 1 || month > 12 || day < 1 || day > 31 {
			continue
		}

		ssn, err := strconv.ParseFloat(fields[24], 64)
		if err != nil {
			continue
		}

		times = append(times, time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC))
		values = append(values, ssn)
	}
	if err := scanner.Err(); err != nil {
		return series.Series{}, err
	}

	return series.New(times, values)
}
