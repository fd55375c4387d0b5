// extrema-ingest - Cycle extrema table ingestion into ClickHouse
//
// Reads extrema tables (CSV, as written by cycle-extrema) and batch
// inserts the rows into solar.cycle_extrema via clickhouse-go.
//
// Build: CGO_ENABLED=0 go build -ldflags="-s -w" -o build/extrema-ingest ./cmd/extrema-ingest

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/KI7MT/solar-cycle-tools/internal/common"
	"github.com/KI7MT/solar-cycle-tools/internal/extrema"
	"github.com/KI7MT/solar-cycle-tools/internal/solar"
)

// Version can be overridden at build time via -ldflags
var Version = "1.0.0"

// indexNameFromFile derives the index label from an extrema CSV file
// name, e.g. "sidc_ssn_monthly_extrema.csv" -> "sidc_ssn_monthly".
func indexNameFromFile(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.TrimSuffix(base, "_extrema")
}

func ingestFile(ctx context.Context, conn driver.Conn, tableFQN, path, indexName string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	table, err := extrema.ReadCSV(f)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", path, err)
	}

	batch, err := conn.PrepareBatch(ctx, fmt.Sprintf("INSERT INTO %s", tableFQN))
	if err != nil {
		return 0, err
	}

	for _, r := range table.Rows {
		rec := solar.CycleExtremum{
			Index:     indexName,
			Cycle:     int32(r.Cycle),
			RiseStart: r.RiseStart.UTC(),
			MinTime:   r.MinTime.UTC(),
			MinValue:  r.MinValue,
			MaxTime:   r.MaxTime.UTC(),
			MaxValue:  r.MaxValue,
			FallEnd:   r.FallEnd.UTC(),
		}
		if err := batch.AppendStruct(&rec); err != nil {
			return 0, fmt.Errorf("append row (cycle %d): %w", r.Cycle, err)
		}
	}

	if err := batch.Send(); err != nil {
		return 0, err
	}
	return len(table.Rows), nil
}

func main() {
	cfg := common.DefaultConfig()

	chHost := flag.String("ch-host", fmt.Sprintf("%s:%d", cfg.ClickHouseHost, cfg.ClickHousePort), "ClickHouse address")
	chDB := flag.String("ch-db", cfg.ClickHouseDatabase, "ClickHouse database")
	chTable := flag.String("ch-table", "cycle_extrema", "ClickHouse table")
	indexName := flag.String("index", "", "Index label (default: derived from file name)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "extrema-ingest v%s - Cycle Extrema Ingester\n\n", Version)
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] <extrema-csv> [...]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Ingests cycle extrema tables into ClickHouse.\n\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(1)
	}

	log.Println("=========================================================")
	log.Printf("Extrema Ingest v%s", Version)
	log.Println("=========================================================")

	ctx := context.Background()

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{*chHost},
		Auth: clickhouse.Auth{
			Database: *chDB,
			Username: cfg.ClickHouseUser,
			Password: cfg.ClickHousePassword,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		log.Fatalf("ClickHouse connection failed: %v", err)
	}
	defer conn.Close()

	tableFQN := fmt.Sprintf("%s.%s", *chDB, *chTable)
	log.Printf("Table: %s", tableFQN)

	stats := common.NewStats()
	failed := 0

	for _, path := range flag.Args() {
		name := *indexName
		if name == "" {
			name = indexNameFromFile(path)
		}

		n, err := ingestFile(ctx, conn, tableFQN, path, name)
		if err != nil {
			log.Printf("[%s] ERROR: %v", filepath.Base(path), err)
			failed++
			continue
		}

		log.Printf("[%s] Inserted %d cycle(s) as index %q", filepath.Base(path), n, name)
		stats.AddRows(uint64(n))
		stats.AddFile()
	}

	log.Println("=========================================================")
	log.Printf("Done: %s", stats.Summary())
	log.Println("=========================================================")

	if failed > 0 {
		os.Exit(1)
	}
}
