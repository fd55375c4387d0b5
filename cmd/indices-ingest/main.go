// indices-ingest - Cached activity index ingestion into ClickHouse
//
// Reads the newest cached raw file of each requested index, normalizes
// missing-value sentinels, and inserts the samples into
// solar.indices_raw via the ClickHouse native protocol.
//
// Build: CGO_ENABLED=0 go build -ldflags="-s -w" -o build/indices-ingest ./cmd/indices-ingest

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/ClickHouse/ch-go"
	"github.com/ClickHouse/ch-go/proto"

	"github.com/KI7MT/solar-cycle-tools/internal/cache"
	"github.com/KI7MT/solar-cycle-tools/internal/common"
	"github.com/KI7MT/solar-cycle-tools/internal/indices"
	"github.com/KI7MT/solar-cycle-tools/internal/series"
	"github.com/KI7MT/solar-cycle-tools/internal/solar"
)

// Version can be overridden at build time via -ldflags
var Version = "1.0.0"

// IndexBatch holds column data for native insert into solar.indices_raw.
type IndexBatch struct {
	Date       *proto.ColDate32
	Index      *proto.ColStr
	Value      *proto.ColFloat64
	SourceFile *proto.ColStr
}

func NewIndexBatch() *IndexBatch {
	return &IndexBatch{
		Date:       new(proto.ColDate32),
		Index:      new(proto.ColStr),
		Value:      new(proto.ColFloat64),
		SourceFile: new(proto.ColStr),
	}
}

func (b *IndexBatch) Reset() {
	b.Date.Reset()
	b.Index.Reset()
	b.Value.Reset()
	b.SourceFile.Reset()
}

func (b *IndexBatch) Len() int {
	return b.Date.Rows()
}

func (b *IndexBatch) Input() proto.Input {
	return proto.Input{
		{Name: "date", Data: b.Date},
		{Name: "index", Data: b.Index},
		{Name: "value", Data: b.Value},
		{Name: "source_file", Data: b.SourceFile},
	}
}

// Append adds one record to the batch columns.
func (b *IndexBatch) Append(rec solar.IndexRecord) {
	b.Date.Append(rec.Date)
	b.Index.Append(rec.Index)
	b.Value.Append(rec.Value)
	b.SourceFile.Append(rec.SourceFile)
}

// AddSeries appends every non-missing sample of s to the batch.
func (b *IndexBatch) AddSeries(key string, s series.Series, sourceFile string) int {
	count := 0
	for i := 0; i < s.Len(); i++ {
		v := s.Value(i)
		if math.IsNaN(v) {
			continue
		}
		b.Append(solar.IndexRecord{
			Date:       s.Time(i),
			Index:      key,
			Value:      v,
			SourceFile: sourceFile,
		})
		count++
	}
	return count
}

func flushBatch(ctx context.Context, conn *ch.Client, tableFQN string, batch *IndexBatch) error {
	if batch.Len() == 0 {
		return nil
	}

	query := fmt.Sprintf("INSERT INTO %s (date, index, value, source_file) VALUES", tableFQN)
	return conn.Do(ctx, ch.Query{
		Body:  query,
		Input: batch.Input(),
	})
}

// loadSeries parses the newest cache file for key, with the sentinel
// conversion already applied.
func loadSeries(dataDir, key string) (series.Series, string, error) {
	var (
		ind    *indices.Indicator
		ext    string
		prefix = key
	)

	switch key {
	case "sidc_ssn_daily":
		ind, ext = indices.NewSIDCDaily(), "csv"
	case "sidc_ssn_monthly":
		ind, ext = indices.NewSIDCMonthly(), "csv"
	case "noaa_flux":
		ind, ext = indices.NewNOAAFlux(), "json"
	case "gfz_ssn":
		ind, ext = indices.NewGFZSSN(), "txt"
		prefix = "gfz_kp"
	default:
		return series.Series{}, "", fmt.Errorf("unknown index %q", key)
	}

	loader := &cache.Loader{Dir: dataDir, Prefix: prefix, Ext: ext}
	path, err := loader.CurrentPath()
	if err != nil {
		return series.Series{}, "", err
	}
	if path == "" {
		return series.Series{}, "", fmt.Errorf("no cached data for %s", key)
	}

	f, err := cache.Open(path)
	if err != nil {
		return series.Series{}, "", err
	}
	defer f.Close()

	var s series.Series
	switch key {
	case "sidc_ssn_daily":
		s, err = indices.ParseSIDCDaily(f)
	case "sidc_ssn_monthly":
		s, err = indices.ParseSIDCMonthly(f)
	case "noaa_flux":
		s, err = indices.ParseNOAAIndices(f, indices.NOAAFieldF107)
	case "gfz_ssn":
		s, err = indices.ParseGFZSSN(f)
	}
	if err != nil {
		return series.Series{}, "", fmt.Errorf("parse %s: %w", path, err)
	}

	if err := ind.SetData(s); err != nil {
		return series.Series{}, "", err
	}
	data, err := ind.Data()
	if err != nil {
		return series.Series{}, "", err
	}
	return data, filepath.Base(path), nil
}

func main() {
	cfg := common.DefaultConfig()

	chHost := flag.String("ch-host", fmt.Sprintf("%s:%d", cfg.ClickHouseHost, cfg.ClickHousePort), "ClickHouse address")
	chDB := flag.String("ch-db", cfg.ClickHouseDatabase, "ClickHouse database")
	chTable := flag.String("ch-table", "indices_raw", "ClickHouse table")
	dataDir := flag.String("data-dir", cfg.RawDataDir(), "Raw index cache directory")
	indexList := flag.String("indices", "sidc_ssn_daily,noaa_flux", "Comma-separated index keys")
	truncate := flag.Bool("truncate", false, "Truncate table before insert")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "indices-ingest v%s - Activity Index Ingester\n\n", Version)
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Ingests cached activity index data into ClickHouse.\n\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	log.Println("=========================================================")
	log.Printf("Indices Ingest v%s", Version)
	log.Println("=========================================================")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("\nShutdown requested...")
		cancel()
	}()

	log.Printf("Connecting to ClickHouse at %s...", *chHost)
	conn, err := ch.Dial(ctx, ch.Options{
		Address:     *chHost,
		Database:    *chDB,
		User:        cfg.ClickHouseUser,
		Password:    cfg.ClickHousePassword,
		Compression: ch.CompressionLZ4,
	})
	if err != nil {
		log.Fatalf("ClickHouse connection failed: %v", err)
	}
	defer conn.Close()

	tableFQN := fmt.Sprintf("%s.%s", *chDB, *chTable)
	log.Printf("Table: %s", tableFQN)

	if *truncate {
		log.Printf("Truncating table %s...", tableFQN)
		if err := conn.Do(ctx, ch.Query{Body: fmt.Sprintf("TRUNCATE TABLE %s", tableFQN)}); err != nil {
			log.Printf("Truncate warning: %v", err)
		}
	}

	stats := common.NewStats()
	batch := NewIndexBatch()

	for _, key := range strings.Split(*indexList, ",") {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}

		select {
		case <-ctx.Done():
			log.Fatal("Cancelled")
		default:
		}

		s, sourceFile, err := loadSeries(*dataDir, key)
		if err != nil {
			log.Printf("[%s] Load error: %v", key, err)
			continue
		}

		count := batch.AddSeries(key, s, sourceFile)
		log.Printf("[%s] Parsed %d samples from %s", key, count, sourceFile)
		stats.AddRows(uint64(count))
		stats.AddFile()
	}

	if batch.Len() > 0 {
		if err := flushBatch(ctx, conn, tableFQN, batch); err != nil {
			log.Fatalf("Insert error: %v", err)
		}
		log.Printf("Inserted %d records", batch.Len())
	}

	log.Println("=========================================================")
	log.Printf("Done: %s", stats.Summary())
	log.Println("=========================================================")
}
