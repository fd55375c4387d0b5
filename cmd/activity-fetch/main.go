// activity-fetch - Staleness-aware downloader for solar activity indices
//
// Data sources:
//   - SIDC SILSO: Daily/monthly sunspot numbers from Royal Observatory of Belgium
//   - NOAA SWPC: Solar cycle indices from Space Weather Prediction Center
//   - GFZ Potsdam: Definitive Kp/ap/SN/F10.7 daily table
//
// Cache files are date-stamped ({prefix}_{YYYYMMDD}.{ext}); a source is
// only re-downloaded when its newest cache file is older than -max-age.
//
// Build: CGO_ENABLED=0 go build -ldflags="-s -w" -o build/activity-fetch ./cmd/activity-fetch

package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/KI7MT/solar-cycle-tools/internal/cache"
	"github.com/KI7MT/solar-cycle-tools/internal/common"
	"github.com/KI7MT/solar-cycle-tools/internal/provider"
)

// Version can be overridden at build time via -ldflags
var Version = "1.0.0"

// sourceExt maps each registry key to its cache file extension.
var sourceExt = map[string]string{
	"sidc_ssn_daily":   "csv",
	"sidc_ssn_monthly": "csv",
	"noaa_flux":        "json",
	"noaa_predicted":   "json",
	"gfz_kp":           "txt",
}

var sourceDesc = map[string]string{
	"sidc_ssn_daily":   "SIDC daily sunspot numbers (1818-present)",
	"sidc_ssn_monthly": "SIDC monthly sunspot numbers (1749-present)",
	"noaa_flux":        "NOAA observed solar cycle indices (F10.7 flux, SSN)",
	"noaa_predicted":   "NOAA predicted solar cycle",
	"gfz_kp":           "GFZ Potsdam Kp/ap/SN/F10.7 daily table (1932-present)",
}

// download fetches url and writes it to destPath via temp-then-rename.
func download(url, destPath string, timeout time.Duration) (int64, error) {
	client := &http.Client{
		Timeout: timeout,
	}

	resp, err := client.Get(url)
	if err != nil {
		return 0, fmt.Errorf("HTTP GET failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	return cache.WriteFile(destPath, resp.Body)
}

func main() {
	cfg := common.DefaultConfig()

	destDir := flag.String("dest", cfg.RawDataDir(), "Destination cache directory")
	timeout := flag.Duration("timeout", 60*time.Second, "HTTP timeout per download")
	maxAge := flag.Int("max-age", cfg.FreshnessDays, "Freshness threshold in days")
	force := flag.Bool("force", false, "Re-download even when the cache is fresh")
	listSources := flag.Bool("list", false, "List available data sources")
	source := flag.String("source", "all", "Source key to fetch (or 'all')")

	registry := provider.DefaultRegistry()

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "activity-fetch v%s - Solar Activity Index Downloader\n\n", Version)
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Downloads solar activity indices, skipping sources with a fresh cache.\n\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nData Sources:\n")
		for _, key := range registry.Keys() {
			fmt.Fprintf(os.Stderr, "  %-17s %s\n", key, sourceDesc[key])
		}
	}

	flag.Parse()

	if *listSources {
		fmt.Printf("Available activity index sources:\n\n")
		for _, key := range registry.Keys() {
			fmt.Printf("  %-17s %s\n", key, sourceDesc[key])
			fmt.Printf("                    URL: %s\n\n", registry[key])
		}
		return
	}

	fmt.Println("=========================================================")
	fmt.Printf("Activity Fetch v%s\n", Version)
	fmt.Println("=========================================================")
	fmt.Printf("Destination: %s\n", *destDir)
	fmt.Printf("Max age:     %d day(s)\n", *maxAge)
	fmt.Printf("Timeout:     %v\n", *timeout)
	fmt.Println()

	startTime := time.Now()
	fetched := 0
	fresh := 0
	failed := 0

	for _, key := range registry.Keys() {
		if *source != "all" && *source != key {
			continue
		}

		var id provider.ID
		if err := id.SetKey(registry, key); err != nil {
			fmt.Printf("[%s] ERROR: %v\n", key, err)
			failed++
			continue
		}

		loader := &cache.Loader{
			Dir:       *destDir,
			Prefix:    key,
			Ext:       sourceExt[key],
			Freshness: time.Duration(*maxAge) * 24 * time.Hour,
		}
		if *force {
			loader.Freshness = -1
		}

		age, err := loader.DataAge()
		if err != nil {
			fmt.Printf("[%s] ERROR: %v\n", key, err)
			failed++
			continue
		}

		before := fetched
		err = loader.MaybeUpdate(func() error {
			destPath := filepath.Join(*destDir, loader.DatedFilename(time.Now().UTC()))
			fmt.Printf("[%s] Downloading from %s...\n", key, id.URL)

			n, err := download(id.URL, destPath, *timeout)
			if err != nil {
				return err
			}

			fmt.Printf("  Downloaded %s (%d bytes)\n", filepath.Base(destPath), n)
			fetched++
			return nil
		})
		if err != nil {
			fmt.Printf("  ERROR: %v\n", err)
			failed++
			continue
		}

		if fetched == before {
			fmt.Printf("[%s] Cache is fresh (age %dd), skipping\n", key, int(age.Hours()/24))
			fresh++
			continue
		}

		if err := loader.Prune(); err != nil {
			fmt.Printf("  Prune warning: %v\n", err)
		}
	}

	elapsed := time.Since(startTime)

	fmt.Println()
	fmt.Println("=========================================================")
	fmt.Println("Fetch Summary")
	fmt.Println("=========================================================")
	fmt.Printf("Downloaded: %d source(s)\n", fetched)
	fmt.Printf("Fresh:      %d source(s)\n", fresh)
	fmt.Printf("Failed:     %d source(s)\n", failed)
	fmt.Printf("Elapsed:    %v\n", elapsed.Round(time.Millisecond))
	fmt.Println("=========================================================")

	if failed > 0 {
		os.Exit(1)
	}
}
