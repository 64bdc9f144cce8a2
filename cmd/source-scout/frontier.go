// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/source-scout/internal/category"
	"github.com/pdiddy/source-scout/internal/frontier"
	"github.com/pdiddy/source-scout/internal/intel"
	"github.com/pdiddy/source-scout/pkg/types"
)

var frontierCmd = &cobra.Command{
	Use:   "frontier",
	Short: "Build the prioritized crawl plan from a discovery run",
	Long: `Frontier reads a discovery.json run record, seeds the crawl frontier with
the selected candidates, and prints the prioritized URL stream the fetch
stage would consume: manufacturer pages first, then other approved sources,
then (with --fetch-candidates) unapproved candidates.

Budgets cap the plan; they are soft truncation, not errors.`,
	RunE: runFrontier,
}

func runFrontier(cmd *cobra.Command, args []string) error {
	record, err := loadDiscoveryRecord(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cmd)
	defer logger.Sync()

	categoriesDir, _ := cmd.Flags().GetString("categories-dir")
	cat, err := category.LoadDir(categoriesDir, record.Identity.Category)
	if err != nil {
		return fmt.Errorf("loading category %q: %w", record.Identity.Category, err)
	}
	intelFile, _ := cmd.Flags().GetString("intel-file")
	store, err := intel.Load(intelFile)
	if err != nil {
		return err
	}

	f := frontier.New(frontierConfigFromFlags(cmd), cat, store,
		record.Identity, record.MissingFields, logger)
	seeded := f.Seed(record.Discovered)

	if err := ingestFixtures(cmd, f); err != nil {
		return err
	}

	fmt.Printf("Seeded %d of %d discovered URL(s); crawl plan:\n", seeded, len(record.Discovered))
	n := 0
	for {
		e, ok := f.Next()
		if !ok {
			break
		}
		n++
		queue := "approved"
		switch {
		case e.Role == "manufacturer":
			queue = "manufacturer"
		case e.CandidateSource:
			queue = "candidate"
		}
		fmt.Printf("%3d. [%-12s p=%.1f] %s\n", n, queue, e.Priority, e.URL)
	}

	stats := f.Stats()
	fmt.Printf("\nPlanned %d URL(s) (budget %d total, %d manufacturer)\n",
		n, stats.MaxURLs, stats.MaxManufacturerURLs)
	return nil
}

// ingestFixtures feeds already-fetched robots.txt, sitemap, and HTML
// bodies into link discovery. Each flag value is <base-url>=<file>.
func ingestFixtures(cmd *cobra.Command, f *frontier.Frontier) error {
	kinds := []struct {
		flag   string
		ingest func(baseURL string, body []byte) int
	}{
		{"robots", func(baseURL string, body []byte) int {
			return f.DiscoverFromRobots(baseURL, string(body))
		}},
		{"sitemap", func(baseURL string, body []byte) int {
			return f.DiscoverFromSitemap(baseURL, string(body))
		}},
		{"html", func(baseURL string, body []byte) int {
			return f.DiscoverFromHTML(baseURL, bytes.NewReader(body))
		}},
	}
	for _, k := range kinds {
		values, _ := cmd.Flags().GetStringSlice(k.flag)
		for _, v := range values {
			baseURL, path, ok := strings.Cut(v, "=")
			if !ok {
				return fmt.Errorf("--%s wants <base-url>=<file>, got %q", k.flag, v)
			}
			body, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s fixture: %w", k.flag, err)
			}
			added := k.ingest(baseURL, body)
			fmt.Printf("Discovered %d URL(s) from %s %s\n", added, k.flag, baseURL)
		}
	}
	return nil
}

// loadDiscoveryRecord resolves the record path from --discovery or from
// --output-dir and --product-id.
func loadDiscoveryRecord(cmd *cobra.Command) (types.DiscoveryRecord, error) {
	var record types.DiscoveryRecord

	path, _ := cmd.Flags().GetString("discovery")
	if path == "" {
		outputDir, _ := cmd.Flags().GetString("output-dir")
		productID, _ := cmd.Flags().GetString("product-id")
		if productID == "" {
			return record, fmt.Errorf("set --discovery or --product-id")
		}
		path = filepath.Join(outputDir, productID, "discovery.json")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return record, fmt.Errorf("reading discovery record: %w", err)
	}
	if err := json.Unmarshal(data, &record); err != nil {
		return record, fmt.Errorf("parsing %s: %w", path, err)
	}
	return record, nil
}

func frontierConfigFromFlags(cmd *cobra.Command) types.FrontierConfig {
	maxURLs, _ := cmd.Flags().GetInt("max-urls")
	maxManufacturer, _ := cmd.Flags().GetInt("max-manufacturer-urls")
	maxCandidates, _ := cmd.Flags().GetInt("max-candidate-urls")
	perDomain, _ := cmd.Flags().GetInt("max-pages-per-domain")
	perManufacturer, _ := cmd.Flags().GetInt("max-manufacturer-pages-per-domain")
	reserve, _ := cmd.Flags().GetInt("manufacturer-reserve")
	fetchCandidates, _ := cmd.Flags().GetBool("fetch-candidates")

	return types.FrontierConfig{
		MaxURLs:                       maxURLs,
		MaxManufacturerURLs:           maxManufacturer,
		MaxCandidateURLs:              maxCandidates,
		MaxPagesPerDomain:             perDomain,
		MaxManufacturerPagesPerDomain: perManufacturer,
		ManufacturerReserveURLs:       reserve,
		FetchCandidates:               fetchCandidates,
	}
}

func init() {
	frontierCmd.Flags().String("discovery", "", "path to a discovery.json run record")
	frontierCmd.Flags().String("product-id", "", "product ID (resolves the record under --output-dir)")
	frontierCmd.Flags().String("output-dir", "output/discovery", "artifact output directory")
	frontierCmd.Flags().String("categories-dir", "config/categories", "directory of per-category source configs")
	frontierCmd.Flags().String("intel-file", "config/domain-intel.yaml", "learned domain intelligence file")
	frontierCmd.Flags().Int("max-urls", 60, "total approved-planned URL budget")
	frontierCmd.Flags().Int("max-manufacturer-urls", 30, "manufacturer URL budget")
	frontierCmd.Flags().Int("max-candidate-urls", 20, "unapproved candidate URL budget")
	frontierCmd.Flags().Int("max-pages-per-domain", 8, "per-host cap for non-manufacturer approved hosts")
	frontierCmd.Flags().Int("max-manufacturer-pages-per-domain", 20, "per-host cap for manufacturer hosts")
	frontierCmd.Flags().Int("manufacturer-reserve", 0, "slots of the total budget reserved for manufacturer pages")
	frontierCmd.Flags().Bool("fetch-candidates", false, "also plan unapproved candidate URLs")
	frontierCmd.Flags().StringSlice("robots", nil, "robots.txt fixture as <base-url>=<file>, repeatable")
	frontierCmd.Flags().StringSlice("sitemap", nil, "sitemap fixture as <base-url>=<file>, repeatable")
	frontierCmd.Flags().StringSlice("html", nil, "fetched page fixture as <base-url>=<file>, repeatable")

	rootCmd.AddCommand(frontierCmd)
}
