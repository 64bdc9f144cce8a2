// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/source-scout/internal/category"
	"github.com/pdiddy/source-scout/internal/corpus"
	"github.com/pdiddy/source-scout/internal/discovery"
	"github.com/pdiddy/source-scout/internal/intel"
	"github.com/pdiddy/source-scout/internal/providers"
	"github.com/pdiddy/source-scout/pkg/types"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Plan and execute a source discovery run for one product",
	Long: `Discover plans identity-guarded search queries for a product, executes
them against the internal corpus and configured external providers, and
triages the results into a selected candidate set.

Artifacts are written under --output-dir/<product-id>/: search_profile.json
(planning and execution audit), discovery.json (the full run record), and
candidates.json (unapproved domains for review). When no provider is
configured the run degrades to deterministic plan-only URL synthesis.`,
	RunE: runDiscover,
}

func runDiscover(cmd *cobra.Command, args []string) error {
	id, err := identityFromFlags(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cmd)
	defer logger.Sync()

	categoriesDir, _ := cmd.Flags().GetString("categories-dir")
	cat, err := category.LoadDir(categoriesDir, id.Category)
	if err != nil {
		return fmt.Errorf("loading category %q: %w", id.Category, err)
	}

	intelFile, _ := cmd.Flags().GetString("intel-file")
	store, err := intel.Load(intelFile)
	if err != nil {
		return err
	}

	cfg := discoveryConfigFromFlags(cmd)
	client := &http.Client{Timeout: cfg.Timeout}

	deps := discovery.Deps{
		Category:  cat,
		Intel:     store,
		Providers: providers.Build(cfg, client),
	}
	if cfg.InternalFirst {
		corpusDir, _ := cmd.Flags().GetString("corpus-dir")
		cs, err := corpus.NewStore(types.CorpusConfig{CorpusDir: corpusDir})
		if err != nil {
			return err
		}
		defer cs.Close()
		deps.Corpus = corpus.Searcher{Store: cs}
	}

	missing, _ := cmd.Flags().GetStringSlice("missing-fields")
	extra, _ := cmd.Flags().GetStringSlice("query")

	engine := discovery.NewEngine(cfg, deps, logger)
	out, err := engine.Run(context.Background(), discovery.RunInput{
		Identity:      id,
		MissingFields: missing,
		RuntimeExtra:  extra,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Run %s: %d source(s) selected (provider state via discovery.json)\n",
		out.RunID, len(out.Discovered))
	for i, c := range out.Discovered {
		fmt.Printf("%3d. [%s/%s] %s\n", i+1, c.TierName, c.DocKindGuess, c.URL)
	}
	if out.PlanOnly {
		fmt.Println("Note: no search provider was usable; URLs are plan-only synthesis.")
	}
	return nil
}

// identityFromFlags assembles the product identity, deriving a product ID
// from the name when none is given.
func identityFromFlags(cmd *cobra.Command) (types.Identity, error) {
	brand, _ := cmd.Flags().GetString("brand")
	model, _ := cmd.Flags().GetString("model")
	variant, _ := cmd.Flags().GetString("variant")
	cat, _ := cmd.Flags().GetString("category")
	productID, _ := cmd.Flags().GetString("product-id")

	id := types.Identity{
		Brand:     brand,
		Model:     model,
		Variant:   variant,
		Category:  cat,
		ProductID: productID,
	}
	if id.IsEmpty() {
		return id, fmt.Errorf("product identity required: set --brand and --model")
	}
	if id.Category == "" {
		return id, fmt.Errorf("--category is required")
	}
	if id.ProductID == "" {
		id.ProductID = slugID(id.FullName())
	}
	return id, nil
}

func discoveryConfigFromFlags(cmd *cobra.Command) types.DiscoveryConfig {
	queryLimit, _ := cmd.Flags().GetInt("query-limit")
	resultLimit, _ := cmd.Flags().GetInt("result-limit")
	discoveryCap, _ := cmd.Flags().GetInt("discovery-cap")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	internalFirst, _ := cmd.Flags().GetBool("internal-first")
	internalMin, _ := cmd.Flags().GetInt("internal-min-results")
	uber, _ := cmd.Flags().GetBool("uber")
	searxng, _ := cmd.Flags().GetString("searxng-endpoint")
	duckduckgo, _ := cmd.Flags().GetBool("duckduckgo")
	variants, _ := cmd.Flags().GetStringSlice("known-variants")
	outputDir, _ := cmd.Flags().GetString("output-dir")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	return types.DiscoveryConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: "source-scout/" + version,
		},
		QueryLimit:         queryLimit,
		ResultLimit:        resultLimit,
		DiscoveryCap:       discoveryCap,
		Concurrency:        concurrency,
		InternalFirst:      internalFirst,
		InternalMinResults: internalMin,
		UberAggressive:     uber,
		SearxngEndpoint:    secretDefault("searxng-endpoint", searxng),
		EnableDuckDuckGo:   duckduckgo,
		KnownVariants:      variants,
		OutputDir:          outputDir,
	}
}

// slugID lowercases s and joins alphanumeric runs with hyphens.
func slugID(s string) string {
	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(s) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if pending && b.Len() > 0 {
				b.WriteByte('-')
			}
			pending = false
			b.WriteRune(r)
		default:
			pending = true
		}
	}
	return b.String()
}

// newLogger builds the CLI logger: console output, debug level with
// --verbose.
func newLogger(cmd *cobra.Command) *zap.Logger {
	verbose, _ := cmd.Root().PersistentFlags().GetBool("verbose")
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: logger init failed: %v\n", err)
		return zap.NewNop()
	}
	return logger
}

func addIdentityFlags(cmd *cobra.Command) {
	cmd.Flags().String("brand", "", "product brand (e.g. Razer)")
	cmd.Flags().String("model", "", "product model (e.g. \"Viper V3 Pro\")")
	cmd.Flags().String("variant", "", "product variant or edition")
	cmd.Flags().String("category", "", "product category slug (e.g. mouse)")
	cmd.Flags().String("product-id", "", "pipeline product ID (default: derived from the name)")
	cmd.Flags().String("categories-dir", "config/categories", "directory of per-category source configs")
	cmd.Flags().String("intel-file", "config/domain-intel.yaml", "learned domain intelligence file")
	cmd.Flags().StringSlice("missing-fields", nil, "spec fields the run should target")
}

func init() {
	addIdentityFlags(discoverCmd)
	discoverCmd.Flags().StringSlice("query", nil, "extra query strings to merge into the plan")
	discoverCmd.Flags().StringSlice("known-variants", nil, "other variants of the model, for the cross-variant guard")
	discoverCmd.Flags().Int("query-limit", 8, "maximum queries sent to execution")
	discoverCmd.Flags().Int("result-limit", 10, "per-query provider result limit")
	discoverCmd.Flags().Int("discovery-cap", 12, "top-K size of the selected candidate set")
	discoverCmd.Flags().Int("concurrency", 1, "external search worker pool size")
	discoverCmd.Flags().Bool("internal-first", false, "search the internal corpus before external providers")
	discoverCmd.Flags().Int("internal-min-results", 5, "distinct internal URLs at which external search is skipped")
	discoverCmd.Flags().Bool("uber", false, "aggressive mode: uber LLM planning and forced LLM triage")
	discoverCmd.Flags().String("searxng-endpoint", "", "SearXNG base URL (or .secrets/searxng-endpoint)")
	discoverCmd.Flags().Bool("duckduckgo", false, "enable the DuckDuckGo HTML backend")
	discoverCmd.Flags().String("corpus-dir", "corpus", "corpus base directory (with --internal-first)")
	discoverCmd.Flags().String("output-dir", "output/discovery", "artifact output directory")
	discoverCmd.Flags().Duration("timeout", 20*time.Second, "HTTP request timeout")

	rootCmd.AddCommand(discoverCmd)
}
