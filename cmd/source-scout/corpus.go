// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/source-scout/internal/corpus"
	"github.com/pdiddy/source-scout/pkg/types"
)

var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Manage the internal page corpus (index, search, count)",
	Long: `Corpus manages the local SQLite index over previously fetched page text.
The discovery engine searches it before spending external provider quota;
these subcommands maintain and inspect it directly.`,
}

var corpusIndexCmd = &cobra.Command{
	Use:   "index",
	Short: "Ingest fetched pages into the corpus index",
	Long: `Index reads page YAML files from <corpus-dir>/fetched/ and ingests them
into the SQLite FTS5 index. Unchanged files are skipped on subsequent runs.`,
	RunE: runCorpusIndex,
}

func runCorpusIndex(cmd *cobra.Command, args []string) error {
	store, err := openCorpus(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	summary, err := store.Ingest(context.Background(), os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d page(s) failed indexing", summary.Failed)
	}
	return nil
}

var corpusSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Full-text search over indexed page text",
	RunE:  runCorpusSearch,
}

func runCorpusSearch(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("query required")
	}
	store, err := openCorpus(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	hits, err := store.Search(context.Background(), strings.Join(args, " "), limit)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(hits)
	}
	if len(hits) == 0 {
		fmt.Println("No results found.")
		return nil
	}
	for i, h := range hits {
		fmt.Printf("%3d. %s\n     %s\n", i+1, h.URL, h.Snippet)
	}
	fmt.Printf("\n%d result(s)\n", len(hits))
	return nil
}

var corpusCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Print the number of indexed pages",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openCorpus(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		n, err := store.Count(context.Background())
		if err != nil {
			return err
		}
		fmt.Println(n)
		return nil
	},
}

func openCorpus(cmd *cobra.Command) (*corpus.Store, error) {
	corpusDir, _ := cmd.Flags().GetString("corpus-dir")
	maxResults, _ := cmd.Flags().GetInt("max-results")
	return corpus.NewStore(types.CorpusConfig{
		CorpusDir:  corpusDir,
		MaxResults: maxResults,
	})
}

func init() {
	corpusCmd.PersistentFlags().String("corpus-dir", "corpus", "base directory for the corpus (contains fetched/, index/)")
	corpusCmd.PersistentFlags().Int("max-results", 20, "default maximum search hits")

	corpusSearchCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	corpusSearchCmd.Flags().Bool("json", false, "output results as JSON")

	corpusCmd.AddCommand(corpusIndexCmd)
	corpusCmd.AddCommand(corpusSearchCmd)
	corpusCmd.AddCommand(corpusCountCmd)

	rootCmd.AddCommand(corpusCmd)
}
