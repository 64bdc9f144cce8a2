// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/source-scout/internal/intel"
)

var intelCmd = &cobra.Command{
	Use:   "intel [root-domain]",
	Short: "Inspect learned domain intelligence",
	Long: `Intel prints the priority a root domain would receive in the crawl
frontier: its learned base score (with any brand override) plus the bounded
boost from the given missing fields.`,
	RunE: runIntel,
}

func runIntel(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("exactly one root domain required")
	}
	intelFile, _ := cmd.Flags().GetString("intel-file")
	store, err := intel.Load(intelFile)
	if err != nil {
		return err
	}

	brand, _ := cmd.Flags().GetString("brand")
	fields, _ := cmd.Flags().GetStringSlice("missing-fields")

	domain := args[0]
	fmt.Printf("%s: priority %.2f\n", domain, store.Priority(domain, brand, fields))
	for _, field := range fields {
		fmt.Printf("  %s: field yield %.1f\n", field, store.FieldYield(domain, field))
	}
	return nil
}

func init() {
	intelCmd.Flags().String("intel-file", "config/domain-intel.yaml", "learned domain intelligence file")
	intelCmd.Flags().String("brand", "", "brand for per-brand score overrides")
	intelCmd.Flags().StringSlice("missing-fields", nil, "missing fields for the boost computation")

	rootCmd.AddCommand(intelCmd)
}
