// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/entitylink/internal/wikidata"
)

var kbCmd = &cobra.Command{
	Use:   "kb",
	Short: "Manage the local Wikidata knowledge base (import, stats)",
	Long: `KB manages the SQLite knowledge base the Wikidata linking stage
resolves mentions against. The file is wikidata.kb_path in the config.`,
}

// --- import subcommand ---

var kbImportCmd = &cobra.Command{
	Use:   "import <seed.yaml>",
	Short: "Load entities, aliases and statements from a YAML seed file",
	Long: `Import creates the knowledge base when missing and loads the seed
file inside one transaction. Entities already present are replaced.`,
	Args: cobra.ExactArgs(1),
	RunE: runKBImport,
}

func runKBImport(cmd *cobra.Command, args []string) error {
	seed, err := wikidata.LoadSeed(args[0])
	if err != nil {
		return err
	}

	path := viper.GetString("wikidata.kb_path")
	kb, err := wikidata.Create(path)
	if err != nil {
		return err
	}
	defer kb.Close()

	summary, err := kb.Import(context.Background(), seed)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "imported %d entities, %d aliases, %d statements into %s\n",
		summary.Entities, summary.Aliases, summary.Statements, path)
	return nil
}

// --- stats subcommand ---

var kbStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print knowledge base table counts",
	Args:  cobra.NoArgs,
	RunE:  runKBStats,
}

func runKBStats(cmd *cobra.Command, args []string) error {
	path := viper.GetString("wikidata.kb_path")
	kb, err := wikidata.Open(path)
	if err != nil {
		return err
	}
	defer kb.Close()

	stats, err := kb.Stats(context.Background())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-12s %s\n", "Path", path)
	fmt.Fprintf(out, "%-12s %d\n", "Entities", stats.Entities)
	fmt.Fprintf(out, "%-12s %d\n", "Aliases", stats.Aliases)
	fmt.Fprintf(out, "%-12s %d\n", "Statements", stats.Statements)
	return nil
}

func init() {
	kbCmd.PersistentFlags().String("kb-path", "", "knowledge base file (default data/wikidata.db)")
	_ = viper.BindPFlag("wikidata.kb_path", kbCmd.PersistentFlags().Lookup("kb-path"))

	kbCmd.AddCommand(kbImportCmd)
	kbCmd.AddCommand(kbStatsCmd)

	rootCmd.AddCommand(kbCmd)
}
