// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the entitylink CLI and service.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/entitylink/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the entitylink CLI.
var rootCmd = &cobra.Command{
	Use:   "entitylink",
	Short: "Link named entities in PDF documents to Wikidata or DBpedia",
	Long: `entitylink extracts the text of a PDF, runs an annotation pipeline with
an entity-linking stage, and reports each linked entity's label, link and
types as three aligned lists.

Run it as an HTTP service (serve), link a local file (link), inspect the
extracted text (extract), or manage the local Wikidata knowledge base (kb).`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetLevel(viper.GetString("log.level"))
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./entitylink.yaml or ~/.config/entitylink/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	// A missing .env file is not an error.
	_ = godotenv.Load()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("entitylink")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "entitylink"))
		}
	}

	setDefaults()
	bindEnv()

	if err := viper.ReadInConfig(); err == nil {
		logger.Get().Infof("using config file %s", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		fmt.Fprintf(os.Stderr, "reading config %s: %v\n", cfgFile, err)
		os.Exit(1)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
