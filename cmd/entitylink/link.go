// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/entitylink/internal/client"
	"github.com/pdiddy/entitylink/internal/linking"
	"github.com/pdiddy/entitylink/pkg/types"
)

var linkCmd = &cobra.Command{
	Use:   "link <file.pdf>",
	Short: "Link the entities of a local PDF",
	Long: `Link extracts the PDF, links its entities against the chosen knowledge
base, and prints the result. With --remote the file is uploaded to a
running entitylink service instead of being processed locally.

Output formats:
  wire  the service response: labels, links and type_lists as JSON strings
  json  the three lists as JSON arrays
  yaml  the three lists as YAML`,
	Args: cobra.ExactArgs(1),
	RunE: runLink,
}

func runLink(cmd *cobra.Command, args []string) error {
	kbName, _ := cmd.Flags().GetString("kb")
	format, _ := cmd.Flags().GetString("format")
	remote, _ := cmd.Flags().GetString("remote")

	target, err := parseTarget(kbName)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	var links *types.EntityLinks
	if remote != "" {
		c := client.New(remote, httpClient(cfg))
		c.UserAgent = cfg.HTTP.UserAgent
		c.MaxRetries = cfg.HTTP.MaxRetries
		if target == types.TargetDBpedia {
			links, err = c.EntityLinksDBpedia(ctx, args[0])
		} else {
			links, err = c.EntityLinksWikidata(ctx, args[0])
		}
	} else {
		links, err = linkLocal(ctx, linking.NewService(cfg, httpClient(cfg)), args[0], target)
	}
	if err != nil {
		return err
	}
	return writeLinks(os.Stdout, links, format)
}

func linkLocal(ctx context.Context, svc *linking.Service, path string, target types.Target) (*types.EntityLinks, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	if target == types.TargetDBpedia {
		return svc.LinkDBpedia(ctx, f)
	}
	return svc.LinkWikidata(ctx, f)
}

func parseTarget(name string) (types.Target, error) {
	switch name {
	case "wikidata", "":
		return types.TargetWikidata, nil
	case "dbpedia":
		return types.TargetDBpedia, nil
	default:
		return "", fmt.Errorf("unsupported knowledge base %q: use wikidata or dbpedia", name)
	}
}

func writeLinks(w io.Writer, links *types.EntityLinks, format string) error {
	switch format {
	case "wire", "":
		s, err := links.Serialize()
		if err != nil {
			return err
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(links)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(links)
	default:
		return fmt.Errorf("unsupported format %q: use wire, json or yaml", format)
	}
}

func init() {
	linkCmd.Flags().String("kb", "wikidata", "knowledge base: wikidata or dbpedia")
	linkCmd.Flags().String("format", "wire", "output format: wire, json or yaml")
	linkCmd.Flags().String("remote", "", "base URL of an entitylink service to upload to")

	rootCmd.AddCommand(linkCmd)
}
