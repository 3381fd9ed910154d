// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package wikidata

import (
	"context"
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// SeedEntity is one entity in a YAML seed file.
type SeedEntity struct {
	ID          string   `yaml:"id"`
	Label       string   `yaml:"label"`
	Description string   `yaml:"description,omitempty"`
	Prior       float64  `yaml:"prior"`
	Aliases     []string `yaml:"aliases,omitempty"`
	InstanceOf  []string `yaml:"instance_of,omitempty"`
	SubclassOf  []string `yaml:"subclass_of,omitempty"`
}

// Seed is the content of a knowledge base seed file.
type Seed struct {
	Entities []SeedEntity `yaml:"entities"`
}

// LoadSeed reads and parses a YAML seed file.
func LoadSeed(path string) (Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("reading seed %s: %w", path, err)
	}
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return Seed{}, fmt.Errorf("parsing seed %s: %w", path, err)
	}
	return seed, nil
}

// ImportSummary holds row counts written by an import.
type ImportSummary struct {
	Entities   int
	Aliases    int
	Statements int
}

// Import writes the seed into the knowledge base in one transaction.
// Existing entities are replaced together with their aliases and
// statements. The entity label is always registered as an alias.
func (kb *KB) Import(ctx context.Context, seed Seed) (ImportSummary, error) {
	tx, err := kb.db.BeginTx(ctx, nil)
	if err != nil {
		return ImportSummary{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var summary ImportSummary
	for _, se := range seed.Entities {
		id, err := ParseQID(se.ID)
		if err != nil {
			return ImportSummary{}, err
		}
		if se.Label == "" {
			return ImportSummary{}, fmt.Errorf("entity %s has no label", se.ID)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO entities (id, label, description, prior) VALUES (?, ?, ?, ?)
			 ON CONFLICT(id) DO UPDATE SET
				label=excluded.label, description=excluded.description, prior=excluded.prior`,
			id, se.Label, se.Description, se.Prior)
		if err != nil {
			return ImportSummary{}, fmt.Errorf("upserting entity %s: %w", se.ID, err)
		}
		summary.Entities++

		if _, err := tx.ExecContext(ctx, `DELETE FROM aliases WHERE entity_id = ?`, id); err != nil {
			return ImportSummary{}, fmt.Errorf("clearing aliases of %s: %w", se.ID, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM statements WHERE source = ?`, id); err != nil {
			return ImportSummary{}, fmt.Errorf("clearing statements of %s: %w", se.ID, err)
		}

		for _, alias := range append([]string{se.Label}, se.Aliases...) {
			res, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO aliases (alias, entity_id) VALUES (?, ?)`, alias, id)
			if err != nil {
				return ImportSummary{}, fmt.Errorf("inserting alias %q: %w", alias, err)
			}
			n, _ := res.RowsAffected()
			summary.Aliases += int(n)
		}

		edges := []struct {
			prop    int
			targets []string
		}{
			{PropInstanceOf, se.InstanceOf},
			{PropSubclassOf, se.SubclassOf},
		}
		for _, edge := range edges {
			for _, raw := range edge.targets {
				target, err := ParseQID(raw)
				if err != nil {
					return ImportSummary{}, fmt.Errorf("entity %s: %w", se.ID, err)
				}
				res, err := tx.ExecContext(ctx,
					`INSERT OR IGNORE INTO statements (source, property, target) VALUES (?, ?, ?)`,
					id, edge.prop, target)
				if err != nil {
					return ImportSummary{}, fmt.Errorf("inserting statement %s P%d %s: %w", se.ID, edge.prop, raw, err)
				}
				n, _ := res.RowsAffected()
				summary.Statements += int(n)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return ImportSummary{}, fmt.Errorf("committing import: %w", err)
	}
	return summary, nil
}
