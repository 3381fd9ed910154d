//go:build mage

// Package main contains Mage build targets for entitylink developer tooling.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binDir  = "bin"
	binName = "entitylink"
	cmdPkg  = "./cmd/entitylink"

	dataDir  = "data"
	kbPath   = "data/wikidata.db"
	seedFile = "data/seed.yaml"
)

// Default target when mage runs without arguments.
var Default = Build

// Init creates the local data directory used by the knowledge base.
func Init() error {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dataDir, err)
	}
	fmt.Println("  ", dataDir)
	return nil
}

// Build compiles the CLI binary into bin/. The sqlite3 driver needs cgo.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	version, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil || version == "" {
		version = "dev"
	}
	env := map[string]string{"CGO_ENABLED": "1"}
	if err := sh.RunWith(env, "go", "build", "-ldflags", "-X main.version="+version, "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s (%s)\n", out, version)
	return nil
}

// Test runs the unit tests.
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// SeedKB imports data/seed.yaml into data/wikidata.db.
func SeedKB() error {
	mg.Deps(Init, Build)
	return sh.RunV(filepath.Join(binDir, binName), "kb", "import", seedFile, "--kb-path", kbPath)
}

// Serve builds the binary and runs the HTTP service.
func Serve() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "serve")
}
