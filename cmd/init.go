package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kamusis/orient-cli/internal/catalog"
	"github.com/kamusis/orient-cli/internal/config"
	"github.com/kamusis/orient-cli/internal/geo"
	"github.com/kamusis/orient-cli/internal/level"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create ~/.orient with a default config and editable data tables",
	Long: `Initialize Orient at ~/.orient/.

Writes orient.yaml, a .env template for the embeddings provider, and copies
of the region and domain tables under ~/.orient/data/ that can be edited.
Existing files are never overwritten.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(_ *cobra.Command, _ []string) error {
	// ── 1. Resolve ~/.orient directory ────────────────────────────────────────
	orientDir, err := config.OrientDir()
	if err != nil {
		return err
	}
	cfgPath, err := config.ConfigPath()
	if err != nil {
		return err
	}
	dataDir := filepath.Join(orientDir, "data")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("cannot create %s: %w", dataDir, err)
	}
	printOK("", fmt.Sprintf("Orient directory ready: %s", orientDir))

	// ── 2. Static tables ──────────────────────────────────────────────────────
	regionsPath := filepath.Join(dataDir, "regions.yaml")
	domainsPath := filepath.Join(dataDir, "domains.yaml")
	for _, f := range []struct {
		path string
		data []byte
	}{
		{regionsPath, geo.DefaultRegionsYAML()},
		{domainsPath, level.DefaultDomainsYAML()},
	} {
		written, err := writeIfMissing(f.path, f.data)
		if err != nil {
			return err
		}
		if written {
			printOK("", fmt.Sprintf("Table written: %s", f.path))
		} else {
			printSkip("", fmt.Sprintf("Table already exists: %s", f.path))
		}
	}

	// ── 3. Write orient.yaml if missing ───────────────────────────────────────
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		cfg, err := config.DefaultConfig()
		if err != nil {
			return err
		}
		cfg.RegionsFile = regionsPath
		cfg.DomainsFile = domainsPath
		if err := config.Save(cfg); err != nil {
			return err
		}
		printOK("", fmt.Sprintf("Config written: %s", cfgPath))
	} else {
		printSkip("", fmt.Sprintf("Config already exists: %s", cfgPath))
	}

	// ── 4. Embeddings secrets template ────────────────────────────────────────
	if err := config.EnsureDotEnvTemplate(); err != nil {
		return err
	}
	if p, err := config.DotEnvPath(); err == nil {
		printInfo("", fmt.Sprintf("Embeddings settings: %s", p))
	}

	// ── 5. Check the catalog ──────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	printBullet("Catalog:")
	entries, err := catalog.Load(cfg.CatalogPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		printMiss("", fmt.Sprintf("no catalog at %s; copy formations.json there", cfg.CatalogPath))
	case err != nil:
		printWarn("", err.Error())
	default:
		printOK("", fmt.Sprintf("%d programs in %s", len(entries), cfg.CatalogPath))
	}

	fmt.Println("\n✓  orient init complete. Run 'orient index' to enable semantic search.")
	return nil
}

// writeIfMissing writes data to path unless path already exists.
func writeIfMissing(path string, data []byte) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, fmt.Errorf("cannot write %s: %w", path, err)
	}
	return true, nil
}
