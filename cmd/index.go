package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kamusis/orient-cli/internal/catalog"
	searchindex "github.com/kamusis/orient-cli/internal/search/index"
)

var flagIndexForce bool

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build or update the semantic index of the program catalog",
	Long: `Embed every catalog program and write the semantic index to index_dir.

Programs whose text did not change since the previous build keep their
vector. The new index is built in a temporary directory and swapped in
atomically; concurrent builds are serialized by a lock file.`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&flagIndexForce, "force", false, "Re-embed every program even if unchanged")
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	prov, err := newProvider()
	if err != nil {
		return err
	}
	entries, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return err
	}

	release, err := searchindex.AcquireBuildLock(cfg.IndexDir, 30*time.Second)
	defer release()
	if err != nil {
		return err
	}

	tmpBase := filepath.Join(filepath.Dir(cfg.IndexDir), "tmp")
	if err := os.MkdirAll(tmpBase, 0o755); err != nil {
		return fmt.Errorf("cannot create temp dir %s: %w", tmpBase, err)
	}
	tmpDir, err := os.MkdirTemp(tmpBase, "search-index-*")
	if err != nil {
		return fmt.Errorf("cannot create temp index dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
	defer cancel()

	printInfo("", fmt.Sprintf("indexing %d programs using %s", len(entries), prov.ModelID()))
	start := time.Now()
	idx, err := searchindex.Build(ctx, prov, entries, searchindex.BuildOptions{
		PrevDir:   cfg.IndexDir,
		OutDir:    tmpDir,
		Force:     flagIndexForce,
		Normalize: true,
	})
	if err != nil {
		return fmt.Errorf("index build failed: %w", err)
	}
	if err := searchindex.AtomicSwap(tmpDir, cfg.IndexDir); err != nil {
		return fmt.Errorf("cannot install index: %w", err)
	}
	logger.Info("index built",
		zap.Int("rows", len(idx.Rows)),
		zap.Int("dim", idx.Manifest.Dim),
		zap.Duration("took", time.Since(start)),
	)
	printOK("", fmt.Sprintf("semantic index written: %s (%d programs)", cfg.IndexDir, len(idx.Rows)))
	return nil
}
