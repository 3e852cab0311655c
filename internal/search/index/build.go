package index

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kamusis/orient-cli/internal/catalog"
	"github.com/kamusis/orient-cli/internal/embeddings"
)

// BuildOptions controls index building.
type BuildOptions struct {
	// PrevDir holds a previously built index whose vectors may be reused.
	PrevDir   string
	OutDir    string
	Force     bool
	Normalize bool
}

// Build embeds entries and writes a semantic index to opts.OutDir.
//
// The build is incremental when a loadable index exists in opts.PrevDir
// (unless Force is true): rows whose canonical text hash is unchanged keep
// their vector. Row order follows the catalog order, which is the tie-break
// order of search results.
func Build(ctx context.Context, prov embeddings.Provider, entries []catalog.Entry, opts BuildOptions) (*Index, error) {
	if opts.OutDir == "" {
		return nil, fmt.Errorf("out dir is required")
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("catalog is empty")
	}

	reuse := map[string][]float32{}
	if opts.PrevDir != "" && !opts.Force {
		if old, err := Load(opts.PrevDir); err == nil && old.Manifest.ModelID == prov.ModelID() && old.Manifest.Normalize == opts.Normalize {
			for i, r := range old.Rows {
				start := i * old.Manifest.Dim
				end := start + old.Manifest.Dim
				if r.TextHash == "" || end > len(old.Vectors) {
					continue
				}
				v := make([]float32, old.Manifest.Dim)
				copy(v, old.Vectors[start:end])
				reuse[r.ID+"/"+r.TextHash] = v
			}
		}
	}

	var (
		rows    []EntryRow
		vectors []float32
		hashes  []string
		dim     int
	)

	for _, e := range entries {
		text := catalog.CanonicalText(e)
		h := catalog.TextHash(text)
		hashes = append(hashes, h)

		if v, ok := reuse[e.ID()+"/"+h]; ok && (dim == 0 || len(v) == dim) {
			if dim == 0 {
				dim = len(v)
			}
			rows = append(rows, EntryToRow(e, h))
			vectors = append(vectors, v...)
			continue
		}

		emb, err := prov.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		if dim == 0 {
			dim = len(emb)
		}
		if len(emb) != dim {
			return nil, fmt.Errorf("embedding dim changed mid-run: got %d want %d", len(emb), dim)
		}
		if opts.Normalize {
			emb = unitLength(emb)
		}

		rows = append(rows, EntryToRow(e, h))
		vectors = append(vectors, emb...)
	}

	manifest := Manifest{
		IndexVersion: 1,
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
		CatalogHash:  catalog.TextHash(strings.Join(hashes, "\n")),
		ModelID:      prov.ModelID(),
		Dim:          dim,
		Normalize:    opts.Normalize,
		VectorFile:   "vectors.f32",
		EntriesFile:  "entries.jsonl",
	}

	if err := Write(opts.OutDir, manifest, rows, vectors); err != nil {
		return nil, err
	}
	return &Index{Manifest: manifest, Rows: rows, Vectors: vectors}, nil
}

// AtomicSwap replaces destDir with srcDir by renaming.
func AtomicSwap(srcDir, destDir string) error {
	parent := filepath.Dir(destDir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return err
	}
	backup := destDir + ".bak"
	_ = os.RemoveAll(backup)
	if _, err := os.Stat(destDir); err == nil {
		if err := os.Rename(destDir, backup); err != nil {
			return err
		}
	}
	if err := os.Rename(srcDir, destDir); err != nil {
		// rollback best-effort
		if _, stErr := os.Stat(backup); stErr == nil {
			_ = os.Rename(backup, destDir)
		}
		return err
	}
	_ = os.RemoveAll(backup)
	return nil
}
