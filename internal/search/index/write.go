package index

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"

	"github.com/kamusis/orient-cli/internal/catalog"
)

// Write writes index artifacts to dir.
func Write(dir string, manifest Manifest, rows []EntryRow, vectors []float32) error {
	if manifest.Dim <= 0 {
		return fmt.Errorf("invalid dim: %d", manifest.Dim)
	}
	if len(rows) == 0 {
		return fmt.Errorf("no entries to write")
	}
	if len(vectors) != len(rows)*manifest.Dim {
		return fmt.Errorf("vector length mismatch: got %d want %d", len(vectors), len(rows)*manifest.Dim)
	}
	if manifest.VectorFile == "" {
		manifest.VectorFile = "vectors.f32"
	}
	if manifest.EntriesFile == "" {
		manifest.EntriesFile = "entries.jsonl"
	}
	if manifest.CreatedAt == "" {
		manifest.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create index dir %s: %w", dir, err)
	}

	// manifest
	mb, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "index_manifest.json"), mb, 0o644); err != nil {
		return fmt.Errorf("cannot write manifest: %w", err)
	}

	// entries jsonl
	ef, err := os.Create(filepath.Join(dir, manifest.EntriesFile))
	if err != nil {
		return fmt.Errorf("cannot create entries file: %w", err)
	}
	bw := bufio.NewWriter(ef)
	for _, r := range rows {
		line, err := marshalRow(r)
		if err != nil {
			_ = ef.Close()
			return err
		}
		if _, err := bw.Write(line); err != nil {
			_ = ef.Close()
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			_ = ef.Close()
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		_ = ef.Close()
		return err
	}
	if err := ef.Close(); err != nil {
		return err
	}

	// vectors
	vf, err := os.Create(filepath.Join(dir, manifest.VectorFile))
	if err != nil {
		return fmt.Errorf("cannot create vectors file: %w", err)
	}
	if err := binary.Write(vf, binary.LittleEndian, vectors); err != nil {
		_ = vf.Close()
		return fmt.Errorf("cannot write vectors: %w", err)
	}
	return vf.Close()
}

func marshalRow(r EntryRow) ([]byte, error) {
	eb, err := catalog.MarshalLine(r.Entry)
	if err != nil {
		return nil, err
	}
	return json.Marshal(rowLine{ID: r.ID, TextHash: r.TextHash, UpdatedAt: r.UpdatedAt, Entry: eb})
}

// EntryToRow converts a catalog entry to an EntryRow for index writing.
func EntryToRow(e catalog.Entry, textHash string) EntryRow {
	return EntryRow{
		ID:        e.ID(),
		TextHash:  textHash,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
		Entry:     e,
	}
}
