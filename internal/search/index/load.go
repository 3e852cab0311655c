package index

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"

	"github.com/kamusis/orient-cli/internal/catalog"
)

// rowLine is the JSONL shape of an EntryRow: bookkeeping plus the catalog record.
type rowLine struct {
	ID        string          `json:"id"`
	TextHash  string          `json:"text_hash"`
	UpdatedAt string          `json:"updated_at"`
	Entry     json.RawMessage `json:"entry"`
}

// Load reads an index from dir containing manifest + entries + vectors.
func Load(dir string) (*Index, error) {
	manifestPath := filepath.Join(dir, "index_manifest.json")
	b, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("cannot read manifest %s: %w", manifestPath, err)
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("invalid manifest JSON %s: %w", manifestPath, err)
	}
	if m.Dim <= 0 {
		return nil, fmt.Errorf("invalid dim in manifest: %d", m.Dim)
	}
	if m.VectorFile == "" {
		m.VectorFile = "vectors.f32"
	}
	if m.EntriesFile == "" {
		m.EntriesFile = "entries.jsonl"
	}

	rows, err := loadRows(filepath.Join(dir, m.EntriesFile))
	if err != nil {
		return nil, err
	}
	vectors, err := loadVectors(filepath.Join(dir, m.VectorFile), len(rows), m.Dim)
	if err != nil {
		return nil, err
	}

	return &Index{Manifest: m, Rows: rows, Vectors: vectors}, nil
}

func loadRows(path string) ([]EntryRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open entries file %s: %w", path, err)
	}
	defer f.Close()

	var out []EntryRow
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4<<20)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rl rowLine
		if err := json.Unmarshal(line, &rl); err != nil {
			return nil, fmt.Errorf("invalid entries JSONL %s: %w", path, err)
		}
		e, err := catalog.UnmarshalLine(rl.Entry)
		if err != nil {
			return nil, fmt.Errorf("invalid entry in %s: %w", path, err)
		}
		out = append(out, EntryRow{ID: rl.ID, TextHash: rl.TextHash, UpdatedAt: rl.UpdatedAt, Entry: e})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read entries file %s: %w", path, err)
	}
	return out, nil
}

func loadVectors(path string, nRows, dim int) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open vector file %s: %w", path, err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("cannot stat vector file %s: %w", path, err)
	}
	if st.Size()%4 != 0 {
		return nil, fmt.Errorf("vector file size is not multiple of 4 bytes: %d", st.Size())
	}

	expected := int64(nRows * dim * 4)
	if expected != st.Size() {
		return nil, fmt.Errorf("vector file size mismatch: got %d want %d (entries=%d dim=%d)", st.Size(), expected, nRows, dim)
	}

	out := make([]float32, nRows*dim)
	if err := binary.Read(io.LimitReader(f, expected), binary.LittleEndian, out); err != nil {
		return nil, fmt.Errorf("cannot read vectors from %s: %w", path, err)
	}
	return out, nil
}
