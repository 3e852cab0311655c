package index

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamusis/orient-cli/internal/catalog"
)

func TestLoad_IndexHappyPath(t *testing.T) {
	dir := t.TempDir()
	m := Manifest{
		IndexVersion: 1,
		CreatedAt:    "2026-01-01T00:00:00Z",
		ModelID:      "openai:test",
		Dim:          2,
		Normalize:    true,
		VectorFile:   "vectors.f32",
		EntriesFile:  "entries.jsonl",
	}
	mb, _ := json.Marshal(m)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index_manifest.json"), mb, 0o644))

	rows := []EntryRow{
		{ID: "a", TextHash: "ha", Entry: catalog.Entry{Name: "Licence Droit", Institution: "Universite de Lyon", City: "Lyon", Category: catalog.CategoryLicence}},
		{ID: "b", TextHash: "hb", Entry: catalog.Entry{Name: "Master Droit", Institution: "Universite de Lyon", City: "Lyon", Category: catalog.CategoryMaster}},
	}
	var lines []byte
	for _, r := range rows {
		b, err := marshalRow(r)
		require.NoError(t, err)
		lines = append(lines, b...)
		lines = append(lines, '\n')
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "entries.jsonl"), lines, 0o644))

	vecFile, err := os.Create(filepath.Join(dir, "vectors.f32"))
	require.NoError(t, err)
	require.NoError(t, binary.Write(vecFile, binary.LittleEndian, []float32{1, 0, 0, 1}))
	require.NoError(t, vecFile.Close())

	idx, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, idx.Manifest.Dim)
	require.Len(t, idx.Rows, 2)
	assert.Equal(t, "Master Droit", idx.Rows[1].Entry.Name)
	assert.Equal(t, catalog.CategoryMaster, idx.Rows[1].Entry.Category)
	assert.Len(t, idx.Vectors, 4)
}

func TestLoad_VectorSizeMismatch(t *testing.T) {
	dir := t.TempDir()
	e := catalog.Entry{Name: "BTS SIO", Institution: "Lycee Ampere", City: "Lyon", Category: catalog.CategoryBTS}
	require.NoError(t, Write(dir, Manifest{Dim: 2}, []EntryRow{EntryToRow(e, "h")}, []float32{1, 0}))

	// Truncate the vector file behind the manifest's back.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vectors.f32"), []byte{0, 0, 0, 0}, 0o644))
	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "size mismatch")
}

func TestWrite_RejectsInconsistentVectors(t *testing.T) {
	e := catalog.Entry{Name: "BTS SIO", Institution: "Lycee Ampere", City: "Lyon"}
	err := Write(t.TempDir(), Manifest{Dim: 3}, []EntryRow{EntryToRow(e, "h")}, []float32{1, 0})
	require.Error(t, err)
}
