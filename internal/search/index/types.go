package index

import "github.com/kamusis/orient-cli/internal/catalog"

// Manifest describes a semantic index and how to interpret it.
type Manifest struct {
	IndexVersion int    `json:"index_version"`
	CreatedAt    string `json:"created_at"`
	CatalogHash  string `json:"catalog_hash"`
	ModelID      string `json:"model_id"`
	Dim          int    `json:"dim"`
	Normalize    bool   `json:"normalize"`
	VectorFile   string `json:"vector_file"`
	EntriesFile  string `json:"entries_file"`
}

// EntryRow represents one program row in entries.jsonl.
type EntryRow struct {
	ID        string        `json:"id"`
	TextHash  string        `json:"text_hash"`
	UpdatedAt string        `json:"updated_at"`
	Entry     catalog.Entry `json:"-"`
}

// Index is a loaded semantic index. Row i owns Vectors[i*Dim:(i+1)*Dim].
type Index struct {
	Manifest Manifest
	Rows     []EntryRow
	Vectors  []float32
}

// Candidate is one search hit. Lower distance is closer.
type Candidate struct {
	Entry    catalog.Entry
	Distance float64
}
