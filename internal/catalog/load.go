package catalog

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strings"

	json "github.com/goccy/go-json"
)

// record is the on-disk shape of a program, as produced by the ingestion
// scripts (French field names).
type record struct {
	Name        string   `json:"nom"`
	Institution string   `json:"etablissement"`
	City        string   `json:"ville"`
	Region      string   `json:"region,omitempty"`
	Operator    string   `json:"type_etablissement,omitempty"`
	Category    string   `json:"niveau_diplome"`
	Domain      string   `json:"domaine,omitempty"`
	Description string   `json:"description,omitempty"`
	Outcomes    []string `json:"debouches_metiers,omitempty"`
	Skills      []string `json:"competences_acquises,omitempty"`
	Selectivity string   `json:"selectivite,omitempty"`
	Modality    string   `json:"modalite,omitempty"`
	Duration    string   `json:"duree,omitempty"`
	URL         string   `json:"url,omitempty"`
}

func (r record) toEntry() (Entry, error) {
	e := Entry{
		Name:        strings.TrimSpace(r.Name),
		Institution: strings.TrimSpace(r.Institution),
		City:        strings.TrimSpace(r.City),
		Region:      strings.TrimSpace(r.Region),
		Category:    ParseCategory(r.Category),
		Domain:      strings.TrimSpace(r.Domain),
		Text:        strings.TrimSpace(r.Description),
		Outcomes:    trimAll(r.Outcomes),
		Skills:      trimAll(r.Skills),
		Operator:    ParseOperator(r.Operator),
		Selectivity: ParseSelectivity(r.Selectivity),
		Modality:    strings.TrimSpace(r.Modality),
		Duration:    strings.TrimSpace(r.Duration),
		URL:         strings.TrimSpace(r.URL),
	}
	switch {
	case e.Name == "":
		return Entry{}, fmt.Errorf("missing name")
	case e.Institution == "":
		return Entry{}, fmt.Errorf("missing institution for %q", e.Name)
	case e.City == "":
		return Entry{}, fmt.Errorf("missing city for %q", e.Name)
	}
	return e, nil
}

func fromEntry(e Entry) record {
	return record{
		Name:        e.Name,
		Institution: e.Institution,
		City:        e.City,
		Region:      e.Region,
		Operator:    string(e.Operator),
		Category:    string(e.Category),
		Domain:      e.Domain,
		Description: e.Text,
		Outcomes:    e.Outcomes,
		Skills:      e.Skills,
		Selectivity: string(e.Selectivity),
		Modality:    e.Modality,
		Duration:    e.Duration,
		URL:         e.URL,
	}
}

// Load reads a catalog file. Both a JSON array and JSON Lines are accepted.
func Load(path string) ([]Entry, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read catalog %s: %w", path, err)
	}
	entries, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog %s: %w", path, err)
	}
	return entries, nil
}

// Parse decodes catalog bytes (JSON array or JSON Lines).
func Parse(b []byte) ([]Entry, error) {
	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 {
		return []Entry{}, nil
	}
	if trimmed[0] == '[' {
		var recs []record
		if err := json.Unmarshal(trimmed, &recs); err != nil {
			return nil, err
		}
		out := make([]Entry, 0, len(recs))
		for i, r := range recs {
			e, err := r.toEntry()
			if err != nil {
				return nil, fmt.Errorf("record %d: %w", i, err)
			}
			out = append(out, e)
		}
		return out, nil
	}

	var out []Entry
	scanner := bufio.NewScanner(bytes.NewReader(trimmed))
	scanner.Buffer(make([]byte, 0, 64*1024), 4<<20)
	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		var r record
		if err := json.Unmarshal(raw, &r); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		e, err := r.toEntry()
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// MarshalLine encodes e as one JSON line in the catalog record shape.
func MarshalLine(e Entry) ([]byte, error) {
	return json.Marshal(fromEntry(e))
}

// UnmarshalLine decodes one JSON line produced by MarshalLine.
func UnmarshalLine(b []byte) (Entry, error) {
	var r record
	if err := json.Unmarshal(b, &r); err != nil {
		return Entry{}, err
	}
	return r.toEntry()
}

func trimAll(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
