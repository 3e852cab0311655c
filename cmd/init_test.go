package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kamusis/orient-cli/internal/config"
)

func TestInitWritesConfigAndTables(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	if err := runInit(nil, nil); err != nil {
		t.Fatalf("runInit: %v", err)
	}

	for _, rel := range []string{"orient.yaml", ".env", "data/regions.yaml", "data/domains.yaml"} {
		if _, err := os.Stat(filepath.Join(home, ".orient", rel)); err != nil {
			t.Errorf("%s not written: %v", rel, err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.RegionsFile != filepath.Join(home, ".orient", "data", "regions.yaml") {
		t.Errorf("regions_file = %s", cfg.RegionsFile)
	}

	// A second run keeps user edits.
	edited := []byte("version: 1\nregions: []\n")
	if err := os.WriteFile(cfg.RegionsFile, edited, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := runInit(nil, nil); err != nil {
		t.Fatalf("second runInit: %v", err)
	}
	got, err := os.ReadFile(cfg.RegionsFile)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(edited) {
		t.Errorf("regions.yaml overwritten:\n%s", got)
	}
}
