package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoad_RoundTrip(t *testing.T) {
	withHome(t)
	cfg, err := DefaultConfig()
	require.NoError(t, err)
	cfg.TopK = 5
	cfg.SearchTimeout = 2 * time.Second
	require.NoError(t, Save(cfg))

	got, err := Load()
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestLoad_PartialFileKeepsDefaultsAndExpandsTilde(t *testing.T) {
	dir := withHome(t)
	body := "catalog_path: ~/corpus/formations.jsonl\nsearch_timeout: 5s\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "orient.yaml"), []byte(body), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	home, _ := os.UserHomeDir()
	assert.Equal(t, filepath.Join(home, "corpus", "formations.jsonl"), cfg.CatalogPath)
	assert.Equal(t, 5*time.Second, cfg.SearchTimeout)
	assert.Equal(t, 8, cfg.TopK)
	assert.Equal(t, 12, cfg.OverFetchFactor)
}

func TestLoad_Errors(t *testing.T) {
	dir := withHome(t)
	_, err := Load()
	require.Error(t, err, "missing file")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "orient.yaml"), []byte("top_k: [\n"), 0o644))
	_, err = Load()
	require.Error(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "orient.yaml"), []byte("top_k: -1\n"), 0o644))
	_, err = Load()
	require.Error(t, err)
}
