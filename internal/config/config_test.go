package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 10*time.Second, cfg.Feeds.RequestTimeout)
	assert.Equal(t, 500*time.Millisecond, cfg.Feeds.PoliteDelay)
	assert.Equal(t, 0.8, cfg.Plagiarism.SimilarityThreshold)
	assert.Contains(t, cfg.Feeds.CredibleDomains, "techcrunch.com")
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
feeds:
  concurrency: 2
  polite_delay: 2s
relevance:
  default_threshold: 0.15
`), 0o644))

	t.Setenv("CONTENTCORE_GEMINI_MODEL", "gemini-test")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Feeds.Concurrency)
	assert.Equal(t, 2*time.Second, cfg.Feeds.PoliteDelay)
	assert.InDelta(t, 0.15, cfg.Relevance.DefaultThreshold, 1e-9)
	assert.Equal(t, "gemini-test", cfg.Gemini.Model)
	assert.Equal(t, 10, cfg.Feeds.EntriesPerEndpoint)
}

func TestLoad_PoliteDelayFloor(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("feeds:\n  polite_delay: 10ms\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, MinPoliteDelay, cfg.Feeds.PoliteDelay)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate_RejectsBadThreshold(t *testing.T) {
	cfg := Defaults()
	cfg.Plagiarism.SimilarityThreshold = 1.5
	assert.Error(t, cfg.Validate())

	cfg = Defaults()
	cfg.Relevance.SustainabilityThreshold = -0.1
	assert.Error(t, cfg.Validate())

	cfg = Defaults()
	cfg.Feeds.Concurrency = 0
	assert.Error(t, cfg.Validate())
}
