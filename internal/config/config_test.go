package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "segwise.yaml")

	opts := Default()
	opts.IncludeInvestmentInSpend = true
	opts.UnresolvedTolerance = 0.01
	require.NoError(t, Save(path, opts))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, opts, loaded)
}

func TestLoad_DefaultsApply(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "segwise.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dense_grid: true\n"), 0o644))

	opts, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "eUSD", opts.ReportingCurrency)
	assert.True(t, opts.DenseGrid)
}

func TestLoad_BadTolerance(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "segwise.yaml")
	require.NoError(t, os.WriteFile(path, []byte("unresolved_tolerance: 2.5\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unresolved_tolerance")
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
