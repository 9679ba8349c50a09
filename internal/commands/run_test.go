package commands

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/segwise-dev/segwise/internal/export"
	"github.com/segwise-dev/segwise/internal/ledger"
)

const testLedger = `user_id,timestamp,activity_type,side,amount,status,currency
u1,2025-01-05T10:00:00Z,fiat_deposit,credit,50,settled,eUSD
u1,2025-01-10T10:00:00Z,card,hold_captured,20,settled,eUSD
u2,2025-02-03T10:00:00Z,fiat_deposit,credit,150,settled,eUSD
`

func writeFixtures(t *testing.T) (txPath, rulesPath string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, runInit(dir))

	txPath = filepath.Join(dir, "transactions.csv")
	require.NoError(t, os.WriteFile(txPath, []byte(testLedger), 0o644))
	return txPath, filepath.Join(dir, "rules.csv")
}

func TestRunPipeline_EndToEnd(t *testing.T) {
	txPath, rulesPath := writeFixtures(t)

	txns, err := ledger.LoadFile(txPath)
	require.NoError(t, err)
	assert.Len(t, txns, 3)

	res, err := runPipeline(txPath, rulesPath, "")
	require.NoError(t, err)

	// u1 spans jan+feb via carry-forward, u2 appears in feb only
	assert.Len(t, res.Segments, 3)
	assert.NotEmpty(t, res.Metrics)
	assert.Equal(t, 3, res.Diagnostics.SettledRows)
}

func TestRunPipeline_ExportedTables(t *testing.T) {
	txPath, rulesPath := writeFixtures(t)

	res, err := runPipeline(txPath, rulesPath, "")
	require.NoError(t, err)

	outDir := t.TempDir()
	require.NoError(t, export.Results(outDir, res))

	data, err := os.ReadFile(filepath.Join(outDir, "user_segments.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	assert.Len(t, lines, 4) // header + 3 user-months
}

func TestRunPipeline_MissingFile(t *testing.T) {
	_, rulesPath := writeFixtures(t)
	_, err := runPipeline("nope.csv", rulesPath, "")
	assert.Error(t, err)
}
