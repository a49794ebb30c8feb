package suite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeSuiteFiles creates a suite directory with a config.yaml and
// records.csv under dir.
func writeSuiteFiles(t *testing.T, dir, name, configYAML, recordsCSV string) {
	t.Helper()

	suiteDir := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(suiteDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(suiteDir, "config.yaml"), []byte(configYAML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(suiteDir, "records.csv"), []byte(recordsCSV), 0o644))
}
