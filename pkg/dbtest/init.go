package dbtest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	fixtures "github.com/aquasecurity/bolt-fixtures"
	"github.com/aquasecurity/updateinfo-db/pkg/db"
)

// InitDB loads the YAML fixtures into a fresh bolt file under a temp cache dir and opens it.
// The caller closes it with db.Close.
func InitDB(t *testing.T, fixtureFiles []string) string {
	t.Helper()

	cacheDir := t.TempDir()
	dbPath := db.Path(cacheDir)
	require.NoError(t, os.MkdirAll(filepath.Dir(dbPath), 0700))

	loader, err := fixtures.New(dbPath, fixtureFiles)
	require.NoError(t, err)
	require.NoError(t, loader.Load())
	require.NoError(t, loader.Close())

	require.NoError(t, db.Init(cacheDir))

	return cacheDir
}
