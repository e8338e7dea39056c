package proconapi

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JonasBM/procon-itajai-simplificado-api/storage"
)

// newTestAPI returns a ProconAPI over a throwaway SQLite database
func newTestAPI(t *testing.T) (*ProconAPI, *storage.Storage) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewStorage(
		storage.Config{
			Driver:   storage.DriverSQLite,
			DataDir:  dir,
			MediaDir: filepath.Join(dir, "media"),
		},
	)
	require.NoError(t, err)
	return NewProconAPI(ServerConf{Port: 8080}, store.Backends(), store.Blobs()), store
}
