package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/maartenpaul/foci-annotator/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, 5, cfg.Search.Radius)
	require.Equal(t, "foci.db", cfg.DB.Path)
	require.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
stack:
  dir: /data/seq01
search:
  radius: 8
omero:
  url: https://omero.example.org
  image_id: 42
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	t.Setenv("FOCI_CONFIG_PATH", path)

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, "/data/seq01", cfg.Stack.Dir)
	require.Equal(t, 8, cfg.Search.Radius)
	require.Equal(t, "https://omero.example.org", cfg.OMERO.URL)
	require.Equal(t, int64(42), cfg.OMERO.ImageID)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("search:\n  radius: 8\n"), 0o644))
	t.Setenv("FOCI_CONFIG_PATH", path)
	t.Setenv("FOCI_SEARCH_RADIUS", "3")
	t.Setenv("FOCI_DB_PATH", "/tmp/other.db")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, 3, cfg.Search.Radius)
	require.Equal(t, "/tmp/other.db", cfg.DB.Path)
}

func TestLoad_RejectsBadRadius(t *testing.T) {
	t.Setenv("FOCI_SEARCH_RADIUS", "0")

	_, err := config.Load()
	require.Error(t, err)
}

func TestLoad_RejectsUnparsableEnv(t *testing.T) {
	t.Setenv("FOCI_OMERO_IMAGE_ID", "not-a-number")

	_, err := config.Load()
	require.Error(t, err)
}
