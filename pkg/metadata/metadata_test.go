package metadata_test

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquasecurity/updateinfo-db/pkg/metadata"
)

func TestClient(t *testing.T) {
	fs := afero.NewMemMapFs()
	c := metadata.NewClient(fs, "/cache/db")

	_, err := c.Get()
	require.Error(t, err)

	want := metadata.Metadata{
		Version:    1,
		Source:     "updateinfo.xml",
		Advisories: 3,
		UpdatedAt:  time.Date(2022, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, c.Update(want))

	exists, err := afero.Exists(fs, metadata.Path("/cache/db"))
	require.NoError(t, err)
	assert.True(t, exists)

	got, err := c.Get()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	require.NoError(t, c.Delete())
	assert.Error(t, c.Delete())
}

func TestClient_Get_Broken(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/cache/db/metadata.json", []byte("{"), 0o644))

	_, err := metadata.NewClient(fs, "/cache/db").Get()
	assert.ErrorContains(t, err, "json decode error")
}

func TestClient_Update_ReadOnly(t *testing.T) {
	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	err := metadata.NewClient(fs, "/cache/db").Update(metadata.Metadata{Version: 1})
	assert.Error(t, err)
}
