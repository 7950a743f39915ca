package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func TestParseDefaults(t *testing.T) {
	c, err := Parse([]byte(""))
	require.NoError(t, err)
	assert.Equal(t, DefaultAddr, c.Addr)
	assert.Equal(t, DefaultLevelsDir, c.LevelsDir)
	assert.Equal(t, DefaultAssetsDir, c.AssetsDir)
	assert.Equal(t, UTF8, c.Encoding)
	assert.Equal(t, DefaultMaxCells, c.MaxCells)
	assert.Equal(t, DefaultWorkers, c.Workers)
	assert.True(t, c.WatchEnabled())
}

func TestParseValues(t *testing.T) {
	c, err := Parse([]byte(`
addr: "127.0.0.1:9000"
levels_dir: data/levels
encoding: Windows 1252
max_cells: 4096
watch: false
`))
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", c.Addr)
	assert.Equal(t, "data/levels", c.LevelsDir)
	assert.Equal(t, DefaultAssetsDir, c.AssetsDir)
	assert.Equal(t, 4096, c.MaxCells)
	assert.False(t, c.WatchEnabled())
}

func TestParseRejects(t *testing.T) {
	for name, doc := range map[string]string{
		"unknown field":    "levels: x\n",
		"unknown encoding": "encoding: Klingon\n",
		"negative workers": "workers: -2\n",
		"not yaml":         "addr: [\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glevel.yaml")
	c := Default()
	c.Encoding = "ISO 8859-1"
	require.NoError(t, c.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, c, loaded)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestEncodingSelection(t *testing.T) {
	defer SetEncoding(UTF8)
	defer SetMaxCells(0)

	cm, err := FindEncoding("windows 1252")
	require.NoError(t, err)
	assert.Equal(t, charmap.Windows1252, cm)

	c := Default()
	c.Encoding = "Windows 1251"
	c.MaxCells = 100
	require.NoError(t, c.Apply())
	assert.Equal(t, charmap.Windows1251, GetEncoding())
	assert.Equal(t, 100, GetMaxCells())

	require.NoError(t, SetEncoding(""))
	assert.Nil(t, GetEncoding())
	assert.Error(t, SetEncoding("nope"))
	assert.Contains(t, ListEncodings(), UTF8)
}
