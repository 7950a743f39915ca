package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mogaika/glevel_browser/assets"
	"github.com/mogaika/glevel_browser/vfs"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, data := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(data), 0644))
	}
}

func newChecker(t *testing.T) (*checker, *bytes.Buffer) {
	levels := t.TempDir()
	writeFiles(t, levels, map[string]string{
		"a.glevel":  "A\n1x1\n\nW\nW,texture=tiles/w.png\n",
		"b.glevel":  "B\n2x1\n\nW|?\nW,\n",
		"c.glevel":  "C\n2x1\n\nW\nW,\n",
		"notes.txt": "not a level",
	})
	var out bytes.Buffer
	return &checker{levels: vfs.NewDirectoryDriver(levels), out: &out}, &out
}

func TestCheckLenient(t *testing.T) {
	c, out := newChecker(t)
	failed, err := c.run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, failed)
	assert.Contains(t, out.String(), "c.glevel: glevel: line 4: tile count mismatch")
	assert.Contains(t, out.String(), `b.glevel:4:1: warning: unresolved-tile "?"`)
	assert.Contains(t, out.String(), "3 levels, 1 failed")
}

func TestCheckStrictWithAssets(t *testing.T) {
	c, out := newChecker(t)
	c.strict = true
	c.dump = true
	c.resolver = assets.NewResolver(vfs.NewDirectoryDriver(t.TempDir()), 2)

	failed, err := c.run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, failed)
	assert.Contains(t, out.String(), `a.glevel: missing asset "tiles/w.png"`)
	assert.Contains(t, out.String(), "glevel.Level")
}

func TestCheckAssetsFound(t *testing.T) {
	c, out := newChecker(t)
	assetDir := t.TempDir()
	writeFiles(t, assetDir, map[string]string{"tiles/w.png": "png"})
	c.resolver = assets.NewResolver(vfs.NewDirectoryDriver(assetDir), 2)

	ok, err := c.check(context.Background(), "a.glevel")
	require.NoError(t, err)
	assert.True(t, ok, out.String())
	assert.Contains(t, out.String(), "a.glevel: ok, 1x1x1, 1 blocks")
}
