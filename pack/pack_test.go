package pack

import (
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mogaika/glevel_browser/utils"
	"github.com/mogaika/glevel_browser/vfs"
)

var errEcho = errors.New("echo refused")

func init() {
	SetHandler(".echo", func(src utils.ResourceSource, r *io.SectionReader) (interface{}, error) {
		data, err := ioutil.ReadAll(r)
		if err != nil {
			return nil, err
		}
		if string(data) == "refuse" {
			return nil, errEcho
		}
		return string(data), nil
	})
}

func TestRegistry(t *testing.T) {
	assert.True(t, HasHandler("a.echo"))
	assert.True(t, HasHandler("A.ECHO"))
	assert.False(t, HasHandler("a.none"))
	assert.Contains(t, Extensions(), ".ECHO")
}

func TestCallHandler(t *testing.T) {
	src := utils.NewBytesSource("x.Echo", []byte("hello"))
	v, err := CallHandler(src, src.Reader())
	require.NoError(t, err)
	assert.Equal(t, "hello", v)

	src = utils.NewBytesSource("x.bin", []byte("hello"))
	_, err = CallHandler(src, src.Reader())
	assert.Error(t, err)
}

func TestGetInstanceHandler(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.echo"), []byte("from disk"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.echo"), []byte("refuse"), 0644))
	d := vfs.NewDirectoryDriver(dir)

	v, err := GetInstanceHandler(d, "a.echo")
	require.NoError(t, err)
	assert.Equal(t, "from disk", v)

	_, err = GetInstanceHandler(d, "b.echo")
	assert.True(t, errors.Is(err, errEcho))

	_, err = GetInstanceHandler(d, "c.echo")
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestPackResSrcSave(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.echo"), []byte("old"), 0644))
	d := vfs.NewDirectoryDriver(dir)
	f, err := vfs.DirectoryGetFile(d, "a.echo")
	require.NoError(t, err)

	src := &PackResSrc{pf: f, d: d}
	in := utils.NewBytesSource("new", []byte("new data"))
	require.NoError(t, src.Save(in.Reader()))

	data, err := os.ReadFile(filepath.Join(dir, "a.echo"))
	require.NoError(t, err)
	assert.Equal(t, "new data", string(data))
}
