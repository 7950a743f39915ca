package vfs

import (
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
)

// DirectoryDriver exposes an OS directory. Child elements are created lazily
// by GetElement and carry the full path.
type DirectoryDriver struct {
	path string
}

func (dd *DirectoryDriver) Init(parent Directory) {}

func (dd *DirectoryDriver) Name() string {
	return filepath.Base(dd.path)
}

func (dd *DirectoryDriver) IsDirectory() bool {
	return true
}

func (dd *DirectoryDriver) List() ([]string, error) {
	entries, err := os.ReadDir(dd.path)
	if err != nil {
		return nil, errors.Wrapf(err, "Error getting directory '%s' info", dd.path)
	}
	result := make([]string, 0, len(entries))
	for _, e := range entries {
		result = append(result, e.Name())
	}
	sort.Strings(result)
	return result, nil
}

func (dd *DirectoryDriver) GetElement(name string) (Element, error) {
	if err := checkName(name); err != nil {
		return nil, err
	}
	newPath := filepath.Join(dd.path, name)
	s, err := os.Stat(newPath)
	if err != nil {
		return nil, errors.Wrapf(err, "Stat error")
	}
	var e Element
	if s.IsDir() {
		e = NewDirectoryDriver(newPath)
	} else {
		e = NewDirectoryDriverFile(newPath)
	}
	e.Init(dd)
	return e, nil
}

func (dd *DirectoryDriver) Add(e Element) error {
	if err := checkName(e.Name()); err != nil {
		return err
	}
	path := filepath.Join(dd.path, e.Name())
	if e.IsDirectory() {
		return os.Mkdir(path, os.ModePerm)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0666)
	if err != nil {
		return errors.Wrapf(err, "file '%s' creation failure", path)
	}
	e.Init(dd)
	return f.Close()
}

func (dd *DirectoryDriver) Remove(name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	return os.Remove(filepath.Join(dd.path, name))
}

func (dd *DirectoryDriver) Path() string {
	return dd.path
}

func NewDirectoryDriver(path string) *DirectoryDriver {
	return &DirectoryDriver{path: path}
}

type DirectoryDriverFile struct {
	path string
	f    *os.File
}

func NewDirectoryDriverFile(path string) *DirectoryDriverFile {
	return &DirectoryDriverFile{
		path: path,
	}
}

func (ddf *DirectoryDriverFile) Init(parent Directory) {
	if dd, ok := parent.(*DirectoryDriver); ok {
		ddf.path = filepath.Join(dd.path, filepath.Base(ddf.path))
	}
}

func (ddf *DirectoryDriverFile) Name() string {
	return filepath.Base(ddf.path)
}

func (ddf *DirectoryDriverFile) IsDirectory() bool {
	return false
}

func (ddf *DirectoryDriverFile) Size() int64 {
	if stat, err := os.Stat(ddf.path); err != nil {
		return 0
	} else {
		return stat.Size()
	}
}

func (ddf *DirectoryDriverFile) Open(readonly bool) error {
	if ddf.f != nil {
		return errors.Errorf("File '%s' already opened", ddf.path)
	}
	flags := os.O_RDWR
	if readonly {
		flags = os.O_RDONLY
	}
	f, err := os.OpenFile(ddf.path, flags, 0)
	if err != nil {
		return errors.Wrapf(err, "os.Open('%s')", ddf.path)
	}
	ddf.f = f
	return nil
}

func (ddf *DirectoryDriverFile) Close() error {
	if ddf.f != nil {
		err := ddf.f.Close()
		ddf.f = nil
		if err != nil {
			return errors.Wrapf(err, "os.File.Close()")
		}
	}
	return nil
}

func (ddf *DirectoryDriverFile) Reader() (*io.SectionReader, error) {
	if ddf.f == nil {
		return nil, errors.Errorf("First you need to open file")
	}
	return io.NewSectionReader(ddf.f, 0, ddf.Size()), nil
}

func (ddf *DirectoryDriverFile) ReadAt(b []byte, off int64) (n int, err error) {
	if ddf.f == nil {
		return 0, errors.Errorf("First you need to open file")
	}
	return ddf.f.ReadAt(b, off)
}

// Copy replaces the file content. The data goes to a temporary file first so
// a watcher never observes a half written level.
func (ddf *DirectoryDriverFile) Copy(src io.Reader) error {
	ddf.Close()

	tmp, err := os.CreateTemp(filepath.Dir(ddf.path), "."+filepath.Base(ddf.path)+".*")
	if err != nil {
		return errors.Wrapf(err, "os.CreateTemp('%s')", ddf.path)
	}
	defer os.Remove(tmp.Name())

	// CreateTemp makes the file owner only, keep the mode of the replaced file
	mode := os.FileMode(0644)
	if st, err := os.Stat(ddf.path); err == nil {
		mode = st.Mode().Perm()
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "os.File.Chmod(%v)", mode)
	}

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "io.Copy(...)")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "os.File.Close()")
	}
	return errors.Wrapf(os.Rename(tmp.Name(), ddf.path), "os.Rename('%s')", ddf.path)
}

func (ddf *DirectoryDriverFile) WriteAt(b []byte, off int64) (n int, err error) {
	if ddf.f == nil {
		return 0, errors.Errorf("First you need to open file")
	}
	return ddf.f.WriteAt(b, off)
}

func (ddf *DirectoryDriverFile) Sync() error {
	if ddf.f == nil {
		return errors.Errorf("First you need to open file")
	}
	return ddf.f.Sync()
}
