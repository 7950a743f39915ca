package vfs

import (
	"io"
	"io/ioutil"
	"path"
	"strings"

	"github.com/pkg/errors"
)

var ErrBadPath = errors.New("path escapes directory")

func OpenFileAndGetReader(f File, readonly bool) (*io.SectionReader, error) {
	if err := f.Open(readonly); err != nil {
		return nil, errors.Wrapf(err, "Cannot open file '%s'", f.Name())
	}
	r, err := f.Reader()
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "Cannot get file '%s' reader", f.Name())
	}
	return r, nil
}

func OpenFileAndCopy(f File, src io.Reader) error {
	if err := f.Open(false); err != nil {
		return errors.Wrapf(err, "Cannot open file '%s'", f.Name())
	}
	defer f.Close()
	if err := f.Copy(src); err != nil {
		return errors.Wrapf(err, "Cannot copy data to file '%s'", f.Name())
	}
	return nil
}

func DirectoryGetFile(d Directory, name string) (File, error) {
	e, err := d.GetElement(name)
	if err != nil {
		return nil, errors.Wrapf(err, "Cannot open file '%s'", name)
	}
	if e.IsDirectory() {
		return nil, errors.Errorf("File '%s' is directory, not a file!", name)
	}
	return e.(File), nil
}

func ReadFile(d Directory, name string) ([]byte, error) {
	f, err := DirectoryGetFile(d, name)
	if err != nil {
		return nil, err
	}
	r, err := OpenFileAndGetReader(f, true)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ioutil.ReadAll(r)
}

// ListByExt lists the files of d whose extension matches ext, case insensitive.
func ListByExt(d Directory, ext string) ([]string, error) {
	names, err := d.List()
	if err != nil {
		return nil, err
	}
	result := make([]string, 0, len(names))
	for _, name := range names {
		if strings.EqualFold(path.Ext(name), ext) {
			result = append(result, name)
		}
	}
	return result, nil
}

// Resolve walks a slash separated path relative to d, e.g. "tiles/grass.png".
func Resolve(d Directory, slashPath string) (Element, error) {
	clean := path.Clean(strings.ReplaceAll(slashPath, "\\", "/"))
	if slashPath == "" || path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
		return nil, errors.Wrapf(ErrBadPath, "%q", slashPath)
	}

	parts := strings.Split(clean, "/")
	cur := d
	for i, part := range parts {
		e, err := cur.GetElement(part)
		if err != nil {
			return nil, errors.Wrapf(err, "Cannot resolve %q", slashPath)
		}
		if i == len(parts)-1 {
			return e, nil
		}
		dir, ok := e.(Directory)
		if !ok {
			return nil, errors.Errorf("Cannot resolve %q: '%s' is not a directory", slashPath, part)
		}
		cur = dir
	}
	return cur, nil
}

func checkName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, "/\\") {
		return errors.Wrapf(ErrBadPath, "%q", name)
	}
	return nil
}
