package pack

import (
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/mogaika/glevel_browser/utils"
	"github.com/mogaika/glevel_browser/vfs"
)

type FileLoader func(src utils.ResourceSource, r *io.SectionReader) (interface{}, error)

var gHandlers map[string]FileLoader = make(map[string]FileLoader, 0)

func SetHandler(format string, ldr FileLoader) {
	gHandlers[strings.ToUpper(format)] = ldr
}

func HasHandler(fileName string) bool {
	_, found := gHandlers[strings.ToUpper(filepath.Ext(fileName))]
	return found
}

func Extensions() []string {
	exts := make([]string, 0, len(gHandlers))
	for ext := range gHandlers {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

func CallHandler(s utils.ResourceSource, r *io.SectionReader) (interface{}, error) {
	ext := strings.ToUpper(filepath.Ext(s.Name()))

	if h, found := gHandlers[ext]; found {
		return h(s, r)
	} else {
		return nil, errors.Errorf("[pack] Cannot find handler for '%s' extension", ext)
	}
}

type PackResSrc struct {
	pf vfs.File
	d  vfs.Directory
}

func (s *PackResSrc) Name() string {
	return s.pf.Name()
}

func (s *PackResSrc) Size() int64 {
	return s.pf.Size()
}

func (s *PackResSrc) Save(in *io.SectionReader) error {
	if f, err := vfs.DirectoryGetFile(s.d, s.pf.Name()); err != nil {
		return errors.Wrapf(err, "[pack] Cannot get file '%s'", s.pf.Name())
	} else {
		return vfs.OpenFileAndCopy(f, in)
	}
}

// GetInstanceHandler opens fileName in d and runs the loader registered for
// its extension. Loader errors are returned unwrapped so callers can inspect
// them with errors.As.
func GetInstanceHandler(d vfs.Directory, fileName string) (interface{}, error) {
	f, err := vfs.DirectoryGetFile(d, fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "[pack] Cannot get file '%s'", fileName)
	}

	r, err := vfs.OpenFileAndGetReader(f, true)
	if err != nil {
		return nil, errors.Wrapf(err, "[pack] Cannot get instance of '%s'", fileName)
	}
	defer f.Close()

	return CallHandler(&PackResSrc{d: d, pf: f}, r)
}
