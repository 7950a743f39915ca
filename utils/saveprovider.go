package utils

import (
	"bytes"
	"io"

	"github.com/pkg/errors"
)

type ResourceSource interface {
	Name() string
	Size() int64
	Save(in *io.SectionReader) error
}

// BytesSource is a ResourceSource over an in-memory buffer, used for data
// that is not stored anywhere yet (uploads, generated levels).
type BytesSource struct {
	name string
	data []byte
}

func NewBytesSource(name string, data []byte) *BytesSource {
	return &BytesSource{name: name, data: data}
}

func (s *BytesSource) Name() string { return s.name }
func (s *BytesSource) Size() int64  { return int64(len(s.data)) }

func (s *BytesSource) Save(in *io.SectionReader) error {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, in); err != nil {
		return errors.Wrapf(err, "Failed to save %q", s.name)
	}
	s.data = buf.Bytes()
	return nil
}

func (s *BytesSource) Reader() *io.SectionReader {
	return io.NewSectionReader(bytes.NewReader(s.data), 0, int64(len(s.data)))
}
