package glevel

import (
	"io"
	"io/ioutil"

	"github.com/pkg/errors"

	"github.com/mogaika/glevel_browser/config"
	"github.com/mogaika/glevel_browser/pack"
	"github.com/mogaika/glevel_browser/utils"
)

const EXTENSION = ".GLEVEL"

func init() {
	pack.SetHandler(EXTENSION, func(src utils.ResourceSource, r *io.SectionReader) (interface{}, error) {
		data, err := ioutil.ReadAll(r)
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to read %q", src.Name())
		}
		res, err := ParseWithOptions(data, Options{
			Charmap:  config.GetEncoding(),
			MaxCells: config.GetMaxCells(),
		})
		if err != nil {
			return nil, err
		}
		return res, nil
	})
}
