package config

import (
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/charmap"
)

const UTF8 = "UTF-8"

// nil means strict UTF-8
var currentCharMap *charmap.Charmap

// FindEncoding looks a legacy charmap up by its x/text name
// ("Windows 1252", "ISO 8859-1", ...). UTF-8 and "" give nil.
func FindEncoding(name string) (*charmap.Charmap, error) {
	if name == "" || strings.EqualFold(name, UTF8) {
		return nil, nil
	}
	for _, enc := range charmap.All {
		if cm, ok := enc.(*charmap.Charmap); ok {
			if strings.EqualFold(cm.String(), name) {
				return cm, nil
			}
		}
	}
	return nil, errors.Errorf("Failed to find encoding %q", name)
}

func SetEncoding(name string) error {
	cm, err := FindEncoding(name)
	if err != nil {
		return err
	}
	currentCharMap = cm
	return nil
}

func ListEncodings() []string {
	list := []string{UTF8}
	for _, enc := range charmap.All {
		if cm, ok := enc.(*charmap.Charmap); ok {
			list = append(list, cm.String())
		}
	}
	return list
}

func GetEncoding() *charmap.Charmap {
	return currentCharMap
}
