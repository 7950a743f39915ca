package glevel

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

const separators = ",|=\r\n"

// Encode writes the level in the text format Parse reads.
func Encode(l *Level) ([]byte, error) {
	g := &l.Tiles
	if g.Width <= 0 || g.Height <= 0 || g.Depth <= 0 {
		return nil, errors.Errorf("Invalid grid shape %dx%dx%d", g.Width, g.Height, g.Depth)
	}
	if len(g.Cells) != g.Len() {
		return nil, errors.Errorf("Grid %dx%dx%d holds %d cells, expected %d", g.Width, g.Height, g.Depth, len(g.Cells), g.Len())
	}
	if len(l.Blocks) == 0 {
		return nil, errors.Errorf("Level %q has no blocks", l.Name)
	}
	if strings.ContainsAny(l.Name, "\r\n") {
		return nil, errors.Errorf("Level name %q contains a line break", l.Name)
	}

	var buf bytes.Buffer
	buf.WriteString(l.Name)
	buf.WriteByte('\n')

	if g.Depth == 1 {
		fmt.Fprintf(&buf, "%dx%d\n", g.Width, g.Height)
	} else {
		fmt.Fprintf(&buf, "%dx%dx%d\n", g.Width, g.Height, g.Depth)
	}

	for i, f := range l.Flags {
		if i != 0 {
			buf.WriteByte(',')
		}
		switch f.Kind {
		case VerticalSize:
			fmt.Fprintf(&buf, "vsize=%d", f.VerticalSize)
		case SoundFile:
			if err := checkValue(f.Value); err != nil {
				return nil, errors.Wrapf(err, "Flag %d", i)
			}
			buf.WriteString("sound=" + f.Value)
		default:
			if f.Key == "" || strings.ContainsAny(f.Key, separators) || f.Key == "vsize" || f.Key == "sound" {
				return nil, errors.Errorf("Flag %d: cannot write key %q", i, f.Key)
			}
			if err := checkValue(f.Value); err != nil {
				return nil, errors.Wrapf(err, "Flag %d", i)
			}
			buf.WriteString(f.Key + "=" + f.Value)
		}
	}
	buf.WriteByte('\n')

	for i, cell := range g.Cells {
		if int(cell) >= len(l.Blocks) {
			return nil, errors.Errorf("Cell %d refers to block %d of %d", i, cell, len(l.Blocks))
		}
		if i != 0 {
			buf.WriteByte('|')
		}
		buf.WriteString(l.Blocks[cell].Symbol)
	}
	buf.WriteByte('\n')

	for i, b := range l.Blocks {
		if b.Symbol == "" || strings.ContainsAny(b.Symbol, separators) {
			return nil, errors.Errorf("Block %d: cannot write symbol %q", i, b.Symbol)
		}
		buf.WriteString(b.Symbol)
		switch b.Interaction.Kind {
		case Wall:
			if b.Texture == "" {
				buf.WriteByte(',')
			}
		case Air:
			buf.WriteString(",air")
		case Hole:
			buf.WriteString(",hole")
		case Goal:
			if err := checkValue(b.Interaction.Value); err != nil || b.Interaction.Value == "" {
				return nil, errors.Errorf("Block %d: cannot write goal %q", i, b.Interaction.Value)
			}
			buf.WriteString(",goal=" + b.Interaction.Value)
		default:
			return nil, errors.Errorf("Block %d: interaction %v has no text form", i, b.Interaction.Kind)
		}
		if b.Texture != "" {
			if err := checkValue(b.Texture); err != nil {
				return nil, errors.Wrapf(err, "Block %d", i)
			}
			buf.WriteString(",texture=" + b.Texture)
		}
		buf.WriteByte('\n')
	}

	return buf.Bytes(), nil
}

// '=' is fine inside a value, the parser only cuts on the first one.
func checkValue(v string) error {
	if strings.ContainsAny(v, ",|\r\n") {
		return errors.Errorf("Value %q contains a separator", v)
	}
	return nil
}
