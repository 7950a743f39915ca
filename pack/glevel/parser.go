package glevel

import (
	"bytes"
	"math/bits"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

const (
	LINE_NAME = iota
	LINE_DIMENSIONS
	LINE_FLAGS
	LINE_TILES
	LINE_LEGEND
)

const DefaultMaxCells = 1 << 24

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

type Options struct {
	// Charmap, when set, transcodes input from a legacy single byte encoding.
	// Nil means the input must be valid UTF-8.
	Charmap *charmap.Charmap
	// MaxCells bounds width*height*depth. Zero means DefaultMaxCells.
	MaxCells int
}

func Parse(data []byte) (*Result, error) {
	return ParseWithOptions(data, Options{})
}

func ParseWithOptions(data []byte, opts Options) (*Result, error) {
	if opts.MaxCells <= 0 {
		opts.MaxCells = DefaultMaxCells
	}

	text, err := decodeText(data, opts.Charmap)
	if err != nil {
		return nil, err
	}

	lines, err := splitLines(text)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to tokenize level")
	}
	if len(lines) < LINE_LEGEND {
		return nil, formatErrorf(ErrTruncatedFile, len(lines)+1, -1,
			"need name, dimensions, flags and tiles lines, got %d lines", len(lines))
	}

	p := &parser{
		result: &Result{
			Level:        &Level{Name: lines[LINE_NAME].text()},
			Dependencies: make([]AssetPath, 0),
			Diagnostics:  Diagnostics{Warnings: make([]Warning, 0)},
		},
		opts: opts,
	}
	if err := p.parseDimensions(lines[LINE_DIMENSIONS]); err != nil {
		return nil, err
	}
	p.parseFlags(lines[LINE_FLAGS])

	tiles := lines[LINE_TILES].split('|')
	if len(tiles) != p.result.Level.Tiles.Len() {
		g := &p.result.Level.Tiles
		return nil, formatErrorf(ErrTileCountMismatch, lines[LINE_TILES].num, -1,
			"%dx%dx%d grid needs %d tiles, got %d", g.Width, g.Height, g.Depth, g.Len(), len(tiles))
	}

	legend, err := p.parseLegend(lines[LINE_LEGEND:], lines[LINE_TILES].num+1)
	if err != nil {
		return nil, err
	}
	p.resolveTiles(lines[LINE_TILES].num, tiles, legend)

	return p.result, nil
}

func decodeText(data []byte, cm *charmap.Charmap) ([]byte, error) {
	if cm != nil {
		text, _, err := transform.Bytes(cm.NewDecoder(), data)
		if err != nil {
			return nil, formatErrorf(ErrEncoding, 1, -1, "decoding from %v", cm).withCause(err)
		}
		return text, nil
	}

	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		offset := 0
		for offset < len(data) {
			r, size := utf8.DecodeRune(data[offset:])
			if r == utf8.RuneError && size <= 1 {
				break
			}
			offset += size
		}
		return nil, formatErrorf(ErrEncoding, bytes.Count(data[:offset], []byte{'\n'})+1, -1,
			"invalid UTF-8 at byte %d", offset)
	}
	return data, nil
}

type parser struct {
	result *Result
	opts   Options
}

func (p *parser) warn(kind WarningKind, line, field int, text string) {
	p.result.Diagnostics.warn(kind, line, field, text)
}

func (p *parser) depend(path AssetPath) {
	p.result.Dependencies = append(p.result.Dependencies, path)
}

func (p *parser) parseDimensions(l *line) error {
	parts := strings.Split(l.text(), "x")
	if len(parts) < 2 {
		return formatErrorf(ErrInvalidDimensions, l.num, -1, "expected <width>x<height>[x<depth>], got %q", l.text())
	}
	if len(parts) > 3 {
		return formatErrorf(ErrInvalidDimensions, l.num, 3, "unexpected dimension %q", parts[3])
	}

	dims := [3]uint64{1, 1, 1}
	cells := uint64(1)
	for i, part := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(part), 10, 32)
		if err != nil {
			if i == 2 {
				// depth is optional, a missing or unreadable one means 1
				p.warn(WARN_BAD_DEPTH, l.num, i, part)
				continue
			}
			return formatErrorf(ErrInvalidDimensions, l.num, i, "%q is not a number", part).withCause(err)
		}
		if v == 0 {
			return formatErrorf(ErrInvalidDimensions, l.num, i, "dimension must be positive")
		}
		hi, lo := bits.Mul64(cells, v)
		if hi != 0 || lo > uint64(p.opts.MaxCells) {
			return formatErrorf(ErrInvalidDimensions, l.num, -1, "%s cells exceed the limit of %d", l.text(), p.opts.MaxCells)
		}
		cells = lo
		dims[i] = v
	}

	p.result.Level.Tiles = Grid{Width: int(dims[0]), Height: int(dims[1]), Depth: int(dims[2])}
	return nil
}

func (p *parser) parseFlags(l *line) {
	flags := make([]Flag, 0)
	for _, f := range l.split(',') {
		if f.text == "" {
			continue
		}
		key, value, ok := strings.Cut(f.text, "=")
		if !ok || key == "" {
			p.warn(WARN_SKIPPED_PAIR, l.num, f.index, f.text)
			p.result.Diagnostics.SkippedPairs++
			continue
		}

		switch key {
		case "vsize":
			size, err := strconv.ParseUint(value, 10, 32)
			if err != nil {
				p.warn(WARN_BAD_FLAG_VALUE, l.num, f.index, f.text)
				continue
			}
			flags = append(flags, Flag{Kind: VerticalSize, Key: key, VerticalSize: uint32(size)})
		case "sound":
			p.depend(value)
			flags = append(flags, Flag{Kind: SoundFile, Key: key, Value: value})
		default:
			flags = append(flags, Flag{Kind: UnknownFlag, Key: key, Value: value})
		}
	}
	p.result.Level.Flags = flags
}

// parseLegend builds the block table and the symbol lookup in one pass over
// every legend line. Tiles are resolved only after it, so a later definition
// of a symbol applies to the whole grid.
func (p *parser) parseLegend(lines []*line, firstLine int) (map[string]BlockIndex, error) {
	blocks := make([]Block, 0, len(lines))
	legend := make(map[string]BlockIndex, len(lines))

	for _, l := range lines {
		fields := l.split(',')
		if len(fields) < 2 {
			p.warn(WARN_SKIPPED_LEGEND_LINE, l.num, -1, l.text())
			continue
		}
		symbol := fields[0].text
		if symbol == "" {
			return nil, formatErrorf(ErrMalformedLegendEntry, l.num, 0, "empty tile character in %q", l.text())
		}

		block := Block{Symbol: symbol, Interaction: Interaction{Kind: Wall}}
		for _, f := range fields[1:] {
			key, value, _ := strings.Cut(f.text, "=")
			switch key {
			case "air":
				block.Interaction = Interaction{Kind: Air}
			case "hole":
				block.Interaction = Interaction{Kind: Hole}
			case "goal":
				if value == "" {
					p.warn(WARN_IGNORED_BLOCK_FLAG, l.num, f.index, f.text)
					continue
				}
				block.Interaction = Interaction{Kind: Goal, Value: value}
			case "texture":
				if value == "" {
					p.warn(WARN_IGNORED_BLOCK_FLAG, l.num, f.index, f.text)
					continue
				}
				block.Texture = value
				p.depend(value)
			case "":
				// "A," declares a plain wall
			default:
				p.warn(WARN_IGNORED_BLOCK_FLAG, l.num, f.index, f.text)
			}
		}

		legend[symbol] = BlockIndex(len(blocks))
		blocks = append(blocks, block)
	}

	if len(blocks) == 0 {
		return nil, formatErrorf(ErrMalformedLegendEntry, firstLine, -1, "level defines no block types")
	}
	p.result.Level.Blocks = blocks
	return legend, nil
}

func (p *parser) resolveTiles(lineNum int, tiles []field, legend map[string]BlockIndex) {
	cells := make([]BlockIndex, len(tiles))
	reported := make(map[string]bool)
	for i, t := range tiles {
		if idx, ok := legend[t.text]; ok {
			cells[i] = idx
			continue
		}
		p.result.Diagnostics.UnresolvedTiles++
		if !reported[t.text] {
			reported[t.text] = true
			p.warn(WARN_UNRESOLVED_TILE, lineNum, t.index, t.text)
		}
	}
	p.result.Level.Tiles.Cells = cells
}
