package glevel

import (
	"fmt"

	"github.com/pkg/errors"
)

// AssetPath names an external resource (texture, sound) a level refers to.
// It is never opened by this package.
type AssetPath = string

type BlockIndex uint32

type InteractionKind int

const (
	Wall InteractionKind = iota
	Air
	Goal
	Hole
	UnknownInteraction
)

var interactionNames = [...]string{
	Wall:               "wall",
	Air:                "air",
	Goal:               "goal",
	Hole:               "hole",
	UnknownInteraction: "unknown",
}

func (k InteractionKind) String() string {
	if k >= 0 && int(k) < len(interactionNames) {
		return interactionNames[k]
	}
	return fmt.Sprintf("InteractionKind(%d)", int(k))
}

func (k InteractionKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *InteractionKind) UnmarshalText(b []byte) error {
	for i, name := range interactionNames {
		if name == string(b) {
			*k = InteractionKind(i)
			return nil
		}
	}
	return errors.Errorf("Unknown interaction kind %q", b)
}

// Interaction is what a block does to whoever steps on it.
// Value holds the destination level for Goal and the raw tag for UnknownInteraction.
type Interaction struct {
	Kind  InteractionKind `json:"kind" yaml:"kind"`
	Value string          `json:"value,omitempty" yaml:"value,omitempty"`
}

type Block struct {
	Symbol      string      `json:"symbol" yaml:"symbol"`
	Interaction Interaction `json:"interaction" yaml:"interaction"`
	Texture     AssetPath   `json:"texture,omitempty" yaml:"texture,omitempty"`
}

type FlagKind int

const (
	VerticalSize FlagKind = iota
	SoundFile
	UnknownFlag
)

var flagNames = [...]string{
	VerticalSize: "vsize",
	SoundFile:    "sound",
	UnknownFlag:  "unknown",
}

func (k FlagKind) String() string {
	if k >= 0 && int(k) < len(flagNames) {
		return flagNames[k]
	}
	return fmt.Sprintf("FlagKind(%d)", int(k))
}

func (k FlagKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *FlagKind) UnmarshalText(b []byte) error {
	for i, name := range flagNames {
		if name == string(b) {
			*k = FlagKind(i)
			return nil
		}
	}
	return errors.Errorf("Unknown flag kind %q", b)
}

// Flag is level-wide metadata from the third line of a level file.
// Key is the raw key as written; it only matters for UnknownFlag.
type Flag struct {
	Kind         FlagKind `json:"kind" yaml:"kind"`
	Key          string   `json:"key" yaml:"key"`
	VerticalSize uint32   `json:"vsize,omitempty" yaml:"vsize,omitempty"`
	Value        string   `json:"value,omitempty" yaml:"value,omitempty"`
}

// Grid is a dense width*height*depth array of block indexes.
// The last axis varies fastest.
type Grid struct {
	Width  int          `json:"width" yaml:"width"`
	Height int          `json:"height" yaml:"height"`
	Depth  int          `json:"depth" yaml:"depth"`
	Cells  []BlockIndex `json:"cells" yaml:"cells,flow"`
}

func (g *Grid) Len() int {
	return g.Width * g.Height * g.Depth
}

func (g *Grid) InBounds(x, y, z int) bool {
	return x >= 0 && x < g.Width && y >= 0 && y < g.Height && z >= 0 && z < g.Depth
}

func (g *Grid) Offset(x, y, z int) int {
	return (x*g.Height+y)*g.Depth + z
}

func (g *Grid) At(x, y, z int) BlockIndex {
	if !g.InBounds(x, y, z) {
		panic(fmt.Sprintf("glevel: cell (%d,%d,%d) out of %dx%dx%d grid", x, y, z, g.Width, g.Height, g.Depth))
	}
	return g.Cells[g.Offset(x, y, z)]
}

type Level struct {
	Name   string  `json:"name" yaml:"name"`
	Flags  []Flag  `json:"flags" yaml:"flags"`
	Tiles  Grid    `json:"tiles" yaml:"tiles"`
	Blocks []Block `json:"blocks" yaml:"blocks"`
}

// Block returns the block type of the cell at (x, y, z).
func (l *Level) Block(x, y, z int) *Block {
	return &l.Blocks[l.Tiles.At(x, y, z)]
}

// VerticalSize returns the last valid vsize flag, if any.
func (l *Level) VerticalSize() (uint32, bool) {
	var size uint32
	found := false
	for _, f := range l.Flags {
		if f.Kind == VerticalSize {
			size, found = f.VerticalSize, true
		}
	}
	return size, found
}

// Dependencies lists every asset path the level refers to, in file order,
// duplicates included.
func (l *Level) Dependencies() []AssetPath {
	deps := make([]AssetPath, 0)
	for _, f := range l.Flags {
		if f.Kind == SoundFile {
			deps = append(deps, f.Value)
		}
	}
	for _, b := range l.Blocks {
		if b.Texture != "" {
			deps = append(deps, b.Texture)
		}
	}
	return deps
}

// Result is everything a single Parse call produces.
type Result struct {
	Level        *Level      `json:"level"`
	Dependencies []AssetPath `json:"dependencies"`
	Diagnostics  Diagnostics `json:"diagnostics"`
}
