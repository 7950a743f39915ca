package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/lafriks/go-tiled"
	"github.com/pkg/errors"

	"github.com/mogaika/glevel_browser/pack/glevel"
)

const symbols = "#ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

type tileKey struct {
	tileset *tiled.Tileset
	id      uint32
}

func symbolFor(index int) string {
	if index < len(symbols) {
		return symbols[index : index+1]
	}
	return fmt.Sprintf("t%d", index)
}

// tileBlock describes a tileset tile as a block. Tiles can carry an
// "interaction" property (air, hole) or a "goal" property naming a level.
func tileBlock(ts *tiled.Tileset, id uint32) glevel.Block {
	b := glevel.Block{Interaction: glevel.Interaction{Kind: glevel.Wall}}
	if ts.Image != nil {
		b.Texture = filepath.ToSlash(ts.Image.Source)
	}
	tt, err := ts.GetTilesetTile(id)
	if err != nil {
		return b
	}
	if tt.Image != nil && tt.Image.Source != "" {
		b.Texture = filepath.ToSlash(tt.Image.Source)
	}
	if tt.Properties == nil {
		return b
	}
	switch tt.Properties.GetString("interaction") {
	case "air":
		b.Interaction.Kind = glevel.Air
	case "hole":
		b.Interaction.Kind = glevel.Hole
	}
	if goal := tt.Properties.GetString("goal"); goal != "" {
		b.Interaction = glevel.Interaction{Kind: glevel.Goal, Value: goal}
	}
	return b
}

// convert maps every tile layer of m to one depth slice of the level.
// Empty cells use the air block at index 0.
func convert(m *tiled.Map, name string) (*glevel.Level, error) {
	if len(m.Layers) == 0 {
		return nil, errors.Errorf("Map has no tile layers")
	}
	if m.Width <= 0 || m.Height <= 0 {
		return nil, errors.Errorf("Invalid map size %dx%d", m.Width, m.Height)
	}

	l := &glevel.Level{
		Name:   name,
		Flags:  []glevel.Flag{{Kind: glevel.VerticalSize, Key: "vsize", VerticalSize: uint32(len(m.Layers))}},
		Tiles:  glevel.Grid{Width: m.Width, Height: m.Height, Depth: len(m.Layers)},
		Blocks: []glevel.Block{{Symbol: ".", Interaction: glevel.Interaction{Kind: glevel.Air}}},
	}
	if m.Properties != nil {
		if sound := m.Properties.GetString("sound"); sound != "" {
			l.Flags = append(l.Flags, glevel.Flag{Kind: glevel.SoundFile, Key: "sound", Value: sound})
		}
	}
	l.Tiles.Cells = make([]glevel.BlockIndex, l.Tiles.Len())

	known := make(map[tileKey]glevel.BlockIndex)
	for z, layer := range m.Layers {
		if len(layer.Tiles) != m.Width*m.Height {
			return nil, errors.Errorf("Layer %q has %d tiles, expected %d", layer.Name, len(layer.Tiles), m.Width*m.Height)
		}
		for y := 0; y < m.Height; y++ {
			for x := 0; x < m.Width; x++ {
				tile := layer.Tiles[y*m.Width+x]
				if tile == nil || tile.IsNil() || tile.Tileset == nil {
					continue
				}
				key := tileKey{tileset: tile.Tileset, id: tile.ID}
				idx, ok := known[key]
				if !ok {
					b := tileBlock(tile.Tileset, tile.ID)
					b.Symbol = symbolFor(len(l.Blocks) - 1)
					idx = glevel.BlockIndex(len(l.Blocks))
					l.Blocks = append(l.Blocks, b)
					known[key] = idx
				}
				l.Tiles.Cells[l.Tiles.Offset(x, y, z)] = idx
			}
		}
	}
	return l, nil
}

func main() {
	var in, out, name string
	flag.StringVar(&in, "in", "", "Tiled .tmx map")
	flag.StringVar(&out, "out", "", "Output .glevel file, defaults to the map name")
	flag.StringVar(&name, "name", "", "Level name, defaults to the map file name")
	flag.Parse()

	if in == "" {
		flag.PrintDefaults()
		os.Exit(2)
	}
	base := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
	if name == "" {
		name = base
	}
	if out == "" {
		out = base + ".glevel"
	}

	m, err := tiled.LoadFile(in)
	if err != nil {
		log.Fatalf("Cannot load map '%s': %v", in, err)
	}
	l, err := convert(m, name)
	if err != nil {
		log.Fatalf("Cannot convert '%s': %v", in, err)
	}
	data, err := glevel.Encode(l)
	if err != nil {
		log.Fatalf("Cannot encode '%s': %v", in, err)
	}
	if err := os.WriteFile(out, data, 0644); err != nil {
		log.Fatal(err)
	}
	log.Printf("Converted '%s' to '%s': %dx%dx%d, %d blocks",
		in, out, l.Tiles.Width, l.Tiles.Height, l.Tiles.Depth, len(l.Blocks))
}
