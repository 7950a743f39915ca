package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/mogaika/glevel_browser/pack/glevel"
	"github.com/mogaika/glevel_browser/utils"
)

const maxSide = 16

var sounds = []string{"sfx/wind.ogg", "sfx/drip.ogg", "sfx/hum.ogg"}

// generate builds n connected levels: every level except the last has a goal
// block leading to the next one.
func generate(seed int64, n int) []*glevel.Level {
	rnd := rand.New(rand.NewSource(seed))
	names := utils.NewRandomNameGenerator(seed)

	levelNames := make([]string, n)
	for i := range levelNames {
		levelNames[i] = names.RandomName()
	}

	levels := make([]*glevel.Level, n)
	for i := range levels {
		l := &glevel.Level{
			Name: levelNames[i],
			Tiles: glevel.Grid{
				Width:  2 + rnd.Intn(maxSide-1),
				Height: 2 + rnd.Intn(maxSide-1),
				Depth:  1 + rnd.Intn(3),
			},
			Blocks: []glevel.Block{
				{Symbol: ".", Interaction: glevel.Interaction{Kind: glevel.Air}},
				{Symbol: "#", Interaction: glevel.Interaction{Kind: glevel.Wall}, Texture: fmt.Sprintf("tiles/wall%d.png", rnd.Intn(4))},
				{Symbol: "o", Interaction: glevel.Interaction{Kind: glevel.Hole}},
			},
		}
		l.Flags = []glevel.Flag{{Kind: glevel.VerticalSize, Key: "vsize", VerticalSize: uint32(l.Tiles.Depth)}}
		if rnd.Intn(2) == 0 {
			l.Flags = append(l.Flags, glevel.Flag{Kind: glevel.SoundFile, Key: "sound", Value: sounds[rnd.Intn(len(sounds))]})
		}

		l.Tiles.Cells = make([]glevel.BlockIndex, l.Tiles.Len())
		for c := range l.Tiles.Cells {
			switch r := rnd.Intn(10); {
			case r < 6:
				l.Tiles.Cells[c] = 0
			case r < 9:
				l.Tiles.Cells[c] = 1
			default:
				l.Tiles.Cells[c] = 2
			}
		}

		if i+1 < n {
			l.Blocks = append(l.Blocks, glevel.Block{
				Symbol:      "G",
				Interaction: glevel.Interaction{Kind: glevel.Goal, Value: fileName(i+1, levelNames[i+1])},
			})
			l.Tiles.Cells[rnd.Intn(len(l.Tiles.Cells))] = 3
		}
		levels[i] = l
	}
	return levels
}

func fileName(index int, name string) string {
	return fmt.Sprintf("%03d_%s.glevel", index, strings.ToLower(strings.ReplaceAll(name, " ", "_")))
}

func main() {
	var out string
	var n int
	var seed int64
	flag.StringVar(&out, "o", ".", "Output directory")
	flag.IntVar(&n, "n", 1, "Number of levels")
	flag.Int64Var(&seed, "seed", 1, "Random seed, equal seeds give equal levels")
	flag.Parse()

	if n <= 0 {
		log.Fatalf("-n must be positive, got %d", n)
	}
	if err := os.MkdirAll(out, 0755); err != nil {
		log.Fatal(err)
	}

	for i, l := range generate(seed, n) {
		data, err := glevel.Encode(l)
		if err != nil {
			log.Fatalf("Cannot encode level %q: %v", l.Name, err)
		}
		path := filepath.Join(out, fileName(i, l.Name))
		if err := os.WriteFile(path, data, 0644); err != nil {
			log.Fatal(err)
		}
		log.Printf("Written '%s' %dx%dx%d", path, l.Tiles.Width, l.Tiles.Height, l.Tiles.Depth)
	}
}
