package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/mogaika/glevel_browser/assets"
	"github.com/mogaika/glevel_browser/config"
	"github.com/mogaika/glevel_browser/pack"
	"github.com/mogaika/glevel_browser/pack/glevel"
	"github.com/mogaika/glevel_browser/utils"
	"github.com/mogaika/glevel_browser/vfs"
)

type checker struct {
	levels   vfs.Directory
	resolver *assets.Resolver
	dump     bool
	strict   bool
	out      io.Writer
}

// check reports on one level and tells whether it passed.
func (c *checker) check(ctx context.Context, name string) (bool, error) {
	data, err := pack.GetInstanceHandler(c.levels, name)
	if err != nil {
		fmt.Fprintf(c.out, "%s: %v\n", name, err)
		return false, nil
	}
	res := data.(*glevel.Result)

	ok := true
	for _, w := range res.Diagnostics.Warnings {
		fmt.Fprintf(c.out, "%s:%d:%d: warning: %v %q\n", name, w.Line, w.Field, w.Kind, w.Text)
	}
	if c.strict && !res.Diagnostics.Clean() {
		ok = false
	}

	if c.resolver != nil {
		report, err := c.resolver.Resolve(ctx, res.Dependencies)
		if err != nil {
			return false, err
		}
		for _, e := range report.Entries {
			if !e.Found {
				fmt.Fprintf(c.out, "%s: missing asset %q (%d uses): %s\n", name, e.Path, e.Count, e.Err)
				ok = false
			}
		}
	}

	if c.dump {
		utils.FDump(c.out, res.Level)
	}
	if ok {
		fmt.Fprintf(c.out, "%s: ok, %dx%dx%d, %d blocks\n", name,
			res.Level.Tiles.Width, res.Level.Tiles.Height, res.Level.Tiles.Depth, len(res.Level.Blocks))
	}
	return ok, nil
}

// run checks every level file and returns the number of failed ones.
func (c *checker) run(ctx context.Context) (int, error) {
	names, err := vfs.ListByExt(c.levels, glevel.EXTENSION)
	if err != nil {
		return 0, err
	}
	failed := 0
	for _, name := range names {
		ok, err := c.check(ctx, name)
		if err != nil {
			return failed, err
		}
		if !ok {
			failed++
		}
	}
	fmt.Fprintf(c.out, "%d levels, %d failed\n", len(names), failed)
	return failed, nil
}

func main() {
	var dir, assetsDir, encoding string
	var dump, strict bool
	var workers int
	flag.StringVar(&dir, "dir", "", "Path to folder with level files")
	flag.StringVar(&assetsDir, "assets", "", "Path to folder with textures and sounds, enables dependency check")
	flag.StringVar(&encoding, "encoding", config.UTF8, "Level text encoding")
	flag.BoolVar(&dump, "dump", false, "Dump parsed levels")
	flag.BoolVar(&strict, "strict", false, "Treat warnings as failures")
	flag.IntVar(&workers, "workers", config.DefaultWorkers, "Parallel asset lookups")
	flag.Parse()

	if dir == "" {
		flag.PrintDefaults()
		os.Exit(2)
	}
	if err := config.SetEncoding(encoding); err != nil {
		log.Fatal(err)
	}

	c := &checker{
		levels: vfs.NewDirectoryDriver(dir),
		dump:   dump,
		strict: strict,
		out:    os.Stdout,
	}
	if assetsDir != "" {
		c.resolver = assets.NewResolver(vfs.NewDirectoryDriver(assetsDir), workers)
	}

	failed, err := c.run(context.Background())
	if err != nil {
		log.Fatal(err)
	}
	if failed != 0 {
		os.Exit(1)
	}
}
