// Package assets checks the external resources a level depends on against a
// directory of asset files. The level parser only lists the paths; this is
// the side that looks them up.
package assets

import (
	"context"
	"log"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/mogaika/glevel_browser/vfs"
)

const DefaultWorkers = 4

type Entry struct {
	Path  string `json:"path"`
	Count int    `json:"count"`
	Found bool   `json:"found"`
	Size  int64  `json:"size"`
	Err   string `json:"error,omitempty"`
}

type Report struct {
	Entries []Entry `json:"entries"`
}

func (r *Report) Missing() []string {
	missing := make([]string, 0)
	for _, e := range r.Entries {
		if !e.Found {
			missing = append(missing, e.Path)
		}
	}
	return missing
}

func (r *Report) Complete() bool {
	return len(r.Missing()) == 0
}

// Resolver looks paths up concurrently, so dir must allow concurrent reads.
// DirectoryDriver does.
type Resolver struct {
	dir     vfs.Directory
	workers int
}

func NewResolver(dir vfs.Directory, workers int) *Resolver {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Resolver{dir: dir, workers: workers}
}

// Resolve looks every unique path up once. Entries keep the order in which
// paths first occur; Count says how many times each occurred.
func (r *Resolver) Resolve(ctx context.Context, paths []string) (*Report, error) {
	index := make(map[string]int, len(paths))
	report := &Report{Entries: make([]Entry, 0, len(paths))}
	for _, p := range paths {
		if i, ok := index[p]; ok {
			report.Entries[i].Count++
			continue
		}
		index[p] = len(report.Entries)
		report.Entries = append(report.Entries, Entry{Path: p, Count: 1})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i := range report.Entries {
		e := &report.Entries[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r.lookup(e)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrapf(err, "Resolve aborted")
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrapf(err, "Resolve aborted")
	}
	return report, nil
}

func (r *Resolver) lookup(e *Entry) {
	elem, err := vfs.Resolve(r.dir, e.Path)
	if err != nil {
		e.Err = err.Error()
		return
	}
	f, ok := elem.(vfs.File)
	if !ok {
		e.Err = "is a directory"
		return
	}
	e.Found = true
	e.Size = f.Size()
	if e.Size == 0 {
		log.Printf("[assets] Warning! %q is empty", e.Path)
	}
}
