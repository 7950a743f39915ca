package web

import (
	"log"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/mogaika/glevel_browser/pack"
	"github.com/mogaika/glevel_browser/pack/glevel"
	"github.com/mogaika/glevel_browser/status"
	"github.com/mogaika/glevel_browser/vfs"
	"github.com/mogaika/glevel_browser/watch"
)

// NewWatcher watches the levels directory. It must be backed by a real path.
func (s *Server) NewWatcher() (*watch.Watcher, error) {
	p, ok := s.Levels.(vfs.Pather)
	if !ok {
		return nil, errors.Errorf("Levels directory '%s' cannot be watched", s.Levels.Name())
	}
	return watch.NewWatcher([]string{glevel.EXTENSION}, p.Path())
}

// ReloadLevel parses a level again and publishes the outcome to the hub.
func (s *Server) ReloadLevel(name string) status.LevelInfo {
	data, err := pack.GetInstanceHandler(s.Levels, name)
	var info status.LevelInfo
	if err != nil {
		info = status.LevelInfoFor(name, nil, err)
	} else {
		info = status.LevelInfoFor(name, data.(*glevel.Result), nil)
	}
	s.Hub.Level(info)
	return info
}

// Watch reloads levels as the watcher reports them until its channels close.
func (s *Server) Watch(w *watch.Watcher) {
	events, errs := w.Events, w.Errors
	for events != nil || errs != nil {
		select {
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			name := filepath.Base(ev.Path)
			if ev.Op == watch.REMOVED {
				log.Printf("[watch] Level '%s' removed", name)
				s.Hub.Send(&status.Message{Message: "Level " + name + " removed", Type: status.INFO})
				continue
			}
			if info := s.ReloadLevel(name); info.Error != "" {
				log.Printf("[watch] Level '%s' is broken: %s", name, info.Error)
			} else {
				log.Printf("[watch] Level '%s' reloaded, %d warnings", name, info.Warnings)
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			log.Printf("[watch] Error: %v", err)
		}
	}
}
