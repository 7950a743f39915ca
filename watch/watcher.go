package watch

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

const debounce = 100 * time.Millisecond

type Op int

const (
	CHANGED Op = iota
	REMOVED
)

type Event struct {
	Path string
	Op   Op
}

// Watcher reports changes of level files in a set of directories.
// An event is emitted once a file has been quiet for 100ms; the last
// operation seen in the burst wins.
type Watcher struct {
	watcher *fsnotify.Watcher
	exts    []string
	Events  chan Event
	Errors  chan error
	ready   chan pendingKey
	seq     int
	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

func NewWatcher(exts []string, dirs ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrapf(err, "[watch] Cannot create watcher")
	}

	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, errors.Wrapf(err, "[watch] Cannot watch '%s'", dir)
		}
	}

	watcher := &Watcher{
		watcher: w,
		exts:    exts,
		Events:  make(chan Event, 16),
		Errors:  make(chan error, 1),
		ready:   make(chan pendingKey),
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
		close(w.Events)
		close(w.Errors)
	})
	return err
}

type pendingKey struct {
	path string
	gen  int
}

type pendingEvent struct {
	op    Op
	gen   int
	timer *time.Timer
}

// arm restarts the quiet period of path. A timer that already fired for an
// older generation is ignored by run. Only run calls it.
func (w *Watcher) arm(p *pendingEvent, path string) {
	if p.timer != nil {
		p.timer.Stop()
	}
	w.seq++
	p.gen = w.seq
	key := pendingKey{path: path, gen: p.gen}
	p.timer = time.AfterFunc(debounce, func() {
		select {
		case w.ready <- key:
		case <-w.closeCh:
		}
	})
}

func (w *Watcher) run() {
	pending := make(map[string]*pendingEvent)
	defer func() {
		for _, p := range pending {
			p.timer.Stop()
		}
		close(w.done)
	}()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if !w.Matches(event.Name) {
				continue
			}
			op := CHANGED
			if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				op = REMOVED
			}
			p, ok := pending[event.Name]
			if !ok {
				p = &pendingEvent{}
				pending[event.Name] = p
			}
			p.op = op
			w.arm(p, event.Name)
		case key := <-w.ready:
			p, ok := pending[key.path]
			if !ok || p.gen != key.gen {
				continue
			}
			delete(pending, key.path)
			select {
			case w.Events <- Event{Path: key.path, Op: p.op}:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.closeCh:
			return
		}
	}
}

// Matches reports whether path has one of the watched extensions.
func (w *Watcher) Matches(path string) bool {
	ext := filepath.Ext(path)
	for _, e := range w.exts {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}
