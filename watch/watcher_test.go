package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatches(t *testing.T) {
	w := &Watcher{exts: []string{".glevel"}}
	assert.True(t, w.Matches("levels/a.glevel"))
	assert.True(t, w.Matches("LEVELS/A.GLEVEL"))
	assert.False(t, w.Matches("levels/a.glevel.tmp"))
	assert.False(t, w.Matches("levels/readme.txt"))
}

func TestWatcherReportsLevelFiles(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher([]string{".glevel"}, dir)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	level := filepath.Join(dir, "first.glevel")
	require.NoError(t, os.WriteFile(level, []byte("x"), 0644))

	select {
	case ev := <-w.Events:
		assert.Equal(t, level, ev.Path)
		assert.Equal(t, CHANGED, ev.Op)
	case err := <-w.Errors:
		t.Fatalf("watch error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("no event for level file")
	}

	time.Sleep(2 * debounce)
	require.NoError(t, os.Remove(level))
	for {
		select {
		case ev := <-w.Events:
			require.Equal(t, level, ev.Path)
			if ev.Op == REMOVED {
				return
			}
		case <-time.After(5 * time.Second):
			t.Fatal("no remove event")
		}
	}
}

func TestWatcherWaitsForQuiet(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher([]string{".glevel"}, dir)
	require.NoError(t, err)
	defer w.Close()

	level := filepath.Join(dir, "burst.glevel")
	require.NoError(t, os.WriteFile(level, []byte("half"), 0644))
	time.Sleep(20 * time.Millisecond)
	f, err := os.OpenFile(level, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString(" rest")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	select {
	case ev := <-w.Events:
		assert.Equal(t, level, ev.Path)
		assert.Equal(t, CHANGED, ev.Op)
		data, err := os.ReadFile(ev.Path)
		require.NoError(t, err)
		assert.Equal(t, "half rest", string(data))
	case <-time.After(5 * time.Second):
		t.Fatal("no event for level file")
	}

	select {
	case ev := <-w.Events:
		t.Fatalf("burst reported twice: %+v", ev)
	case <-time.After(3 * debounce):
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	w, err := NewWatcher([]string{".glevel"}, t.TempDir())
	require.NoError(t, err)
	require.NoError(t, w.Close())
	assert.NoError(t, w.Close())

	_, ok := <-w.Events
	assert.False(t, ok)
}

func TestNewWatcherMissingDir(t *testing.T) {
	_, err := NewWatcher([]string{".glevel"}, filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
