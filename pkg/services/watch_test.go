package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelevant(t *testing.T) {
	tests := []struct {
		name string
		op   fsnotify.Op
		want bool
	}{
		{"drafts/a.md", fsnotify.Write, true},
		{"drafts/a.md", fsnotify.Create, true},
		{"drafts/a.md", fsnotify.Remove, true},
		{"drafts/a.md", fsnotify.Rename, true},
		{"drafts/a.md", fsnotify.Chmod, false},
		{"drafts/.a.md.swp", fsnotify.Write, false},
		{"drafts/a.md~", fsnotify.Write, false},
		{"drafts/4913.tmp", fsnotify.Create, false},
	}
	for _, tt := range tests {
		got := relevant(fsnotify.Event{Name: tt.name, Op: tt.op})
		assert.Equal(t, tt.want, got, "%s %s", tt.op, tt.name)
	}
}

func TestWatch_RebuildsOncePerBurst(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	builds := make(chan struct{}, 10)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, []string{dir, filepath.Join(dir, "missing")}, func(context.Context) error {
			builds <- struct{}{}
			return nil
		})
	}()

	// Give the watcher time to register.
	time.Sleep(100 * time.Millisecond)
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "a.md"), []byte{byte('a' + i)}, 0o644))
	}

	select {
	case <-builds:
	case <-time.After(3 * time.Second):
		t.Fatal("no rebuild after change")
	}
	select {
	case <-builds:
		t.Fatal("burst triggered more than one rebuild")
	case <-time.After(2 * watchDebounce):
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatch_NothingToWatch(t *testing.T) {
	err := Watch(context.Background(), []string{filepath.Join(t.TempDir(), "missing")}, func(context.Context) error { return nil })
	assert.Error(t, err)
}

func TestWatch_SingleFile(t *testing.T) {
	dir := t.TempDir()
	siteCfg := filepath.Join(dir, "site.yml")
	require.NoError(t, os.WriteFile(siteCfg, []byte("name: A\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	builds := make(chan struct{}, 10)
	go func() {
		_ = Watch(ctx, []string{siteCfg}, func(context.Context) error {
			builds <- struct{}{}
			return nil
		})
	}()
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("x"), 0o644))
	select {
	case <-builds:
		t.Fatal("change to an unwatched sibling triggered a rebuild")
	case <-time.After(2 * watchDebounce):
	}

	require.NoError(t, os.WriteFile(siteCfg, []byte("name: B\n"), 0o644))
	select {
	case <-builds:
	case <-time.After(3 * time.Second):
		t.Fatal("no rebuild after site.yml changed")
	}
}
