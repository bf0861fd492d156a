package snapshot

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func populate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range []string{"beta.txt", "Alpha.txt", "gamma.pyc", ".hidden"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(name), 0644))
	}
	for _, name := range []string{"src", "Docs", ".git"} {
		require.NoError(t, os.Mkdir(filepath.Join(dir, name), 0755))
	}
	return dir
}

func names(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}

func TestListSortsCaseInsensitive(t *testing.T) {
	dir := populate(t)

	l, err := List(dir, Options{})
	require.NoError(t, err)

	assert.Equal(t, dir, l.Path)
	assert.Equal(t, []string{"Docs", "src"}, names(l.Dirs))
	assert.Equal(t, []string{"Alpha.txt", "beta.txt", "gamma.pyc"}, names(l.Files))
	for _, d := range l.Dirs {
		assert.True(t, d.IsDir)
	}
}

func TestListDescending(t *testing.T) {
	dir := populate(t)

	l, err := List(dir, Options{Descending: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"src", "Docs"}, names(l.Dirs))
	assert.Equal(t, []string{"gamma.pyc", "beta.txt", "Alpha.txt"}, names(l.Files))
}

func TestListHidden(t *testing.T) {
	dir := populate(t)

	l, err := List(dir, Options{ShowHidden: true})
	require.NoError(t, err)
	assert.Equal(t, []string{".git", "Docs", "src"}, names(l.Dirs))
	assert.Contains(t, names(l.Files), ".hidden")
}

func TestListIgnore(t *testing.T) {
	dir := populate(t)
	globs, err := CompileIgnore([]string{"*.pyc", "src"})
	require.NoError(t, err)

	l, err := List(dir, Options{Ignore: globs})
	require.NoError(t, err)
	assert.Equal(t, []string{"Docs"}, names(l.Dirs))
	assert.Equal(t, []string{"Alpha.txt", "beta.txt"}, names(l.Files))
}

func TestCompileIgnoreInvalid(t *testing.T) {
	_, err := CompileIgnore([]string{"[unclosed"})
	assert.Error(t, err)
}

func TestListSymlinkToDir(t *testing.T) {
	dir := populate(t)
	require.NoError(t, os.Symlink(filepath.Join(dir, "src"), filepath.Join(dir, "link")))

	l, err := List(dir, Options{})
	require.NoError(t, err)
	assert.Contains(t, names(l.Dirs), "link")
}

func TestListMissing(t *testing.T) {
	_, err := List(filepath.Join(t.TempDir(), "gone"), Options{})
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	dir := populate(t)

	got, err := Resolve(filepath.Join(dir, "src", ".."))
	require.NoError(t, err)
	assert.Equal(t, dir, got)

	_, err = Resolve(filepath.Join(dir, "beta.txt"))
	assert.ErrorContains(t, err, "not a directory")

	if home, err := os.UserHomeDir(); err == nil && isExistingDir(home) {
		got, err := Resolve("~")
		require.NoError(t, err)
		assert.Equal(t, filepath.Clean(home), got)
	}
}

func TestParent(t *testing.T) {
	assert.Equal(t, "/usr", Parent("/usr/local"))
	assert.Equal(t, "/usr", Parent("/usr/local/"))
	assert.Equal(t, "/", Parent("/"))
}

func TestStat(t *testing.T) {
	dir := populate(t)
	path := filepath.Join(dir, "beta.txt")
	mtime := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, os.Chtimes(path, mtime, mtime))

	info, err := Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(len("beta.txt")), info.Size)
	assert.True(t, info.ModTime.Equal(mtime))
	assert.False(t, info.AccessTime.IsZero())
	assert.False(t, info.IsDir)
}

func TestRemove(t *testing.T) {
	dir := populate(t)
	path := filepath.Join(dir, "beta.txt")

	require.NoError(t, Remove(path))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	assert.Error(t, Remove(filepath.Join(dir, "src")))
	assert.Error(t, Remove(path))
}

func TestWatcherReportsCreate(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher()
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Watch(dir))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.txt"), nil, 0644))

	select {
	case got := <-w.Changes():
		assert.Equal(t, dir, got)
	case <-time.After(5 * time.Second):
		t.Fatal("no change notification")
	}
}

func TestWatcherSwitchDirectory(t *testing.T) {
	first, second := t.TempDir(), t.TempDir()
	w, err := NewWatcher()
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Watch(first))
	require.NoError(t, w.Watch(second))
	require.NoError(t, w.Watch(second))

	require.NoError(t, os.WriteFile(filepath.Join(second, "x"), nil, 0644))
	select {
	case got := <-w.Changes():
		assert.Equal(t, second, got)
	case <-time.After(5 * time.Second):
		t.Fatal("no change notification")
	}
	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}

func isExistingDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

func TestWatcherCloseReleasesReaders(t *testing.T) {
	w, err := NewWatcher()
	require.NoError(t, err)
	require.NoError(t, w.Watch(t.TempDir()))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for range w.Changes() {
		}
		for range w.Errors() {
		}
	}()

	require.NoError(t, w.Close())
	assert.NoError(t, w.Close(), "second Close is a no-op")
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("reader still blocked after Close")
	}
}
