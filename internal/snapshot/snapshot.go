// Package snapshot lists a single directory level and supplies file metadata
// for the preview core. It never reads file contents.
package snapshot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gobwas/glob"
)

// ParentName is the synthetic entry used to go up one directory.
const ParentName = ".."

type Entry struct {
	Name  string
	IsDir bool
}

type Listing struct {
	Path  string
	Dirs  []Entry
	Files []Entry
}

type Options struct {
	ShowHidden bool
	Descending bool
	Ignore     []glob.Glob
}

// CompileIgnore compiles name patterns such as "*.pyc" or "node_modules".
func CompileIgnore(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid ignore pattern %q: %w", p, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

// Resolve expands a leading "~", makes path absolute and checks that it is a
// directory.
func Resolve(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	if path == "" {
		path = "."
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s: not a directory", abs)
	}
	return abs, nil
}

// Parent returns the directory above dir; the root is its own parent.
func Parent(dir string) string {
	return filepath.Dir(filepath.Clean(dir))
}

// List reads one level of dir. The parent entry is not included; callers add
// it when dir is not the root.
func List(dir string, opts Options) (*Listing, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	l := &Listing{Path: dir}
	for _, e := range entries {
		name := e.Name()
		if !opts.ShowHidden && strings.HasPrefix(name, ".") {
			continue
		}
		if ignored(name, opts.Ignore) {
			continue
		}
		if isDir(dir, e) {
			l.Dirs = append(l.Dirs, Entry{Name: name, IsDir: true})
		} else {
			l.Files = append(l.Files, Entry{Name: name})
		}
	}

	sortEntries(l.Dirs, opts.Descending)
	sortEntries(l.Files, opts.Descending)
	return l, nil
}

// isDir follows symlinks so a link to a directory lists as a directory.
func isDir(dir string, e os.DirEntry) bool {
	if e.IsDir() {
		return true
	}
	if e.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(dir, e.Name()))
	return err == nil && info.IsDir()
}

func ignored(name string, globs []glob.Glob) bool {
	for _, g := range globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// sortEntries orders by case-folded name, ties broken by the raw name so the
// order is stable across runs.
func sortEntries(entries []Entry, descending bool) {
	sort.Slice(entries, func(i, j int) bool {
		a, b := strings.ToLower(entries[i].Name), strings.ToLower(entries[j].Name)
		if a == b {
			a, b = entries[i].Name, entries[j].Name
		}
		if descending {
			return a > b
		}
		return a < b
	})
}

// Info is the metadata shown next to a preview.
type Info struct {
	Path       string
	Size       int64
	ModTime    time.Time
	AccessTime time.Time
	IsDir      bool
}

func Stat(path string) (*Info, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	return &Info{
		Path:       path,
		Size:       fi.Size(),
		ModTime:    fi.ModTime(),
		AccessTime: accessTime(fi),
		IsDir:      fi.IsDir(),
	}, nil
}

// Remove deletes a single file. Directories are refused.
func Remove(path string) error {
	fi, err := os.Lstat(path)
	if err != nil {
		return err
	}
	if fi.IsDir() {
		return errors.New("refusing to delete a directory")
	}
	return os.Remove(path)
}
