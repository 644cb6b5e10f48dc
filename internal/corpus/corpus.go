// Package corpus discovers the configuration files a scan run should
// process and exposes them as line-addressable feeds.
package corpus

import (
	"bufio"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"sort"

	doublestar "github.com/bmatcuk/doublestar/v4"
)

// File is one discovered source file, pre-loaded into memory — the twin
// engine never touches the filesystem itself.
type File struct {
	Name  string
	lines []string
}

// Lines yields every line with its 1-based line number, in order.
func (f File) Lines() iter.Seq2[int, string] {
	return func(yield func(int, string) bool) {
		for i, line := range f.lines {
			if !yield(i+1, line) {
				return
			}
		}
	}
}

// Raw returns the file's lines as a plain slice, 0-indexed — used by
// xref.Builder, which addresses lines by slice position rather than
// iterating.
func (f File) Raw() []string { return f.lines }

// Discover walks root, matching "**/*.cfg" by default (or patterns, if
// given) and dropping anything matched by excludes: excludes are
// resolved to a set first, then includes are resolved while skipping
// anything already in that set.
func Discover(root string, patterns, excludes []string) ([]File, error) {
	if len(patterns) == 0 {
		patterns = []string{"**/*.cfg"}
	}
	fsys := os.DirFS(root)
	globOpts := []doublestar.GlobOption{doublestar.WithFilesOnly(), doublestar.WithNoFollow()}

	excludeSet := map[string]bool{}
	for _, p := range excludes {
		matched, err := doublestar.Glob(fsys, p, globOpts...)
		if err != nil {
			return nil, fmt.Errorf("corpus: exclude glob %q: %w", p, err)
		}
		for _, m := range matched {
			excludeSet[m] = true
		}
	}

	resolved := map[string]bool{}
	for _, pattern := range patterns {
		matched, err := doublestar.Glob(fsys, pattern, globOpts...)
		if err != nil {
			return nil, fmt.Errorf("corpus: glob %q: %w", pattern, err)
		}
		for _, m := range matched {
			if excludeSet[m] {
				continue
			}
			resolved[m] = true
		}
	}

	names := make([]string, 0, len(resolved))
	for name := range resolved {
		names = append(names, name)
	}
	sort.Strings(names)

	files := make([]File, 0, len(names))
	for _, name := range names {
		lines, err := readLines(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("corpus: reading %s: %w", name, err)
		}
		files = append(files, File{Name: filepath.Join(root, name), lines: lines})
	}
	return files, nil
}

func readLines(fsys fs.FS, name string) ([]string, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
