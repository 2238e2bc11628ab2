// Package dict loads steno dictionaries and serves reverse lookups from
// output text to the outlines that produce it.
package dict

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"stenotape/internal/suggest"
)

// lookupMods are the brace templates a piece of output may be defined
// under. A lookup for "pre" also matches the prefix entry "{pre^}", and
// a fingerspelled letter matches its glue entry.
var lookupMods = []string{"%s", "{^%s}", "{^%s^}", "{%s^}", "{&%s}"}

// Index is an in-memory reverse index over one or more dictionary
// files. Lookups are safe while a reload swaps the contents.
type Index struct {
	paths []string

	mu      sync.RWMutex
	byText  map[string][]suggest.Candidate
	entries int
}

// Open loads the given dictionary files into a new index. Files that
// fail to load are reported through the returned error while the rest
// still serve; the index is usable whenever it is non-nil.
func Open(paths []string) (*Index, error) {
	ix := &Index{paths: paths}
	err := ix.Reload()
	return ix, err
}

// Reload reads every dictionary file again and swaps the index in one
// step. A file that fails to load contributes nothing until it loads
// cleanly again.
func (ix *Index) Reload() error {
	byText := make(map[string][]suggest.Candidate)
	var errs []error

	for _, path := range ix.paths {
		m, err := loadFile(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("load dictionary %s: %w", path, err))
			continue
		}
		for text, cands := range m {
			byText[text] = append(byText[text], cands...)
		}
	}

	entries := 0
	for _, cands := range byText {
		sort.SliceStable(cands, func(i, j int) bool {
			if cands[i].Strokes != cands[j].Strokes {
				return cands[i].Strokes < cands[j].Strokes
			}
			return cands[i].String() < cands[j].String()
		})
		entries += len(cands)
	}

	ix.mu.Lock()
	ix.byText = byText
	ix.entries = entries
	ix.mu.Unlock()

	return errors.Join(errs...)
}

// Lookup returns the outlines defined for text. Besides the exact
// definition it checks the trimmed and lowercased forms and the brace
// templates, so prefix, suffix, infix and glue entries are found too.
// Outlines for a given definition come back fewest strokes first.
func (ix *Index) Lookup(text string) []suggest.Candidate {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	var out []suggest.Candidate
	for _, form := range queryForms(text) {
		for _, mod := range lookupMods {
			out = append(out, ix.byText[fmt.Sprintf(mod, form)]...)
		}
	}
	return out
}

// Entries reports how many definitions are currently loaded.
func (ix *Index) Entries() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.entries
}

// Paths returns the dictionary files backing the index.
func (ix *Index) Paths() []string {
	return ix.paths
}

// queryForms lists the variants of text worth looking up, in order and
// without duplicates.
func queryForms(text string) []string {
	forms := make([]string, 0, 4)
	seen := make(map[string]bool, 4)
	add := func(s string) {
		if s != "" && !seen[s] {
			seen[s] = true
			forms = append(forms, s)
		}
	}
	add(text)
	add(strings.Trim(text, " "))
	add(strings.ToLower(text))
	add(strings.ToLower(strings.Trim(text, " ")))
	return forms
}

func loadFile(path string) (map[string][]suggest.Candidate, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return loadJSON(path)
	case ".sqlite", ".sqlite3", ".db":
		return loadSQLite(path)
	default:
		return nil, fmt.Errorf("unsupported dictionary format %q", filepath.Ext(path))
	}
}
