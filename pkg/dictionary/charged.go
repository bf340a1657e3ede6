// Package dictionary loads the charged word lists used for scoring.
package dictionary

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// WordSet is an immutable set of normalized charged words. It is built once
// at startup and shared read-only between pipelines.
type WordSet map[string]struct{}

// NewWordSet builds a set from words, skipping blanks.
func NewWordSet(words ...string) WordSet {
	set := make(WordSet, len(words))
	for _, w := range words {
		w = strings.TrimRight(w, " \t\r\n")
		if w == "" {
			continue
		}
		set[w] = struct{}{}
	}
	return set
}

func (s WordSet) Contains(word string) bool {
	_, ok := s[word]
	return ok
}

func (s WordSet) Len() int {
	return len(s)
}

// Normalize returns a new set with every word passed through fn, so that
// the set speaks the same vocabulary as the normalized article words.
func (s WordSet) Normalize(fn func(string) string) WordSet {
	out := make(WordSet, len(s))
	for w := range s {
		if n := fn(w); n != "" {
			out[n] = struct{}{}
		}
	}
	return out
}

// Load reads a word list from path. If path is a directory every *.txt file
// inside it is merged into the set.
func Load(path string) (WordSet, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat charged dictionary: %w", err)
	}
	if info.IsDir() {
		return LoadDir(path)
	}

	set := WordSet{}
	if err := readInto(set, path); err != nil {
		return nil, err
	}
	return set, nil
}

// LoadDir merges every *.txt word list in dir.
func LoadDir(dir string) (WordSet, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		return nil, fmt.Errorf("list charged dictionaries: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no *.txt word lists in %s", dir)
	}
	sort.Strings(files)

	set := WordSet{}
	for _, f := range files {
		if err := readInto(set, f); err != nil {
			return nil, err
		}
	}
	return set, nil
}

func readInto(set WordSet, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open word list: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		word := strings.TrimRight(scanner.Text(), " \t\r")
		if word == "" {
			continue
		}
		set[word] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read word list %s: %w", path, err)
	}
	return nil
}
