// Package morph provides the morphological normalizer that maps inflected
// Russian word forms to their dictionary base form.
package morph

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/kljensen/snowball"
)

// Fallback normalizes words missing from the lemma dictionary. It receives
// the lower-cased word.
type Fallback func(word string) string

// Lower keeps the word as is.
func Lower(word string) string {
	return word
}

// Snowball reduces the word to its Russian Snowball stem.
func Snowball(word string) string {
	stem, err := snowball.Stem(word, "russian", true)
	if err != nil || stem == "" {
		return word
	}
	return stem
}

// FallbackByName resolves the dictionaries.fallback config value.
func FallbackByName(name string) (Fallback, error) {
	switch strings.ToLower(name) {
	case "", "lower":
		return Lower, nil
	case "snowball":
		return Snowball, nil
	default:
		return nil, fmt.Errorf("unknown morph fallback %q", name)
	}
}

// Dictionary is a form -> lemma lookup table. It is loaded once per process
// and never modified afterwards, so concurrent Normalize calls are safe.
type Dictionary struct {
	lemmas   map[string]string
	fallback Fallback
}

// NewDictionary wraps an in-memory table. Keys must be lower case.
func NewDictionary(lemmas map[string]string, fallback Fallback) *Dictionary {
	if fallback == nil {
		fallback = Lower
	}
	if lemmas == nil {
		lemmas = map[string]string{}
	}
	return &Dictionary{lemmas: lemmas, fallback: fallback}
}

// LoadDictionary reads a tab separated "form<TAB>lemma" file. Files ending in
// .gz are decompressed on the fly. Empty path yields a dictionary that only
// applies the fallback.
func LoadDictionary(path string, fallback Fallback) (*Dictionary, error) {
	if path == "" {
		return NewDictionary(nil, fallback), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open lemma dictionary: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("open gzip lemma dictionary: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	lemmas, err := parseTSV(r)
	if err != nil {
		return nil, fmt.Errorf("read lemma dictionary %s: %w", path, err)
	}
	return NewDictionary(lemmas, fallback), nil
}

func parseTSV(r io.Reader) (map[string]string, error) {
	lemmas := map[string]string{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		form, lemma, ok := strings.Cut(text, "\t")
		if !ok {
			return nil, fmt.Errorf("line %d: expected form<TAB>lemma", line)
		}
		form = strings.ToLower(strings.TrimSpace(form))
		lemma = strings.ToLower(strings.TrimSpace(lemma))
		if form == "" || lemma == "" {
			return nil, fmt.Errorf("line %d: empty form or lemma", line)
		}
		// first entry wins for ambiguous forms, like taking the most probable parse
		if _, exists := lemmas[form]; !exists {
			lemmas[form] = lemma
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lemmas, nil
}

// Normalize returns the base form of word in lower case.
func (d *Dictionary) Normalize(word string) string {
	lower := strings.ToLower(word)
	if lemma, ok := d.lemmas[lower]; ok {
		return lemma
	}
	return d.fallback(lower)
}

// Len reports the number of known word forms.
func (d *Dictionary) Len() int {
	return len(d.lemmas)
}
