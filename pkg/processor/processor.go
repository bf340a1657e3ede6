package processor

import (
	"context"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/xhad/jaundice/internal/types"
	"github.com/xhad/jaundice/pkg/dictionary"
)

const (
	// asciiPunctuation matches the punctuation set stripped from token ends.
	asciiPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

	// negationParticle is kept even though it is only two letters long.
	negationParticle = "не"

	minWordLength = 3
)

var quoteReplacer = strings.NewReplacer("«", "", "»", "", "…", "")

// Processor turns article plaintext into a jaundice rate.
type Processor struct {
	morph   types.Lemmatizer
	charged dictionary.WordSet
}

func New(morph types.Lemmatizer, charged dictionary.WordSet) *Processor {
	return &Processor{
		morph:   morph,
		charged: charged,
	}
}

// Process normalizes text and scores it. It returns the rate and the number
// of words that took part in scoring.
func (p *Processor) Process(ctx context.Context, text string) (float64, int, error) {
	words, err := SplitByWords(ctx, p.morph, text)
	if err != nil {
		return 0, 0, err
	}
	return CalculateJaundiceRate(words, p.charged), len(words), nil
}

// CleanWord strips quotes, ellipsis and surrounding punctuation.
func CleanWord(word string) string {
	word = quoteReplacer.Replace(word)
	return strings.Trim(word, asciiPunctuation)
}

// SplitByWords tokenizes text on whitespace and returns the base forms that
// take part in scoring. ctx is checked between tokens so a long article
// stops as soon as its deadline passes.
func SplitByWords(ctx context.Context, morph types.Lemmatizer, text string) ([]string, error) {
	var words []string
	for _, token := range strings.Fields(text) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		normalized := morph.Normalize(CleanWord(token))
		if utf8.RuneCountInString(normalized) >= minWordLength || normalized == negationParticle {
			words = append(words, normalized)
		}
	}
	return words, nil
}

// CalculateJaundiceRate returns the percentage of charged words in
// articleWords rounded to two decimals. An empty article scores 0.
func CalculateJaundiceRate(articleWords []string, charged dictionary.WordSet) float64 {
	if len(articleWords) == 0 {
		return 0.0
	}

	found := 0
	for _, word := range articleWords {
		if charged.Contains(word) {
			found++
		}
	}

	score := float64(found) / float64(len(articleWords)) * 100
	return math.Round(score*100) / 100
}
