// Package adapters holds what publisher-specific sanitizers share.
package adapters

import (
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrArticleNotFound is returned when a page lacks the structure a
// sanitizer expects from its publisher.
var ErrArticleNotFound = errors.New("article not found")

// FindSingle returns the only element matching the first selector that
// matches anything. Zero or several matches yield ErrArticleNotFound.
func FindSingle(doc *goquery.Document, selectors ...string) (*goquery.Selection, error) {
	for _, selector := range selectors {
		found := doc.Find(selector)
		switch found.Length() {
		case 0:
			continue
		case 1:
			return found, nil
		default:
			return nil, ErrArticleNotFound
		}
	}
	return nil, ErrArticleNotFound
}

// RemoveBuzz drops every descendant of sel matching one of selectors.
func RemoveBuzz(sel *goquery.Selection, selectors ...string) {
	if len(selectors) == 0 {
		return
	}
	sel.Find(strings.Join(selectors, ", ")).Remove()
}

// StripAttributes removes all attributes from sel and its descendants.
func StripAttributes(sel *goquery.Selection) {
	sel.Find("*").AddSelection(sel).Each(func(_ int, s *goquery.Selection) {
		for _, node := range s.Nodes {
			node.Attr = nil
		}
	})
}
