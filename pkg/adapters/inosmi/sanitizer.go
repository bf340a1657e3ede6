// Package inosmi extracts article text from inosmi.ru pages.
package inosmi

import (
	"fmt"
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"

	"github.com/xhad/jaundice/pkg/adapters"
)

var articleSelectors = []string{
	"div.layout-article",
	"article.article",
}

var buzzSelectors = []string{
	"script",
	"style",
	"aside",
	"iframe",
	"noscript",
	"footer.article-footer",
	".article-disclaimer",
	".article-infoblock",
	".article-tags",
	".article-author",
	".social-share",
	".banner",
}

type Sanitizer struct {
	text *bluemonday.Policy
	html *bluemonday.Policy
}

func New() *Sanitizer {
	return &Sanitizer{
		text: bluemonday.StrictPolicy().AddSpaceWhenStrippingTag(true),
		html: bluemonday.UGCPolicy(),
	}
}

// Sanitize cuts the article out of page. With plaintext set the result
// carries no markup; otherwise it is the cleaned article HTML.
func (s *Sanitizer) Sanitize(page string, plaintext bool) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("parse page: %w", err)
	}

	article, err := adapters.FindSingle(doc, articleSelectors...)
	if err != nil {
		return "", err
	}

	adapters.RemoveBuzz(article, buzzSelectors...)
	adapters.StripAttributes(article)

	cleaned, err := goquery.OuterHtml(article)
	if err != nil {
		return "", fmt.Errorf("render article: %w", err)
	}

	if !plaintext {
		return strings.TrimSpace(s.html.Sanitize(cleaned)), nil
	}

	text := html.UnescapeString(s.text.Sanitize(cleaned))
	return strings.Join(strings.Fields(text), " "), nil
}
