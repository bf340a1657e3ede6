package adapters

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, page string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	require.NoError(t, err)
	return doc
}

func TestFindSingle(t *testing.T) {
	doc := parse(t, `<div class="a">one</div><div class="b">two</div><div class="b">three</div>`)

	sel, err := FindSingle(doc, "div.missing", "div.a", "div.b")
	require.NoError(t, err)
	assert.Equal(t, "one", sel.Text())

	_, err = FindSingle(doc, "div.b")
	assert.ErrorIs(t, err, ErrArticleNotFound)

	_, err = FindSingle(doc, "section")
	assert.ErrorIs(t, err, ErrArticleNotFound)
}

func TestRemoveBuzzAndStripAttributes(t *testing.T) {
	doc := parse(t, `<article class="x" id="main"><p style="color:red">text</p><aside>ad</aside><script>x()</script></article>`)
	sel := doc.Find("article")

	RemoveBuzz(sel, "aside", "script")
	StripAttributes(sel)

	html, err := goquery.OuterHtml(sel)
	require.NoError(t, err)
	assert.Equal(t, "<article><p>text</p></article>", html)
}
