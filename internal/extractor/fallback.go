package extractor

import (
	"bytes"
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/twfinlab/stocknews/internal/types"
)

// Container heuristics for the fallback strategy, tried in order: semantic
// tag, then class-name shapes common across the five sources, then a loose
// id match.
var (
	bodyClassRe = regexp.MustCompile(`(?i)article.?(body|content|text)|news.?content|main.?content|articleContent|article-content|story-body`)
	bodyIDRe    = regexp.MustCompile(`(?i)article|content|main`)
)

// fallback re-fetches the page and extracts text with selector heuristics.
// Used when readability gives up on a page shape.
func (e *Extractor) fallback(ctx context.Context, rec types.LinkRecord) (types.Article, bool) {
	page, err := e.fetcher.Fetch(ctx, rec.URL)
	if err != nil {
		e.logger.Debug("fallback fetch failed", "url", rec.URL,
			"error", &types.ExtractError{URL: rec.URL, Strategy: "fallback", Err: err})
		return types.Article{}, false
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		return types.Article{}, false
	}

	title := firstText(doc, "h1", "h2", "title")

	body := findBody(doc)
	if body == nil {
		e.logger.Debug("fallback found no container", "url", rec.URL)
		return types.Article{}, false
	}

	body.Find("script,style,nav,footer,aside").Remove()
	text := blockText(body)
	if utf8.RuneCountInString(text) < MinBodyLen {
		return types.Article{}, false
	}

	pub, _ := dateFromPage(page.Body, rec.URL)

	return types.Article{
		Title:       title,
		Text:        text,
		PublishDate: pub,
		Source:      rec.Source,
		URL:         rec.URL,
	}, true
}

// findBody locates the article body container.
func findBody(doc *goquery.Document) *goquery.Selection {
	if sel := doc.Find("article").First(); sel.Length() > 0 {
		return sel
	}

	if sel := firstMatching(doc, "div[class]", "class", bodyClassRe); sel != nil {
		return sel
	}
	return firstMatching(doc, "div[id]", "id", bodyIDRe)
}

// firstMatching returns the first element whose attribute matches re.
func firstMatching(doc *goquery.Document, selector, attr string, re *regexp.Regexp) *goquery.Selection {
	var found *goquery.Selection
	doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		val, _ := s.Attr(attr)
		if re.MatchString(val) {
			found = s
			return false
		}
		return true
	})
	return found
}

// firstText returns the trimmed text of the first present selector.
func firstText(doc *goquery.Document, selectors ...string) string {
	for _, sel := range selectors {
		s := doc.Find(sel).First()
		if s.Length() > 0 {
			return strings.TrimSpace(s.Text())
		}
	}
	return ""
}

// blockText extracts the text content of a selection with each text node on
// its own line, so the cleaner's line filtering applies.
func blockText(sel *goquery.Selection) string {
	var parts []string
	for _, node := range sel.Nodes {
		collectText(node, &parts)
	}
	return strings.Join(parts, "\n")
}

func collectText(n *html.Node, parts *[]string) {
	if n.Type == html.TextNode {
		if s := strings.TrimSpace(n.Data); s != "" {
			*parts = append(*parts, s)
		}
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, parts)
	}
}
