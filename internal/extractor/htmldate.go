package extractor

import (
	"bytes"
	"regexp"
	"strings"
	"time"

	"github.com/antchfx/htmlquery"

	"github.com/twfinlab/stocknews/internal/dates"
)

// Meta tag names carrying a publish date, in lookup order.
var dateMetaNames = []string{
	"article:published_time",
	"datePublished",
	"publishdate",
	"pubdate",
	"og:updated_time",
	"DC.date.issued",
}

var (
	isoDatePrefixRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
	pageTextDateRe  = regexp.MustCompile(`(20\d{2})年(\d{1,2})月(\d{1,2})日`)
)

// dateFromPage recovers a publish date from the raw page, in precedence
// order: meta tags, <time datetime>, dates embedded in the URL, and finally
// a Chinese-locale date anywhere in the page text.
func dateFromPage(pageHTML []byte, pageURL string) (string, bool) {
	doc, err := htmlquery.Parse(bytes.NewReader(pageHTML))
	if err != nil {
		return dates.FromURL(pageURL)
	}

	for _, name := range dateMetaNames {
		node, err := htmlquery.Query(doc,
			`//meta[@property='`+name+`' or @name='`+name+`']`)
		if err != nil || node == nil {
			continue
		}
		raw := htmlquery.SelectAttr(node, "content")
		if d, ok := isoPrefix(raw); ok {
			return d, true
		}
	}

	timeNodes, err := htmlquery.QueryAll(doc, `//time[@datetime]`)
	if err == nil {
		for _, node := range timeNodes {
			raw := htmlquery.SelectAttr(node, "datetime")
			if d, ok := isoPrefix(raw); ok {
				return d, true
			}
		}
	}

	if d, ok := dates.FromURL(pageURL); ok {
		return d, true
	}

	if m := pageTextDateRe.FindStringSubmatch(htmlquery.InnerText(doc)); m != nil {
		if d, ok := dates.Parse(m[0], time.Now()); ok {
			return d, true
		}
	}

	return "", false
}

// isoPrefix truncates an ISO-ish datetime string to its YYYY-MM-DD prefix.
func isoPrefix(raw string) (string, bool) {
	if i := strings.IndexByte(raw, 'T'); i >= 0 {
		raw = raw[:i]
	}
	if len(raw) > 10 {
		raw = raw[:10]
	}
	if isoDatePrefixRe.MatchString(raw) {
		return raw[:10], true
	}
	return "", false
}
