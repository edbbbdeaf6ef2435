package collector

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/twfinlab/stocknews/internal/fetcher"
	"github.com/twfinlab/stocknews/internal/types"
)

// LTN searches search.ltn.com.tw, a single-page app that renders results
// with JavaScript. The query carries the date range in compact YYYYMMDD
// form, so collected links are marked date-filtered. Article URLs end in a
// numeric ID; anything else is category chrome.
type LTN struct{}

var ltnArticleRe = regexp.MustCompile(`/\d{6,}$`)

func (LTN) Source() types.Source { return types.SourceLTN }

func (LTN) DateFiltered() bool { return true }

func (LTN) PageURL(keyword string, dr types.DateRange, page int) string {
	compact := func(s string) string { return strings.ReplaceAll(s, "-", "") }
	return fmt.Sprintf("https://search.ltn.com.tw/list?keyword=%s&type=business&sort=date&start_time=%s&end_time=%s&page=%d",
		url.QueryEscape(keyword), compact(dr.StartString()), compact(dr.EndString()), page+1)
}

func (LTN) Wait() fetcher.RenderWait {
	return fetcher.RenderWait{
		Selector:      "a[href*='news.ltn.com.tw'], a[href*='ec.ltn.com.tw']",
		Timeout:       15 * time.Second,
		FallbackSleep: 4 * time.Second,
	}
}

func (LTN) Links(pageHTML string, _ types.DateRange) []string {
	doc := parseDoc(pageHTML)

	var links []string
	seen := make(map[string]struct{})
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		u, err := url.Parse(href)
		if err != nil {
			return
		}
		if !strings.Contains(u.Host, "ltn.com.tw") || u.Host == "search.ltn.com.tw" {
			return
		}
		if !ltnArticleRe.MatchString(u.Path) {
			return
		}
		clean := types.NormalizeURL(href)
		if _, ok := seen[clean]; !ok {
			seen[clean] = struct{}{}
			links = append(links, clean)
		}
	})
	return links
}
