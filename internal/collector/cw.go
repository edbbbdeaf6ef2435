package collector

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/twfinlab/stocknews/internal/fetcher"
	"github.com/twfinlab/stocknews/internal/types"
)

// CW searches www.cw.com.tw. The search UI has no date parameter; results
// are filtered by publish date downstream.
type CW struct{}

func (CW) Source() types.Source { return types.SourceCW }

func (CW) DateFiltered() bool { return false }

func (CW) PageURL(keyword string, _ types.DateRange, page int) string {
	return fmt.Sprintf("https://www.cw.com.tw/search/doSearch.action?key=%s&channel=all&sort=desc&page=%d",
		url.QueryEscape(keyword), page+1)
}

func (CW) Wait() fetcher.RenderWait {
	return fetcher.RenderWait{
		Selector:      "a[href*='/article/']",
		Timeout:       10 * time.Second,
		FallbackSleep: 3 * time.Second,
	}
}

func (CW) Links(pageHTML string, _ types.DateRange) []string {
	doc := parseDoc(pageHTML)

	var links []string
	seen := make(map[string]struct{})
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if strings.HasPrefix(href, "/") {
			href = "https://www.cw.com.tw" + href
		}
		u, err := url.Parse(href)
		if err != nil {
			return
		}
		if u.Host != "www.cw.com.tw" || !strings.Contains(u.Path, "/article/") {
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
