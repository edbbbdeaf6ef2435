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

// UDN searches money.udn.com. The search URL carries the date range, so the
// remote side filters by date and collected links are marked date-filtered.
type UDN struct{}

func (UDN) Source() types.Source { return types.SourceUDN }

func (UDN) DateFiltered() bool { return true }

func (UDN) PageURL(keyword string, dr types.DateRange, page int) string {
	return fmt.Sprintf("https://money.udn.com/search/result/1001/%s?start_date=%s&end_date=%s&page=%d",
		url.QueryEscape(keyword), dr.StartString(), dr.EndString(), page+1)
}

func (UDN) Wait() fetcher.RenderWait {
	return fetcher.RenderWait{
		Selector:      "a[href*='money.udn.com/money/story']",
		Timeout:       10 * time.Second,
		FallbackSleep: 3 * time.Second,
	}
}

func (UDN) Links(pageHTML string, _ types.DateRange) []string {
	doc := parseDoc(pageHTML)

	var links []string
	seen := make(map[string]struct{})
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if !strings.Contains(href, "money.udn.com/money/story") {
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
