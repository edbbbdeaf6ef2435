package collector

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/twfinlab/stocknews/internal/dates"
	"github.com/twfinlab/stocknews/internal/fetcher"
	"github.com/twfinlab/stocknews/internal/types"
)

// CNA searches www.cna.com.tw. Result anchors end in a "YYYY/MM/DD HH:MM"
// timestamp while navigation links do not, which disambiguates articles
// from chrome. The URL-embedded date is checked against the requested range
// as well, because anchor text and URL can disagree.
type CNA struct{}

var cnaAnchorSuffixRe = regexp.MustCompile(`\d{4}/\d{2}/\d{2}\s+\d{2}:\d{2}$`)

func (CNA) Source() types.Source { return types.SourceCNA }

func (CNA) DateFiltered() bool { return false }

func (CNA) PageURL(keyword string, _ types.DateRange, page int) string {
	return fmt.Sprintf("https://www.cna.com.tw/search/hysearchws.aspx?q=%s&page=%d",
		url.QueryEscape(keyword), page)
}

func (CNA) Wait() fetcher.RenderWait {
	return fetcher.RenderWait{
		Selector:      "a[href*='/news/'][href$='.aspx']",
		Timeout:       12 * time.Second,
		FallbackSleep: 3 * time.Second,
		Settle:        1500 * time.Millisecond,
	}
}

func (CNA) Links(pageHTML string, dr types.DateRange) []string {
	doc := parseDoc(pageHTML)

	var links []string
	seen := make(map[string]struct{})
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if strings.HasPrefix(href, "/") {
			href = "https://www.cna.com.tw" + href
		}
		if !cnaAnchorSuffixRe.MatchString(strings.TrimSpace(a.Text())) {
			return
		}
		urlDate, ok := dates.FromCNAURL(href)
		if !ok || !dr.Contains(urlDate) {
			return
		}
		u, err := url.Parse(href)
		if err != nil {
			return
		}
		if u.Host != "www.cna.com.tw" || !strings.Contains(u.Path, "/news/") || !strings.HasSuffix(u.Path, ".aspx") {
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
