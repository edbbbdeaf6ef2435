package collector

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"github.com/twfinlab/stocknews/internal/fetcher"
	"github.com/twfinlab/stocknews/internal/types"
)

// Yahoo searches tw.news.search.yahoo.com and keeps only results whose
// source label is "Yahoo股市". The label-anchored XPath pass runs first;
// when it finds nothing, a looser container scan over the same page takes
// over.
type Yahoo struct{}

const yahooSourceLabel = "Yahoo股市"

var yahooContainerRe = []*regexp.Regexp{
	regexp.MustCompile(`(?i)js-stream-content|StreamMegaItem`),
	regexp.MustCompile(`(?i)NewsArticle|stream|news-item`),
}

func (Yahoo) Source() types.Source { return types.SourceYahoo }

func (Yahoo) DateFiltered() bool { return false }

func (Yahoo) PageURL(keyword string, _ types.DateRange, page int) string {
	// Yahoo paginates by result offset: b=1, 11, 21, ...
	return fmt.Sprintf("https://tw.news.search.yahoo.com/search?p=%s&fr=finance&fr2=piv-web&b=%d",
		url.QueryEscape(keyword), page*10+1)
}

func (Yahoo) Wait() fetcher.RenderWait {
	return fetcher.RenderWait{Selector: "body", Timeout: 10 * time.Second, Settle: 2500 * time.Millisecond}
}

func (y Yahoo) Links(pageHTML string, _ types.DateRange) []string {
	links := y.xpathLinks(pageHTML)
	if len(links) == 0 {
		links = y.containerLinks(pageHTML)
	}
	return links
}

// xpathLinks anchors on elements whose text carries the source label and
// walks up to eight ancestor levels looking for the result's article link.
func (Yahoo) xpathLinks(pageHTML string) []string {
	doc, err := htmlquery.Parse(strings.NewReader(pageHTML))
	if err != nil {
		return nil
	}

	labels, err := htmlquery.QueryAll(doc,
		`//*[contains(normalize-space(text()),'`+yahooSourceLabel+`')]`)
	if err != nil {
		return nil
	}

	var links []string
	seen := make(map[string]struct{})
	for _, label := range labels {
		container := label
		for depth := 0; depth < 8 && container != nil; depth++ {
			container = container.Parent
			if container == nil || container.Type != html.ElementNode {
				continue
			}
			anchors, err := htmlquery.QueryAll(container,
				`.//a[contains(@href,'tw.stock.yahoo.com/news/')]`)
			if err != nil || len(anchors) == 0 {
				continue
			}
			href := htmlquery.SelectAttr(anchors[0], "href")
			clean := types.NormalizeURL(href)
			if _, ok := seen[clean]; !ok {
				seen[clean] = struct{}{}
				links = append(links, clean)
			}
			break
		}
	}
	return links
}

// containerLinks scans result containers by class heuristics, falling back
// to bare list items, and keeps the first stock-news anchor per container
// whose text mentions the source label.
func (Yahoo) containerLinks(pageHTML string) []string {
	doc := parseDoc(pageHTML)

	var containers *goquery.Selection
	for _, re := range yahooContainerRe {
		containers = doc.Find("li,div").FilterFunction(func(_ int, s *goquery.Selection) bool {
			class, _ := s.Attr("class")
			return re.MatchString(class)
		})
		if containers.Length() > 0 {
			break
		}
	}
	if containers == nil || containers.Length() == 0 {
		containers = doc.Find("li")
	}

	var links []string
	seen := make(map[string]struct{})
	containers.Each(func(_ int, item *goquery.Selection) {
		if !strings.Contains(item.Text(), yahooSourceLabel) {
			return
		}
		item.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
			href, _ := a.Attr("href")
			u, err := url.Parse(href)
			if err != nil {
				return true
			}
			if u.Host != "tw.stock.yahoo.com" || !strings.HasPrefix(u.Path, "/news/") {
				return true
			}
			clean := types.NormalizeURL(href)
			if _, ok := seen[clean]; !ok {
				seen[clean] = struct{}{}
				links = append(links, clean)
			}
			return false
		})
	})
	return links
}
