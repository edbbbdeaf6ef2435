package pipeline

import (
	"strings"

	"github.com/twfinlab/stocknews/internal/types"
)

// filter applies the post-extraction filters in order: keyword relevance,
// title deduplication, then the final date-range check. Articles with no
// resolvable date survive the range check; dropping them would discard
// sources that simply never expose a publish date.
func (p *Pipeline) filter(articles []types.Article) []types.Article {
	titles := NewDeduplicator(len(articles))
	kept := articles[:0]

	for _, a := range articles {
		if !relevant(a, p.keyword) {
			p.metrics.Irrelevant.Add(1)
			p.logger.Debug("irrelevant article dropped", "title", a.Title, "url", a.URL)
			continue
		}

		// Empty titles dedupe like any other key, so at most one
		// untitled article survives.
		if !titles.Mark(strings.TrimSpace(a.Title)) {
			p.metrics.DuplicateTitle.Add(1)
			continue
		}

		if a.PublishDate != "" && !p.dr.Contains(a.PublishDate) {
			p.metrics.OutOfRange.Add(1)
			p.logger.Debug("out-of-range article dropped",
				"title", a.Title, "date", a.PublishDate)
			continue
		}

		kept = append(kept, a)
	}

	return kept
}

// relevant reports whether the article mentions the keyword in its title or
// body. An empty keyword keeps everything.
func relevant(a types.Article, keyword string) bool {
	if keyword == "" {
		return true
	}
	return strings.Contains(a.Title, keyword) || strings.Contains(a.Text, keyword)
}
