package types

import (
	"net/url"
	"strings"
)

// Source identifies one of the five supported news origins.
type Source string

const (
	SourceYahoo Source = "Yahoo股市"
	SourceUDN   Source = "經濟日報"
	SourceCW    Source = "天下雜誌"
	SourceLTN   Source = "自由時報"
	SourceCNA   Source = "中央社"
)

// Sources lists all supported sources in collection order.
func Sources() []Source {
	return []Source{SourceYahoo, SourceUDN, SourceCW, SourceLTN, SourceCNA}
}

// Article is a single extracted news article.
type Article struct {
	// Title is the article headline.
	Title string `json:"title" bson:"title"`

	// Text is the cleaned article body.
	Text string `json:"text" bson:"text"`

	// PublishDate is the canonical YYYY-MM-DD publish date, or empty if
	// no date could be resolved.
	PublishDate string `json:"publish_date" bson:"publish_date"`

	// Source identifies which news origin the article came from.
	Source Source `json:"source" bson:"source"`

	// URL is the normalized article URL.
	URL string `json:"url" bson:"url"`
}

// LinkRecord is a collected article URL tagged with its origin.
type LinkRecord struct {
	// URL is the normalized article URL.
	URL string

	// Source identifies the collector that discovered the link.
	Source Source

	// DateFiltered is true when the originating search already constrained
	// results to the requested date range. It justifies backfilling a
	// missing publish date from the range start.
	DateFiltered bool
}

// NormalizeURL reduces a URL to scheme+host+path for deduplication,
// dropping query string and fragment. Invalid URLs are returned unchanged.
func NormalizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return rawURL
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.RawQuery = ""
	u.Fragment = ""
	u.User = nil
	return u.String()
}
