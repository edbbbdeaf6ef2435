// Package dates normalizes the heterogeneous date representations found in
// Taiwanese news pages and URLs into canonical YYYY-MM-DD strings.
package dates

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/twfinlab/stocknews/internal/types"
)

var (
	relativeRe  = regexp.MustCompile(`(\d+)\s*(分鐘|小時)前`)
	yesterdayRe = regexp.MustCompile(`昨[天日]`)
	daysAgoRe   = regexp.MustCompile(`(\d+)\s*天前`)
	cjkDateRe   = regexp.MustCompile(`(\d{4})年(\d{1,2})月(\d{1,2})日`)
	slashDateRe = regexp.MustCompile(`(\d{4})[/-](\d{1,2})[/-](\d{1,2})`)
	partialRe   = regexp.MustCompile(`(\d{1,2})[月/](\d{1,2})[日]?`)

	// CNA article URLs embed the publish date: /news/afe/202602230019.aspx
	cnaURLRe = regexp.MustCompile(`(?i)/news/\w+/(20\d{2})(\d{2})(\d{2})\d+\.aspx`)
	// An 8-digit YYYYMMDD run inside a longer digit sequence. RE2 has no
	// lookbehind, so the leading non-digit (or start) is matched explicitly.
	compactURLRe = regexp.MustCompile(`(?:^|\D)(20\d{2})(0[1-9]|1[0-2])(0[1-9]|[12]\d|3[01])\d`)
	pathURLRe    = regexp.MustCompile(`/(\d{4})/(\d{1,2})/(\d{1,2})/`)
)

// Parse scans free-form text for a date, trying relative offsets first, then
// absolute Chinese-locale dates, slash/dash dates, and finally year-less
// partial dates resolved against now's year. It returns the canonical
// YYYY-MM-DD string and true on the first match, or ("", false) when nothing
// in the text looks like a date. Malformed input never causes an error; a
// non-matching pattern simply falls through to the next one.
func Parse(text string, now time.Time) (string, bool) {
	t := strings.TrimSpace(text)
	if t == "" {
		return "", false
	}

	if m := relativeRe.FindStringSubmatch(t); m != nil {
		n, _ := strconv.Atoi(m[1])
		var d time.Time
		if m[2] == "小時" {
			d = now.Add(-time.Duration(n) * time.Hour)
		} else {
			d = now.Add(-time.Duration(n) * time.Minute)
		}
		return d.Format(types.DateLayout), true
	}

	if yesterdayRe.MatchString(t) {
		return now.AddDate(0, 0, -1).Format(types.DateLayout), true
	}

	if m := daysAgoRe.FindStringSubmatch(t); m != nil {
		n, _ := strconv.Atoi(m[1])
		return now.AddDate(0, 0, -n).Format(types.DateLayout), true
	}

	if m := cjkDateRe.FindStringSubmatch(t); m != nil {
		return canonical(m[1], m[2], m[3]), true
	}

	if m := slashDateRe.FindStringSubmatch(t); m != nil {
		return canonical(m[1], m[2], m[3]), true
	}

	if m := partialRe.FindStringSubmatch(t); m != nil {
		return canonical(strconv.Itoa(now.Year()), m[1], m[2]), true
	}

	return "", false
}

// FromURL extracts a publish date embedded in a URL, trying the CNA article
// shape, then a compact YYYYMMDD digit run, then a /YYYY/MM/DD/ path
// segment. Returns ("", false) when the URL carries no recognizable date.
func FromURL(rawURL string) (string, bool) {
	if d, ok := FromCNAURL(rawURL); ok {
		return d, ok
	}

	if m := compactURLRe.FindStringSubmatch(rawURL); m != nil {
		d := fmt.Sprintf("%s-%s-%s", m[1], m[2], m[3])
		if _, err := time.Parse(types.DateLayout, d); err == nil {
			return d, true
		}
	}

	if m := pathURLRe.FindStringSubmatch(rawURL); m != nil {
		return canonical(m[1], m[2], m[3]), true
	}

	return "", false
}

// FromCNAURL extracts the date a CNA article URL embeds in its path
// (/news/<category>/YYYYMMDDNNNN.aspx). Non-article URLs yield ("", false).
func FromCNAURL(rawURL string) (string, bool) {
	m := cnaURLRe.FindStringSubmatch(rawURL)
	if m == nil {
		return "", false
	}
	return fmt.Sprintf("%s-%s-%s", m[1], m[2], m[3]), true
}

// canonical zero-pads month and day into YYYY-MM-DD.
func canonical(year, month, day string) string {
	m, _ := strconv.Atoi(month)
	d, _ := strconv.Atoi(day)
	return fmt.Sprintf("%s-%02d-%02d", year, m, d)
}
