// Package cleaner strips boilerplate from extracted article text: paywall
// spans, subscription prompts, ad markers, breadcrumbs, and the related-
// articles trailer some sources append after the body.
package cleaner

import (
	"regexp"
	"strings"
)

// Multi-line noise blocks removed wholesale before line filtering. The last
// pattern truncates everything after a 延伸閱讀 ("read more") trailer, which
// on CNA pages is followed only by recommendation lists and a copyright
// footer.
var blockPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?s)登入會員.{0,500}?解鎖全文`),
	regexp.MustCompile(`(?s)展開全文.{0,800}?免費試用\s*\d+\s*日`),
	regexp.MustCompile(`(?s)免費看獨家內容.{0,500}?立即啟動免費\s*\d+\s*日試閱`),
	regexp.MustCompile(`延伸閱讀[\s\S]*`),
}

// Line-level noise signatures, matched against the full trimmed line.
// Includes breadcrumb fragments (首頁, bare "/", short pure-number lines)
// and CNA-specific chrome (hashtags, privacy notice, update timestamps,
// app promos, copyright).
var noiseLineRe = regexp.MustCompile(
	`(?i)^(` +
		`廣告[\s廣告]*` +
		`|分享` +
		`|Loading\.\.\.` +
		`|展開全文.*` +
		`|免費看獨家內容.*` +
		`|登入會員.*` +
		`|免費試用\s*\d+\s*日.*` +
		`|立即啟動免費.*` +
		`|會員獨享.*` +
		`|全站內容隨你讀.*` +
		`|無廣告環境` +
		`|產業資料庫` +
		`|早安經濟日報` +
		`|每日免費電子報.*` +
		`|收藏[、，]追蹤新聞.*` +
		`|免費註冊.*解鎖全文.*` +
		`|有限額度觀看.*` +
		`|剩\s*\d*\s*篇` +
		`|#\S+` +
		`|請同意我們的隱私權規範.*` +
		`|（\d+/\d+\s+\d+:\d+\s*更新）` +
		`|請繼續下滑閱讀` +
		`|中央社.{0,6}一手新聞.{0,6}app` +
		`|本網站之文字、圖片及影音.*` +
		`|新聞專題` +
		`|首頁` +
		`|/` +
		`|\d{1,4}` +
		`)$`,
)

var blankRunRe = regexp.MustCompile(`\n{3,}`)

// Clean removes boilerplate from article body text. It is idempotent:
// cleaning already-cleaned text removes nothing further.
func Clean(text string) string {
	if text == "" {
		return text
	}

	for _, pat := range blockPatterns {
		text = pat.ReplaceAllString(text, "")
	}

	var kept []string
	for _, line := range strings.Split(text, "\n") {
		stripped := strings.TrimSpace(line)
		if stripped != "" && noiseLineRe.MatchString(stripped) {
			continue
		}
		kept = append(kept, line)
	}

	text = strings.Join(kept, "\n")
	text = blankRunRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
