package services

import (
	"regexp"
	"strings"
)

var bannedWords = []string{
	"fuck", "fucking", "fucker", "shit", "shitty", "bullshit",
	"ass", "asshole", "bastard", "bitch", "cunt",
	"nigger", "nigga", "chink", "spic", "kike", "faggot", "fag",
	"retard", "retarded", "tranny",
	"porn", "porno", "nude", "nudes",
}

// ContentFilter screens free-text guesses (baby names) before they are shown
// to every guest of an event.
type ContentFilter struct {
	bannedWordRegexps []*regexp.Regexp
	urlPattern        *regexp.Regexp
	emailPattern      *regexp.Regexp
}

func NewContentFilter() *ContentFilter {
	f := &ContentFilter{
		bannedWordRegexps: make([]*regexp.Regexp, 0, len(bannedWords)),
		urlPattern:        regexp.MustCompile(`(?i)(https?://\S+|www\.\S+\.\S+)`),
		emailPattern:      regexp.MustCompile(`(?i)\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
	}
	for _, word := range bannedWords {
		f.bannedWordRegexps = append(f.bannedWordRegexps, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(word)+`\b`))
	}
	return f
}

// Check returns "" when text is acceptable, otherwise a short reason code.
func (f *ContentFilter) Check(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	for _, re := range f.bannedWordRegexps {
		if re.MatchString(text) {
			return "profanity"
		}
	}
	if f.urlPattern.MatchString(text) {
		return "url"
	}
	if f.emailPattern.MatchString(text) {
		return "email"
	}
	if hasRun(strings.ToLower(text), 4) {
		return "spam"
	}
	return ""
}

// hasRun reports whether any rune repeats n or more times in a row.
func hasRun(text string, n int) bool {
	var prev rune
	count := 0
	for _, r := range text {
		if r == prev {
			count++
		} else {
			prev, count = r, 1
		}
		if count >= n && r != ' ' {
			return true
		}
	}
	return false
}
