package services

import (
	"regexp"
)

var BannedWords = []string{
	"fuck", "fucking", "fucker", "shit", "shitty", "bullshit",
	"asshole", "bastard", "bitch", "cunt",
	"porn", "porno", "nude", "nudes",
	"scam", "scammer", "phishing", "malware",
}

// ContentFilter screens free-text report descriptions. Descriptions are
// shown to moderators in the pending queue, so abusive language, links and
// personal contact details are refused.
type ContentFilter struct {
	bannedWordRegexps []*regexp.Regexp
	urlPattern        *regexp.Regexp
	emailPattern      *regexp.Regexp
	phonePattern      *regexp.Regexp
}

func NewContentFilter() *ContentFilter {
	f := &ContentFilter{
		bannedWordRegexps: make([]*regexp.Regexp, 0, len(BannedWords)),
		urlPattern:        regexp.MustCompile(`(?i)(https?://\S+|www\.\S+\.\S+)`),
		emailPattern:      regexp.MustCompile(`(?i)\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
		phonePattern:      regexp.MustCompile(`\d{3}[-.\s]?\d{3}[-.\s]?\d{4}|\(\d{3}\)\s*\d{3}[-.\s]?\d{4}`),
	}
	for _, word := range BannedWords {
		f.bannedWordRegexps = append(f.bannedWordRegexps, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(word)+`\b`))
	}
	return f
}

// Check returns "" when text is acceptable, otherwise a reason code.
func (f *ContentFilter) Check(text string) string {
	if text == "" {
		return ""
	}
	for _, re := range f.bannedWordRegexps {
		if re.MatchString(text) {
			return "inappropriate_language"
		}
	}
	if f.urlPattern.MatchString(text) {
		return "url_not_allowed"
	}
	if f.emailPattern.MatchString(text) || f.phonePattern.MatchString(text) {
		return "contact_info_not_allowed"
	}
	return ""
}

func RejectionMessage(reason string) string {
	switch reason {
	case "inappropriate_language":
		return "Description contains inappropriate language."
	case "url_not_allowed":
		return "URLs and web links are not allowed in the description."
	case "contact_info_not_allowed":
		return "Contact information is not allowed in the description."
	}
	return "Description does not meet our content guidelines."
}
