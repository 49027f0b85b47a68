package disclosure

import (
	"fmt"
	"regexp"
	"strings"
)

// DefaultKeywords are the title patterns used when none are configured.
var DefaultKeywords = []string{
	"(提|連)携",
	"協業",
	"締結",
	"開始",
	"リリース",
	"決定",
	"発売",
	"受賞",
	"パートナー",
	"認定",
	"承認",
	"導入",
	"採(用|択)",
	"特許",
	"受託",
}

// CompilePatterns compiles each keyword as a regular expression. Blank
// entries are skipped.
func CompilePatterns(keywords []string) ([]*regexp.Regexp, error) {
	patterns := make([]*regexp.Regexp, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		re, err := regexp.Compile(kw)
		if err != nil {
			return nil, fmt.Errorf("invalid keyword pattern %q: %w", kw, err)
		}
		patterns = append(patterns, re)
	}
	return patterns, nil
}

func matchesAny(title string, patterns []*regexp.Regexp) bool {
	for _, re := range patterns {
		if re.MatchString(title) {
			return true
		}
	}
	return false
}
