package requisite

import (
	"regexp"
	"strings"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)

	// Leading boilerplate labels the catalog prepends to requisite text.
	labelPrefixes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^pre-requisites\s+or\s+concurrent:\s*`),
		regexp.MustCompile(`(?i)^prerequisite:\s*`),
	}
)

// Normalize collapses whitespace runs to single spaces and trims the ends.
// Empty input yields empty output, which downstream treats as "no
// requirement".
func Normalize(text string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(text, " "))
}

// stripLabels removes known leading boilerplate phrases by case-insensitive
// prefix match.
func stripLabels(text string) string {
	for _, re := range labelPrefixes {
		text = re.ReplaceAllString(text, "")
	}
	return strings.TrimSpace(text)
}
