package util

import "strings"

// DefaultTag is used when a description carries no hashtags.
const DefaultTag = "startup"

// ExtractTags derives topic tags from a free-text description.
//
// The description is split on whitespace and every token starting with '#' contributes
// the rest of the token. Order of first appearance is kept and duplicates are not removed.
// No case folding or punctuation stripping happens, so "#AI," yields "AI," and a lone "#"
// yields the empty string. A description without hashtags yields []string{"startup"}.
func ExtractTags(description string) []string {
	var tags []string
	for _, word := range strings.Fields(description) {
		if strings.HasPrefix(word, "#") {
			tags = append(tags, word[1:])
		}
	}
	if len(tags) == 0 {
		return []string{DefaultTag}
	}
	return tags
}
