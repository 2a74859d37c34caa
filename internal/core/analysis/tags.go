package analysis

import "strings"

// MaxTags bounds the number of tags derived from a submission.
const MaxTags = 3

// DeriveTags returns the first MaxTags whitespace-delimited tokens of text in
// their original order and case. It is a lexical placeholder: no stemming,
// deduplication or normalization is applied.
func DeriveTags(text string) []string {
	tags := make([]string, 0, MaxTags)
	for _, token := range strings.Fields(text) {
		if len(tags) == MaxTags {
			break
		}
		tags = append(tags, token)
	}
	return tags
}
