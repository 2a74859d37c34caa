// Package matching selects catalog templates relevant to a submission.
package matching

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/kirillkom/legal-intake/internal/core/domain"
)

// Match returns the templates relevant to a submission, in catalog order.
//
// A non-empty category restricts candidates to templates whose ID starts with
// it; an empty category disables the filter. A candidate is relevant when it
// shares a tag with tags (exact, case-sensitive) or when any lower-cased
// token of text occurs in its content, ignoring case.
func Match(category string, tags []string, text string, templates []domain.Template) []domain.Template {
	lower := cases.Lower(language.Und)
	tokens := strings.Fields(lower.String(norm.NFC.String(text)))

	tagSet := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tagSet[tag] = struct{}{}
	}

	out := make([]domain.Template, 0)
	for _, tpl := range templates {
		if category != "" && !tpl.InCategory(category) {
			continue
		}
		if sharesTag(tpl.Tags, tagSet) || mentionsToken(lower.String(norm.NFC.String(tpl.Content)), tokens) {
			out = append(out, tpl)
		}
	}
	return out
}

// IDs returns the template identifiers in order.
func IDs(templates []domain.Template) []string {
	ids := make([]string, 0, len(templates))
	for _, tpl := range templates {
		ids = append(ids, tpl.ID)
	}
	return ids
}

func sharesTag(templateTags []string, tagSet map[string]struct{}) bool {
	for _, tag := range templateTags {
		if _, ok := tagSet[tag]; ok {
			return true
		}
	}
	return false
}

func mentionsToken(content string, tokens []string) bool {
	for _, token := range tokens {
		if token != "" && strings.Contains(content, token) {
			return true
		}
	}
	return false
}
