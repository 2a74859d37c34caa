package analysis

import (
	"regexp"
	"strings"

	"github.com/kirillkom/legal-intake/internal/core/domain"
)

var (
	// Label "ФИО", any mix of colons and whitespace, then a run of word
	// characters and horizontal whitespace.
	namePattern = regexp.MustCompile(`(?i)ФИО[:\s]+([\p{L}\p{M}\p{N}_\t ]+)`)
	// DD.MM.YYYY shaped token, not validated as a calendar date.
	datePattern = regexp.MustCompile(`\d{2}\.\d{2}\.\d{4}`)
)

// ExtractFields runs the name and date searches independently against
// content. Fields without a match stay nil.
func ExtractFields(content string) domain.ExtractedFields {
	var fields domain.ExtractedFields

	if m := namePattern.FindStringSubmatch(content); m != nil {
		if name := strings.TrimSpace(m[1]); name != "" {
			fields.Name = &name
		}
	}
	if date := datePattern.FindString(content); date != "" {
		fields.Date = &date
	}
	return fields
}
