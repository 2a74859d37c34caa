package domain

import "strings"

// Template is a read-only reference document. The ID prefix carries the
// category it belongs to, e.g. "civil-1".
type Template struct {
	ID      string   `json:"id" yaml:"id"`
	Title   string   `json:"title" yaml:"title"`
	Tags    []string `json:"tags" yaml:"tags"`
	Content string   `json:"content" yaml:"content"`
}

type TemplateSummary struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func (t Template) Summary() TemplateSummary {
	return TemplateSummary{ID: t.ID, Title: t.Title}
}

func (t Template) InCategory(category string) bool {
	return strings.HasPrefix(t.ID, category)
}
