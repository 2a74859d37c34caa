package domain

import "time"

// Session is the immutable record of one intake request.
type Session struct {
	ID                 string           `json:"id"`
	CreatedAt          time.Time        `json:"createdAt"`
	Text               string           `json:"text"`
	Category           string           `json:"category"`
	Tags               []string         `json:"tags"`
	AIResponse         string           `json:"aiResponse"`
	MatchedTemplateIDs []string         `json:"matchedTemplateIds"`
	File               *UploadedFile    `json:"file"`
	Extracted          *ExtractedFields `json:"extracted"`
}

// LedgerState is the full persisted document: the template catalog copy and
// every recorded session in creation order.
type LedgerState struct {
	Pages    []Template `json:"pages"`
	Sessions []Session  `json:"sessions"`
}
