package domain

import (
	"io"
	"time"
)

// Submission is one analyze-and-record request. It is never persisted as-is.
type Submission struct {
	Text     string
	Category string
	Document *DocumentUpload
}

// DocumentUpload is an attached file as received from the transport.
type DocumentUpload struct {
	OriginalName string
	MimeType     string
	Body         io.Reader
}

type ExtractedFields struct {
	Name *string `json:"name"`
	Date *string `json:"date"`
}

// UploadedFile describes a document after it has been stored.
type UploadedFile struct {
	StoredName   string `json:"storedName"`
	OriginalName string `json:"originalName"`
	MimeType     string `json:"mimeType,omitempty"`
	Locator      string `json:"locator,omitempty"`
}

type StoredFile struct {
	StoredName string    `json:"storedName"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modifiedAt"`
}

// Analysis is the output of the analysis engine for one submission.
type Analysis struct {
	Tags       []string         `json:"tags"`
	AIResponse string           `json:"aiResponse"`
	Extracted  *ExtractedFields `json:"extracted"`
}

type IntakeResult struct {
	Tags             []string         `json:"tags"`
	AIResponse       string           `json:"aiResponse"`
	MatchedTemplates []Template       `json:"matchedTemplates"`
	File             *UploadedFile    `json:"file"`
	Extracted        *ExtractedFields `json:"extracted"`
}
