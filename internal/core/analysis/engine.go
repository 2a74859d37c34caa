package analysis

import "github.com/kirillkom/legal-intake/internal/core/domain"

const DefaultResponsePrefix = "AI ответ на запрос: "

// Responder produces the human-readable answer for a submission text.
type Responder interface {
	Respond(text string) string
}

// PlaceholderResponder stands in for a generative model: the answer is the
// prefix followed by the text, with no network access and no failure mode.
type PlaceholderResponder struct {
	Prefix string
}

func (r PlaceholderResponder) Respond(text string) string {
	prefix := r.Prefix
	if prefix == "" {
		prefix = DefaultResponsePrefix
	}
	return prefix + text
}

type Engine struct {
	responder Responder
}

func NewEngine(responder Responder) *Engine {
	if responder == nil {
		responder = PlaceholderResponder{}
	}
	return &Engine{responder: responder}
}

// Analyze derives tags and the answer from text. Fields are extracted only
// when documentContent is supplied; otherwise Extracted stays nil.
func (e *Engine) Analyze(text string, documentContent *string) domain.Analysis {
	out := domain.Analysis{
		Tags:       DeriveTags(text),
		AIResponse: e.responder.Respond(text),
	}
	if documentContent != nil {
		fields := ExtractFields(*documentContent)
		out.Extracted = &fields
	}
	return out
}
