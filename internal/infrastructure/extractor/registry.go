// Package extractor routes stored documents to the decoder registered for
// their MIME type.
package extractor

import (
	"context"
	"fmt"
	"mime"
	"sort"
	"strings"

	"github.com/kirillkom/legal-intake/internal/core/domain"
	"github.com/kirillkom/legal-intake/internal/core/ports"
	"github.com/kirillkom/legal-intake/internal/infrastructure/extractor/pdf"
	"github.com/kirillkom/legal-intake/internal/infrastructure/extractor/plaintext"
	"github.com/kirillkom/legal-intake/internal/infrastructure/extractor/xlsx"
)

const (
	MimeTextPlain = "text/plain"
	MimePDF       = "application/pdf"
	MimeXLSX      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type Registry struct {
	decoders map[string]ports.DocumentDecoder
}

func NewRegistry() *Registry {
	return &Registry{decoders: make(map[string]ports.DocumentDecoder)}
}

// Build registers the built-in decoders for the enabled MIME types. Unknown
// types are rejected so a typo in configuration does not silently disable
// extraction.
func Build(storage ports.ObjectStorage, enabled []string, maxBytes int64) (*Registry, error) {
	r := NewRegistry()
	for _, raw := range enabled {
		mimeType := NormalizeMimeType(raw)
		switch mimeType {
		case "":
			continue
		case MimeTextPlain:
			r.Register(mimeType, plaintext.NewExtractor(storage, maxBytes))
		case MimePDF:
			r.Register(mimeType, pdf.NewExtractor(storage, maxBytes))
		case MimeXLSX:
			r.Register(mimeType, xlsx.NewExtractor(storage, maxBytes))
		default:
			return nil, fmt.Errorf("no decoder available for %q", raw)
		}
	}
	return r, nil
}

func (r *Registry) Register(mimeType string, decoder ports.DocumentDecoder) {
	r.decoders[NormalizeMimeType(mimeType)] = decoder
}

func (r *Registry) Supports(mimeType string) bool {
	_, ok := r.decoders[NormalizeMimeType(mimeType)]
	return ok
}

func (r *Registry) Types() []string {
	out := make([]string, 0, len(r.decoders))
	for t := range r.decoders {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func (r *Registry) Decode(ctx context.Context, file domain.UploadedFile) (string, error) {
	decoder, ok := r.decoders[NormalizeMimeType(file.MimeType)]
	if !ok {
		return "", domain.WrapError(domain.ErrUnsupportedDocument, "decode document", fmt.Errorf("mime type %q is not decoded", file.MimeType))
	}
	return decoder.Decode(ctx, file)
}

// NormalizeMimeType lower-cases the media type and drops parameters such as
// charset.
func NormalizeMimeType(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if mediaType, _, err := mime.ParseMediaType(value); err == nil {
		return mediaType
	}
	if idx := strings.IndexByte(value, ';'); idx >= 0 {
		value = value[:idx]
	}
	return strings.ToLower(strings.TrimSpace(value))
}
