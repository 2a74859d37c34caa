package plaintext

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/kirillkom/legal-intake/internal/core/domain"
	"github.com/kirillkom/legal-intake/internal/core/ports"
)

const DefaultMaxBytes int64 = 10 << 20

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type Extractor struct {
	storage  ports.ObjectStorage
	maxBytes int64
}

func NewExtractor(storage ports.ObjectStorage, maxBytes int64) *Extractor {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Extractor{storage: storage, maxBytes: maxBytes}
}

// Decode returns the stored document as text. Content that is not valid
// UTF-8 or exceeds the size limit is reported as unsupported.
func (e *Extractor) Decode(ctx context.Context, file domain.UploadedFile) (string, error) {
	reader, err := e.storage.Open(ctx, file.Locator)
	if err != nil {
		return "", fmt.Errorf("open source document: %w", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(io.LimitReader(reader, e.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read source document: %w", err)
	}
	if int64(len(raw)) > e.maxBytes {
		return "", domain.WrapError(domain.ErrUnsupportedDocument, "decode text", fmt.Errorf("%s exceeds %d bytes", file.OriginalName, e.maxBytes))
	}

	raw = bytes.TrimPrefix(raw, utf8BOM)
	if !utf8.Valid(raw) {
		return "", domain.WrapError(domain.ErrUnsupportedDocument, "decode text", fmt.Errorf("not valid utf-8: %s", file.OriginalName))
	}
	return string(raw), nil
}
