// Package xlsx decodes spreadsheet uploads into tab-separated text.
package xlsx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/legal-intake/internal/core/domain"
	"github.com/kirillkom/legal-intake/internal/core/ports"
)

const DefaultMaxBytes int64 = 10 << 20

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

// Decode renders every sheet in workbook order: cells joined by tabs, rows by
// newlines, sheets separated by a blank line.
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
		return "", domain.WrapError(domain.ErrUnsupportedDocument, "decode xlsx", fmt.Errorf("%s exceeds %d bytes", file.OriginalName, e.maxBytes))
	}

	wb, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return "", domain.WrapError(domain.ErrUnsupportedDocument, "decode xlsx", err)
	}
	defer wb.Close()

	var b strings.Builder
	for i, sheet := range wb.GetSheetList() {
		rows, err := wb.GetRows(sheet)
		if err != nil {
			return "", domain.WrapError(domain.ErrUnsupportedDocument, "decode xlsx", err)
		}
		if i > 0 {
			b.WriteString("\n")
		}
		for _, row := range rows {
			b.WriteString(strings.Join(row, "\t"))
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}
