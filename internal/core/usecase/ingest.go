package usecase

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/kirillkom/legal-intake/internal/core/domain"
	"github.com/kirillkom/legal-intake/internal/core/ports"
)

const maxStoredNameRunes = 120

// IngestFileUseCase stores uploaded documents under time-ordered,
// collision-resistant names.
type IngestFileUseCase struct {
	storage ports.ObjectStorage
	now     func() time.Time
}

func NewIngestFileUseCase(storage ports.ObjectStorage) *IngestFileUseCase {
	return &IngestFileUseCase{
		storage: storage,
		now:     time.Now,
	}
}

func (uc *IngestFileUseCase) Ingest(ctx context.Context, upload domain.DocumentUpload) (*domain.UploadedFile, error) {
	if upload.Body == nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "ingest file", errors.New("empty document body"))
	}

	storedName := fmt.Sprintf("%d-%s-%s",
		uc.now().UTC().UnixMilli(),
		strings.ReplaceAll(uuid.NewString(), "-", "")[:8],
		sanitizeFilename(upload.OriginalName),
	)
	if err := uc.storage.Save(ctx, storedName, upload.Body); err != nil {
		return nil, fmt.Errorf("save to object storage: %w", err)
	}

	return &domain.UploadedFile{
		StoredName:   storedName,
		OriginalName: upload.OriginalName,
		MimeType:     upload.MimeType,
		Locator:      storedName,
	}, nil
}

func sanitizeFilename(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" {
		base = ""
	}
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	base = strings.TrimLeft(base, ".")
	if runes := []rune(base); len(runes) > maxStoredNameRunes {
		base = string(runes[len(runes)-maxStoredNameRunes:])
	}
	if base == "" {
		return "document.bin"
	}
	return base
}
