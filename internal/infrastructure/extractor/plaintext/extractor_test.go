package plaintext

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/kirillkom/legal-intake/internal/core/domain"
)

type storageFake struct {
	content string
	err     error
}

func (f storageFake) Save(context.Context, string, io.Reader) error { return errors.New("not implemented") }
func (f storageFake) Open(context.Context, string) (io.ReadCloser, error) {
	if f.err != nil {
		return nil, f.err
	}
	return io.NopCloser(strings.NewReader(f.content)), nil
}
func (f storageFake) List(context.Context) ([]domain.StoredFile, error) { return nil, nil }

func TestDecodeUTF8(t *testing.T) {
	ex := NewExtractor(storageFake{content: "\xEF\xBB\xBFФИО: Иванов Иван"}, 0)
	text, err := ex.Decode(context.Background(), domain.UploadedFile{Locator: "a.txt"})
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if text != "ФИО: Иванов Иван" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestDecodeRejectsBinary(t *testing.T) {
	ex := NewExtractor(storageFake{content: "\xff\xfe\x00binary"}, 0)
	_, err := ex.Decode(context.Background(), domain.UploadedFile{Locator: "a.bin", OriginalName: "a.bin"})
	if !domain.IsKind(err, domain.ErrUnsupportedDocument) {
		t.Fatalf("expected ErrUnsupportedDocument, got %v", err)
	}
}

func TestDecodeRejectsOversized(t *testing.T) {
	ex := NewExtractor(storageFake{content: strings.Repeat("a", 11)}, 10)
	_, err := ex.Decode(context.Background(), domain.UploadedFile{Locator: "a.txt"})
	if !domain.IsKind(err, domain.ErrUnsupportedDocument) {
		t.Fatalf("expected ErrUnsupportedDocument, got %v", err)
	}
}

func TestDecodePropagatesStorageError(t *testing.T) {
	ex := NewExtractor(storageFake{err: errors.New("gone")}, 0)
	_, err := ex.Decode(context.Background(), domain.UploadedFile{Locator: "a.txt"})
	if err == nil || domain.IsKind(err, domain.ErrUnsupportedDocument) {
		t.Fatalf("expected plain storage error, got %v", err)
	}
}
