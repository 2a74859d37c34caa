package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/kirillkom/legal-intake/internal/core/domain"
)

type ingestStorageFake struct {
	savedKey  string
	savedBody string
	err       error
}

func (f *ingestStorageFake) Save(_ context.Context, key string, data io.Reader) error {
	if f.err != nil {
		return f.err
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.savedKey = key
	f.savedBody = string(raw)
	return nil
}

func (f *ingestStorageFake) Open(context.Context, string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(f.savedBody)), nil
}

func (f *ingestStorageFake) List(context.Context) ([]domain.StoredFile, error) {
	return nil, errors.New("not implemented")
}

func TestIngestStoresFileUnderTimeOrderedName(t *testing.T) {
	storage := &ingestStorageFake{}
	uc := NewIngestFileUseCase(storage)
	uc.now = func() time.Time { return time.UnixMilli(1700000000123) }

	file, err := uc.Ingest(context.Background(), domain.DocumentUpload{
		OriginalName: "заявление 1.txt",
		MimeType:     "text/plain",
		Body:         bytes.NewBufferString("hello"),
	})
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if !strings.HasPrefix(file.StoredName, "1700000000123-") {
		t.Fatalf("expected millisecond prefix, got %s", file.StoredName)
	}
	if !strings.HasSuffix(file.StoredName, "-заявление_1.txt") {
		t.Fatalf("expected sanitized suffix, got %s", file.StoredName)
	}
	if file.OriginalName != "заявление 1.txt" || file.Locator != file.StoredName {
		t.Fatalf("unexpected descriptor: %+v", file)
	}
	if storage.savedKey != file.StoredName || storage.savedBody != "hello" {
		t.Fatalf("unexpected saved object %s=%q", storage.savedKey, storage.savedBody)
	}
}

func TestIngestNamesAreUniqueWithinSameMillisecond(t *testing.T) {
	uc := NewIngestFileUseCase(&ingestStorageFake{})
	uc.now = func() time.Time { return time.UnixMilli(1) }

	a, err := uc.Ingest(context.Background(), domain.DocumentUpload{OriginalName: "a.txt", Body: strings.NewReader("x")})
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	b, err := uc.Ingest(context.Background(), domain.DocumentUpload{OriginalName: "a.txt", Body: strings.NewReader("x")})
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}
	if a.StoredName == b.StoredName {
		t.Fatalf("expected distinct stored names, got %s twice", a.StoredName)
	}
}

func TestIngestStorageError(t *testing.T) {
	uc := NewIngestFileUseCase(&ingestStorageFake{err: errors.New("disk full")})
	_, err := uc.Ingest(context.Background(), domain.DocumentUpload{OriginalName: "a.txt", Body: strings.NewReader("x")})
	if err == nil || !strings.Contains(err.Error(), "save to object storage") {
		t.Fatalf("expected storage error, got %v", err)
	}
}

func TestIngestRequiresBody(t *testing.T) {
	uc := NewIngestFileUseCase(&ingestStorageFake{})
	_, err := uc.Ingest(context.Background(), domain.DocumentUpload{OriginalName: "a.txt"})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"../../etc/passwd":  "passwd",
		"C:\\docs\\иск.txt": "иск.txt",
		".hidden":           "hidden",
		"":                  "document.bin",
		"a b$c.pdf":         "a_b_c.pdf",
	}
	for in, want := range cases {
		if got := sanitizeFilename(in); got != want {
			t.Fatalf("sanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
