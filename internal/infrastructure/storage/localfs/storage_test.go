package localfs

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kirillkom/legal-intake/internal/core/domain"
)

func TestSaveOpenList(t *testing.T) {
	storage, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx := context.Background()

	if err := storage.Save(ctx, "2-b.txt", strings.NewReader("второй")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := storage.Save(ctx, "1-a.txt", strings.NewReader("первый")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	rc, err := storage.Open(ctx, "1-a.txt")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	raw, err := io.ReadAll(rc)
	_ = rc.Close()
	if err != nil || string(raw) != "первый" {
		t.Fatalf("unexpected content %q, err=%v", raw, err)
	}

	files, err := storage.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(files) != 2 || files[0].StoredName != "1-a.txt" || files[1].StoredName != "2-b.txt" {
		t.Fatalf("unexpected listing: %+v", files)
	}
	if files[0].Size != int64(len("первый")) {
		t.Fatalf("unexpected size %d", files[0].Size)
	}
}

func TestSaveRefusesOverwrite(t *testing.T) {
	storage, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	ctx := context.Background()
	if err := storage.Save(ctx, "a.txt", strings.NewReader("x")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := storage.Save(ctx, "a.txt", strings.NewReader("y")); err == nil {
		t.Fatalf("expected error when key already exists")
	}
}

func TestRejectsPathTraversal(t *testing.T) {
	storage, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	err = storage.Save(context.Background(), "../escape.txt", strings.NewReader("x"))
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestListMissingDirIsStoreUnavailable(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	storage, err := New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := os.RemoveAll(dir); err != nil {
		t.Fatalf("remove dir: %v", err)
	}
	_, err = storage.List(context.Background())
	if !domain.IsKind(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}
