package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/kirillkom/legal-intake/internal/core/domain"
)

func TestReadMissingFileIsStateNotFound(t *testing.T) {
	repo := NewStateRepository(filepath.Join(t.TempDir(), "state.json"))

	_, err := repo.Read(context.Background())
	if !domain.IsKind(err, domain.ErrStateNotFound) || !domain.IsKind(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStateNotFound, got %v", err)
	}
}

func TestReadUnreadablePathIsNotStateNotFound(t *testing.T) {
	repo := NewStateRepository(t.TempDir())

	_, err := repo.Read(context.Background())
	if !domain.IsKind(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if domain.IsKind(err, domain.ErrStateNotFound) {
		t.Fatalf("directory read error must not read as a missing state: %v", err)
	}
}

func TestWriteThenRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	repo := NewStateRepository(path)

	payload := []byte("{\n  \"pages\": [],\n  \"sessions\": []\n}\n")
	if err := repo.Write(context.Background(), payload); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := repo.Read(context.Background())
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if string(got) != string(payload) {
		t.Fatalf("expected %q, got %q", payload, got)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected temp files to be cleaned up, found %d entries", len(entries))
	}
}

func TestWriteOverwrites(t *testing.T) {
	repo := NewStateRepository(filepath.Join(t.TempDir(), "state.json"))
	ctx := context.Background()

	if err := repo.Write(ctx, []byte("first")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := repo.Write(ctx, []byte("second")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	got, err := repo.Read(ctx)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if string(got) != "second" {
		t.Fatalf("expected second, got %q", got)
	}
}
