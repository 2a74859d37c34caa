package ports

import (
	"context"
	"io"

	"github.com/kirillkom/legal-intake/internal/core/domain"
)

// ObjectStorage stores uploaded documents.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	List(ctx context.Context) ([]domain.StoredFile, error)
}

// StateStore reads and writes the full ledger document. Read returns an error
// wrapping domain.ErrStoreUnavailable when nothing has been written yet or the
// location cannot be read.
type StateStore interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
}

// FileIngestor persists an uploaded document before it is analyzed.
type FileIngestor interface {
	Ingest(ctx context.Context, upload domain.DocumentUpload) (*domain.UploadedFile, error)
}

// DocumentDecoder turns a stored document into text. Documents it cannot
// decode yield an error wrapping domain.ErrUnsupportedDocument.
type DocumentDecoder interface {
	Decode(ctx context.Context, file domain.UploadedFile) (string, error)
}

// Analyzer derives tags, the placeholder answer and extracted fields.
type Analyzer interface {
	Analyze(text string, documentContent *string) domain.Analysis
}

// SessionLedger is the append-only session record.
type SessionLedger interface {
	Append(ctx context.Context, session domain.Session) error
	List(ctx context.Context) ([]domain.Session, error)
}

// SessionPublisher announces recorded sessions to other processes.
type SessionPublisher interface {
	PublishSessionRecorded(ctx context.Context, session domain.Session) error
}
