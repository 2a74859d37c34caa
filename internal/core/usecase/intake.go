package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/legal-intake/internal/core/domain"
	"github.com/kirillkom/legal-intake/internal/core/matching"
	"github.com/kirillkom/legal-intake/internal/core/ports"
)

// DecoderSupport is implemented by decoders that can tell ahead of time
// whether a media type is readable.
type DecoderSupport interface {
	Supports(mimeType string) bool
}

type IntakeUseCase struct {
	ingestor  ports.FileIngestor
	decoder   ports.DocumentDecoder
	analyzer  ports.Analyzer
	templates ports.TemplateReader
	ledger    ports.SessionLedger
	publisher ports.SessionPublisher
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
}

func NewIntakeUseCase(
	ingestor ports.FileIngestor,
	decoder ports.DocumentDecoder,
	analyzer ports.Analyzer,
	templates ports.TemplateReader,
	ledger ports.SessionLedger,
	publisher ports.SessionPublisher,
	logger *slog.Logger,
) *IntakeUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &IntakeUseCase{
		ingestor:  ingestor,
		decoder:   decoder,
		analyzer:  analyzer,
		templates: templates,
		ledger:    ledger,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Handle runs one submission through ingest, decode, analysis, matching and
// recording. A failure to store the file or append the session aborts the
// request; decode and publish failures do not.
func (uc *IntakeUseCase) Handle(ctx context.Context, submission domain.Submission) (*domain.IntakeResult, error) {
	var file *domain.UploadedFile
	if submission.Document != nil {
		if uc.ingestor == nil {
			return nil, domain.WrapError(domain.ErrInvalidInput, "intake", errors.New("file uploads are disabled"))
		}
		uploaded, err := uc.ingestor.Ingest(ctx, *submission.Document)
		if err != nil {
			return nil, fmt.Errorf("ingest document: %w", err)
		}
		file = uploaded
	}

	content := uc.decode(ctx, file)
	analysis := uc.analyzer.Analyze(submission.Text, content)
	matched := matching.Match(submission.Category, analysis.Tags, submission.Text, uc.templates.All())

	session := domain.Session{
		ID:                 uc.newID(),
		CreatedAt:          uc.now().UTC(),
		Text:               submission.Text,
		Category:           submission.Category,
		Tags:               analysis.Tags,
		AIResponse:         analysis.AIResponse,
		MatchedTemplateIDs: matching.IDs(matched),
		File:               file,
		Extracted:          analysis.Extracted,
	}
	if err := uc.ledger.Append(ctx, session); err != nil {
		return nil, fmt.Errorf("record session: %w", err)
	}

	if uc.publisher != nil {
		if err := uc.publisher.PublishSessionRecorded(ctx, session); err != nil {
			uc.logger.Warn("session_publish_failed", "session_id", session.ID, "error", err.Error())
		}
	}

	return &domain.IntakeResult{
		Tags:             analysis.Tags,
		AIResponse:       analysis.AIResponse,
		MatchedTemplates: matched,
		File:             file,
		Extracted:        analysis.Extracted,
	}, nil
}

func (uc *IntakeUseCase) decode(ctx context.Context, file *domain.UploadedFile) *string {
	if file == nil || uc.decoder == nil {
		return nil
	}
	if support, ok := uc.decoder.(DecoderSupport); ok && !support.Supports(file.MimeType) {
		return nil
	}

	text, err := uc.decoder.Decode(ctx, *file)
	if err != nil {
		uc.logger.Warn("document_decode_failed",
			"stored_name", file.StoredName,
			"mime_type", file.MimeType,
			"error", err.Error(),
		)
		return nil
	}
	return &text
}
