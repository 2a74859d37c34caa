package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/kirillkom/legal-intake/internal/core/domain"
)

const (
	multipartMemory = 8 << 20
	maxJSONBody     = 1 << 20
	formOverhead    = 1 << 20
)

type analyzeRequest struct {
	Text     string `json:"text"`
	Category string `json:"category"`
	Type     string `json:"type"`
}

func (rt *Router) analyze(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	submission, cleanup, err := rt.readSubmission(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer cleanup()

	result, err := rt.intake.Handle(r.Context(), submission)
	rt.recordIntake(submission, result, time.Since(start), err)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if result.Tags == nil {
		result.Tags = []string{}
	}
	if result.MatchedTemplates == nil {
		result.MatchedTemplates = []domain.Template{}
	}
	writeJSON(w, http.StatusOK, result)
}

// readSubmission accepts a JSON body or a (multipart) form. The form field
// "type" is an alias for "category".
func (rt *Router) readSubmission(w http.ResponseWriter, r *http.Request) (domain.Submission, func(), error) {
	noop := func() {}
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mediaType == "application/json" {
		var req analyzeRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(&req); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return domain.Submission{}, noop, err
			}
			return domain.Submission{}, noop, domain.WrapError(domain.ErrInvalidInput, "analyze", fmt.Errorf("invalid json: %w", err))
		}
		return domain.Submission{Text: req.Text, Category: pickCategory(req.Category, req.Type)}, noop, nil
	}

	if mediaType != "multipart/form-data" {
		r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
		if err := r.ParseForm(); err != nil {
			return domain.Submission{}, noop, formError(err)
		}
		return domain.Submission{
			Text:     r.PostFormValue("text"),
			Category: pickCategory(r.PostFormValue("category"), r.PostFormValue("type")),
		}, noop, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, rt.maxUploadBytes())
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return domain.Submission{}, noop, formError(err)
	}
	cleanup := func() { _ = r.MultipartForm.RemoveAll() }

	submission := domain.Submission{
		Text:     r.PostFormValue("text"),
		Category: pickCategory(r.PostFormValue("category"), r.PostFormValue("type")),
	}

	file, header, err := r.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile):
		return submission, cleanup, nil
	case err != nil:
		cleanup()
		return domain.Submission{}, noop, formError(err)
	}

	submission.Document = &domain.DocumentUpload{
		OriginalName: header.Filename,
		MimeType:     uploadMimeType(header),
		Body:         file,
	}
	return submission, func() {
		_ = file.Close()
		cleanup()
	}, nil
}

func (rt *Router) maxUploadBytes() int64 {
	limit := rt.cfg.DocumentMaxBytes
	if limit <= 0 {
		limit = 10 << 20
	}
	return limit + formOverhead
}

func (rt *Router) recordIntake(submission domain.Submission, result *domain.IntakeResult, duration time.Duration, err error) {
	if rt.metrics == nil {
		return
	}
	matched := 0
	if result != nil {
		matched = len(result.MatchedTemplates)
	}
	rt.metrics.RecordIntake(serviceName, submission.Category, matched, duration, err)

	if err != nil || submission.Document == nil {
		return
	}
	outcome := "stored"
	if result.Extracted != nil {
		outcome = "extracted"
	}
	rt.metrics.RecordDocument(serviceName, outcome)
}

func pickCategory(category, alias string) string {
	if category != "" {
		return category
	}
	return alias
}

func uploadMimeType(header *multipart.FileHeader) string {
	if ct := strings.TrimSpace(header.Header.Get("Content-Type")); ct != "" {
		return ct
	}
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(header.Filename))); byExt != "" {
		return byExt
	}
	return "application/octet-stream"
}

func formError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return err
	}
	return domain.WrapError(domain.ErrInvalidInput, "analyze", fmt.Errorf("invalid form: %w", err))
}
