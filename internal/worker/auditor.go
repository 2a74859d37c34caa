// Package worker consumes "session recorded" events outside the request path.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/kirillkom/legal-intake/internal/core/domain"
)

const serviceName = "worker"

// AuditMetrics is the metrics surface the auditor reports to.
type AuditMetrics interface {
	ObserveSession(service, category string, hasFile bool, tags int)
	ObserveExtractedField(service, field string)
	ObserveEventLag(service string, lag time.Duration)
}

type Auditor struct {
	metrics AuditMetrics
	logger  *slog.Logger
	now     func() time.Time
}

func NewAuditor(metrics AuditMetrics, logger *slog.Logger) *Auditor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Auditor{metrics: metrics, logger: logger, now: time.Now}
}

// Handle records one session event.
func (a *Auditor) Handle(_ context.Context, session domain.Session) error {
	a.metrics.ObserveSession(serviceName, session.Category, session.File != nil, len(session.Tags))
	if !session.CreatedAt.IsZero() {
		a.metrics.ObserveEventLag(serviceName, a.now().Sub(session.CreatedAt))
	}
	if session.Extracted != nil {
		if session.Extracted.Name != nil {
			a.metrics.ObserveExtractedField(serviceName, "name")
		}
		if session.Extracted.Date != nil {
			a.metrics.ObserveExtractedField(serviceName, "date")
		}
	}

	a.logger.Info("session_audited",
		"session_id", session.ID,
		"category", session.Category,
		"tags", session.Tags,
		"matched_templates", session.MatchedTemplateIDs,
		"has_file", session.File != nil,
	)
	return nil
}
