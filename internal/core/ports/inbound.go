package ports

import (
	"context"

	"github.com/kirillkom/legal-intake/internal/core/domain"
)

// IntakeService is the inbound contract for analyze-and-record requests.
type IntakeService interface {
	Handle(ctx context.Context, submission domain.Submission) (*domain.IntakeResult, error)
}

// SessionReader lists recorded sessions in creation order.
type SessionReader interface {
	List(ctx context.Context) ([]domain.Session, error)
}

// TemplateReader is the read model of the template catalog.
type TemplateReader interface {
	All() []domain.Template
	ByID(id string) (domain.Template, error)
}

// FileLister lists stored upload descriptors.
type FileLister interface {
	List(ctx context.Context) ([]domain.StoredFile, error)
}
