// Package catalog holds the read-only template catalog and its backings:
// the built-in set, the ledger's persisted pages and a YAML file.
package catalog

import (
	"fmt"
	"sync"

	"github.com/kirillkom/legal-intake/internal/core/domain"
)

type Store struct {
	mu        sync.RWMutex
	templates []domain.Template
	byID      map[string]int
}

func NewStore(templates []domain.Template) *Store {
	s := &Store{}
	s.Replace(templates)
	return s
}

// All returns a copy of the catalog in its natural order.
func (s *Store) All() []domain.Template {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneTemplates(s.templates)
}

func (s *Store) ByID(id string) (domain.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.byID[id]
	if !ok {
		return domain.Template{}, domain.WrapError(domain.ErrTemplateNotFound, "get template", fmt.Errorf("id=%s", id))
	}
	return cloneTemplate(s.templates[idx]), nil
}

// Replace swaps the whole catalog. The first template wins on duplicate IDs.
func (s *Store) Replace(templates []domain.Template) {
	next := cloneTemplates(templates)
	index := make(map[string]int, len(next))
	for i, tpl := range next {
		if _, exists := index[tpl.ID]; !exists {
			index[tpl.ID] = i
		}
	}

	s.mu.Lock()
	s.templates = next
	s.byID = index
	s.mu.Unlock()
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.templates)
}

func cloneTemplates(in []domain.Template) []domain.Template {
	out := make([]domain.Template, len(in))
	for i, tpl := range in {
		out[i] = cloneTemplate(tpl)
	}
	return out
}

func cloneTemplate(tpl domain.Template) domain.Template {
	tags := make([]string, len(tpl.Tags))
	copy(tags, tpl.Tags)
	tpl.Tags = tags
	return tpl
}
