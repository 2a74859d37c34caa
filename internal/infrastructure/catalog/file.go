package catalog

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kirillkom/legal-intake/internal/core/domain"
)

// catalogFile mirrors the YAML layout of an editable catalog.
type catalogFile struct {
	Templates []domain.Template `yaml:"templates"`
}

// LoadFile reads a YAML catalog. Entries without an id are skipped; duplicate
// ids are rejected.
func LoadFile(path string) ([]domain.Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file %s: %w", path, err)
	}
	return Parse(data)
}

func Parse(data []byte) ([]domain.Template, error) {
	var raw catalogFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse catalog yaml: %w", err)
	}

	seen := make(map[string]struct{}, len(raw.Templates))
	out := make([]domain.Template, 0, len(raw.Templates))
	for _, tpl := range raw.Templates {
		tpl.ID = strings.TrimSpace(tpl.ID)
		if tpl.ID == "" {
			continue
		}
		if _, dup := seen[tpl.ID]; dup {
			return nil, domain.WrapError(domain.ErrInvalidInput, "parse catalog yaml", fmt.Errorf("duplicate template id %q", tpl.ID))
		}
		seen[tpl.ID] = struct{}{}
		if tpl.Tags == nil {
			tpl.Tags = []string{}
		}
		out = append(out, tpl)
	}
	if len(out) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "parse catalog yaml", errors.New("no templates defined"))
	}
	return out, nil
}
