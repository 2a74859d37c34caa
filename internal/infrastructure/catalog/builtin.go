package catalog

import "github.com/kirillkom/legal-intake/internal/core/domain"

// Builtin returns the fixed catalog used when no other source is configured.
func Builtin() []domain.Template {
	return []domain.Template{
		{
			ID:      "civil-1",
			Title:   "Образец гражданского иска",
			Tags:    []string{"иск", "договор", "гражданский"},
			Content: "<h3>Образец гражданского иска</h3><p>Здесь находится шаблон гражданского иска...</p>",
		},
		{
			ID:      "criminal-1",
			Title:   "Памятка по уголовному процессу",
			Tags:    []string{"уголовный", "преступление"},
			Content: "<h3>Памятка по уголовному процессу</h3><p>Советы и примеры оформления заявлений...</p>",
		},
		{
			ID:      "admin-1",
			Title:   "Пример административной жалобы",
			Tags:    []string{"административный", "жалоба"},
			Content: "<h3>Пример административной жалобы</h3><p>Шаблон для составления жалобы...</p>",
		},
	}
}
