package nlp

import (
	"strings"
	"unicode/utf8"

	"github.com/johnquangdev/talk-tracer/internal/domain/entities"
)

// LocateEntities resolves character offsets for recognized entities by
// scanning text forward, so repeated mentions map to successive positions.
// Offsets count characters, not bytes; end is exclusive.
func LocateEntities(text string, found []Entity) []entities.NamedEntity {
	out := make([]entities.NamedEntity, 0, len(found))
	cursor := 0
	for _, e := range found {
		if e.Text == "" {
			continue
		}
		rel := strings.Index(text[cursor:], e.Text)
		if rel < 0 {
			continue
		}
		start := cursor + rel
		end := start + len(e.Text)

		startChar := utf8.RuneCountInString(text[:start])
		out = append(out, entities.NamedEntity{
			Text:      e.Text,
			StartChar: startChar,
			EndChar:   startChar + utf8.RuneCountInString(e.Text),
			Label:     e.Label,
		})
		cursor = end
	}
	return out
}
