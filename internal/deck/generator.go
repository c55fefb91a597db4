package deck

import (
	"context"
	"strings"

	"deckchat/internal/chat"
	"deckchat/internal/logging"
)

// Generator runs the two generation stages and narration for one document.
type Generator struct {
	content  *ContentGenerator
	narrator *Narrator
}

func NewGenerator(content *ContentGenerator, narrator *Narrator) *Generator {
	return &Generator{content: content, narrator: narrator}
}

// Generate builds a fresh presentation for the document identified by docID.
func (g *Generator) Generate(ctx context.Context, docID, source string, form Form) (chat.Presentation, error) {
	content, err := g.content.Generate(ctx, source, form)
	if err != nil {
		return chat.Presentation{}, err
	}
	markup, err := Render(content, form.Visuals)
	if err != nil {
		return chat.Presentation{}, err
	}
	if strings.TrimSpace(markup) == "" {
		return chat.Presentation{}, ErrEmptyContent
	}
	audio := g.narrator.Narrate(ctx, docID, markup)
	if audio == nil {
		audio = []string{}
	}
	logging.Info().
		Str("document", docID).
		Bool("announcement", content.HasAnnouncement()).
		Int("narrated", countNonEmpty(audio)).
		Msg("presentation generated")
	return chat.Presentation{HTML: markup, Audio: audio}, nil
}

func countNonEmpty(items []string) int {
	n := 0
	for _, s := range items {
		if s != "" {
			n++
		}
	}
	return n
}
