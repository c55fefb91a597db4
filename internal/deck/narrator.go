package deck

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"deckchat/internal/config"
	"deckchat/internal/logging"
	"deckchat/internal/provider"
	"deckchat/internal/slides"
)

// Narrator synthesizes one audio file per slide through the provider's speech endpoint.
type Narrator struct {
	provider provider.Provider
	enabled  bool
	model    string
	voice    string
	dir      string
}

func NewNarrator(p provider.Provider, cfg config.NarrationConfig, audioDir string) *Narrator {
	return &Narrator{
		provider: p,
		enabled:  cfg.Enabled && p != nil,
		model:    cfg.Model,
		voice:    cfg.Voice,
		dir:      audioDir,
	}
}

func (n *Narrator) Enabled() bool {
	return n != nil && n.enabled
}

// Narrate returns audio references parallel to the slide blocks of markup. A slide whose
// synthesis fails, or that has no text, gets an empty reference. Disabled narration returns nil.
func (n *Narrator) Narrate(ctx context.Context, docID, markup string) []string {
	if !n.Enabled() {
		return nil
	}
	parsed := slides.Parse(markup, nil)
	if len(parsed) == 0 {
		return nil
	}
	dir := filepath.Join(n.dir, safeName(docID))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logging.Warn().Err(err).Str("dir", dir).Msg("narration directory unavailable")
		return make([]string, len(parsed))
	}

	refs := make([]string, len(parsed))
	for i, s := range parsed {
		if ctx.Err() != nil {
			break
		}
		text := slides.Text(s.HTML)
		if text == "" {
			continue
		}
		audio, err := n.provider.Speak(ctx, provider.SpeechRequest{Model: n.model, Voice: n.voice, Input: text})
		if err != nil || len(audio) == 0 {
			logging.Warn().Err(err).Int("slide", i).Msg("narration failed")
			continue
		}
		path := filepath.Join(dir, fmt.Sprintf("slide-%02d.mp3", i+1))
		if err := os.WriteFile(path, audio, 0o644); err != nil {
			logging.Warn().Err(err).Str("path", path).Msg("write narration")
			continue
		}
		refs[i] = path
	}
	return refs
}

func safeName(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return "presentation"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '.':
			return '_'
		}
		return r
	}, id)
}
