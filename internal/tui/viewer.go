package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"

	"deckchat/internal/i18n"
	"deckchat/internal/playback"
)

// viewer is the full-screen presentation mode. The engine is owned by App and shared across
// openings; viewer only remembers which document is on screen.
type viewer struct {
	sessionID  string
	documentID string
	title      string
	bar        progress.Model
}

func newViewer(sessionID, documentID, title string) viewer {
	return viewer{
		sessionID:  sessionID,
		documentID: documentID,
		title:      title,
		bar:        progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
	}
}

func (v viewer) view(snap playback.Snapshot, theme Theme, locale *i18n.Catalog, width, height int) string {
	var b strings.Builder
	b.WriteString(theme.TitleStyle.Render(v.title))
	b.WriteString("\n\n")

	if snap.Count == 0 {
		b.WriteString(theme.MutedStyle.Render(locale.T("viewer.empty")))
		b.WriteString("\n\n")
		b.WriteString(theme.MutedStyle.Render(locale.T("viewer.help")))
		return b.String()
	}

	barWidth := width - 4
	if barWidth < 10 {
		barWidth = 10
	}
	v.bar.Width = barWidth
	b.WriteString(v.bar.ViewAs(float64(snap.Index+1) / float64(snap.Count)))
	b.WriteString("\n")

	state := locale.T("viewer.paused")
	if snap.State == playback.Playing {
		state = locale.T("viewer.playing")
		if snap.Audible {
			state += " ♪"
		}
	}
	b.WriteString(theme.MutedStyle.Render(fmt.Sprintf("%s · %s", locale.T("viewer.progress", snap.Index+1, snap.Count), state)))
	b.WriteString("\n\n")

	slideWidth := width - 8
	if slideWidth < 20 {
		slideWidth = 20
	}
	body := RenderHTML(snap.Slide.HTML, slideWidth)
	if limit := height - 9; limit > 3 {
		lines := strings.Split(body, "\n")
		if len(lines) > limit {
			body = strings.Join(lines[:limit], "\n")
		}
	}
	b.WriteString(theme.SlideStyle.Render(body))
	b.WriteString("\n\n")
	b.WriteString(theme.MutedStyle.Render(locale.T("viewer.help")))
	return b.String()
}
