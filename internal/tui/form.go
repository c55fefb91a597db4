package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"deckchat/internal/deck"
	"deckchat/internal/i18n"
)

const (
	fieldFeatured = iota
	fieldAnnTitle
	fieldAnnContent
	fieldAnnClosing
	fieldVisuals
	fieldCount
)

// promptForm collects the presentation details for one document message.
type promptForm struct {
	sessionID  string
	documentID string
	docTitle   string

	inputs []textinput.Model
	labels []string
	focus  int
	err    string
}

func newPromptForm(locale *i18n.Catalog, sessionID, documentID, docTitle string, prev deck.Form) promptForm {
	hints := []string{
		locale.T("form.featured_hint"),
		locale.T("form.ann_title_hint"),
		locale.T("form.ann_content_hint"),
		locale.T("form.ann_closing_hint"),
		locale.T("form.visuals_hint"),
	}
	values := []string{
		prev.FeaturedService,
		prev.AnnouncementTitle,
		prev.AnnouncementContent,
		prev.AnnouncementClosing,
		prev.Visuals,
	}
	f := promptForm{
		sessionID:  sessionID,
		documentID: documentID,
		docTitle:   docTitle,
		labels: []string{
			locale.T("form.featured"),
			locale.T("form.announcement") + " · " + locale.T("form.ann_title"),
			locale.T("form.ann_content"),
			locale.T("form.ann_closing"),
			locale.T("form.visuals"),
		},
	}
	for i := 0; i < fieldCount; i++ {
		ti := textinput.New()
		ti.Placeholder = hints[i]
		ti.CharLimit = 1024
		ti.SetValue(values[i])
		f.inputs = append(f.inputs, ti)
	}
	f.inputs[0].Focus()
	return f
}

// value 按原样取回表单内容 / value returns the fields exactly as typed
func (f promptForm) value() deck.Form {
	return deck.Form{
		FeaturedService:     f.inputs[fieldFeatured].Value(),
		AnnouncementTitle:   f.inputs[fieldAnnTitle].Value(),
		AnnouncementContent: f.inputs[fieldAnnContent].Value(),
		AnnouncementClosing: f.inputs[fieldAnnClosing].Value(),
		Visuals:             f.inputs[fieldVisuals].Value(),
	}
}

func (f *promptForm) move(delta int) {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + delta + fieldCount) % fieldCount
	f.inputs[f.focus].Focus()
}

func (f *promptForm) setWidth(w int) {
	for i := range f.inputs {
		f.inputs[i].Width = w
	}
}

func (f promptForm) update(msg tea.Msg) (promptForm, tea.Cmd) {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

func (f promptForm) view(theme Theme, locale *i18n.Catalog) string {
	var b strings.Builder
	b.WriteString(theme.TitleStyle.Render(locale.T("form.title")))
	b.WriteString("\n")
	b.WriteString(theme.MutedStyle.Render(locale.T("form.description", f.docTitle)))
	b.WriteString("\n\n")
	for i, in := range f.inputs {
		label := theme.InactiveItemStyle.Render(f.labels[i])
		if i == f.focus {
			label = theme.FocusedFieldStyle.Render(f.labels[i])
		}
		b.WriteString(label)
		b.WriteString("\n")
		b.WriteString(in.View())
		b.WriteString("\n\n")
	}
	if f.err != "" {
		b.WriteString(theme.ErrorStyle.Render(f.err))
		b.WriteString("\n")
	}
	b.WriteString(theme.MutedStyle.Render(locale.T("form.help")))
	return b.String()
}
