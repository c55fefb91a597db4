package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"deckchat/internal/chat"
	"deckchat/internal/i18n"
	"deckchat/internal/slides"
)

// RenderMarkdown 使用 Glamour 渲染 markdown 文本
// RenderMarkdown renders markdown text using Glamour
func RenderMarkdown(content string, width int) string {
	if strings.TrimSpace(content) == "" {
		return ""
	}
	if width <= 0 {
		width = 80
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}

	rendered, err := r.Render(content)
	if err != nil {
		return content
	}

	return strings.TrimRight(rendered, "\n")
}

// RenderHTML 把格式化文档或幻灯片的 HTML 渲染成按宽度折行的纯文本
// RenderHTML flattens document or slide markup to wrapped terminal text
func RenderHTML(markup string, width int) string {
	text := slides.Text(markup)
	if width <= 0 {
		return text
	}
	return lipgloss.NewStyle().Width(width).Render(text)
}

// RenderMessage 渲染单条消息；docIndex 为文档消息在会话内的序号（从 1 开始）
// RenderMessage renders one transcript entry; docIndex is the 1-based document ordinal
func RenderMessage(m chat.Message, docIndex int, theme Theme, locale *i18n.Catalog, width int) string {
	var b strings.Builder
	stamp := m.Timestamp.Local().Format("15:04")

	if m.Sender == chat.SenderUser {
		b.WriteString(theme.UserStyle.Render(locale.T("transcript.you")))
		b.WriteString(theme.MutedStyle.Render(" " + stamp))
		b.WriteString("\n")
		if m.Text != "" {
			b.WriteString(m.Text)
			b.WriteString("\n")
		}
		if m.Attachment != "" {
			b.WriteString(theme.MutedStyle.Render(locale.T("attach.echo", m.Attachment)))
			b.WriteString("\n")
		}
		return b.String()
	}

	b.WriteString(theme.BotStyle.Render(locale.T("transcript.bot")))
	b.WriteString(theme.MutedStyle.Render(" " + stamp))
	b.WriteString("\n")

	if !m.IsDocument() {
		b.WriteString(RenderMarkdown(m.Text, width))
		b.WriteString("\n")
		return b.String()
	}

	inner := width - 2
	body := theme.TitleStyle.Render(fmt.Sprintf("[%d] ", docIndex)+locale.T("transcript.document", m.Title)) +
		"\n" + RenderHTML(m.Text, inner)
	marker := locale.T("transcript.no_deck")
	if m.Presentation != nil {
		marker = locale.T("transcript.has_deck")
	}
	body += "\n" + theme.MutedStyle.Render(marker)
	b.WriteString(theme.DocumentStyle.Render(body))
	b.WriteString("\n")
	return b.String()
}

// RenderTranscript 渲染整个会话
// RenderTranscript renders a whole session
func RenderTranscript(s chat.Session, theme Theme, locale *i18n.Catalog, width int) string {
	var parts []string
	docs := 0
	for _, m := range s.Messages {
		if m.IsDocument() {
			docs++
		}
		parts = append(parts, RenderMessage(m, docs, theme, locale, width))
	}
	return strings.Join(parts, "\n")
}
