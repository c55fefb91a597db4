package tui

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"deckchat/internal/chat"
	"deckchat/internal/commands"
	"deckchat/internal/deck"
	"deckchat/internal/endpoint"
)

// handleCommand 执行斜杠命令 / handleCommand runs a slash command typed in the composer
func (a *App) handleCommand(input string) tea.Cmd {
	name, args, _ := commands.Parse(input)
	a.input.Reset()
	a.notice = ""

	switch name {
	case commands.Quit:
		a.Close()
		return tea.Quit

	case "", commands.Help:
		a.notice = a.locale.T("cmd.help")

	case commands.New:
		a.store.CreateSession()
		a.notice = a.locale.T("cmd.created")

	case commands.List:
		a.notice = a.sessionList()

	case commands.Switch:
		if args == "" {
			a.notice = a.locale.T("cmd.switch_usage")
			break
		}
		target, err := commands.ResolveSession(a.store.ListByRecency(), args)
		if err != nil {
			a.notice = a.locale.T("cmd.no_session", args)
			break
		}
		a.store.SelectSession(target.ID)

	case commands.Delete:
		target, ok := a.store.Active()
		if args != "" {
			var err error
			target, err = commands.ResolveSession(a.store.ListByRecency(), args)
			ok = err == nil
		}
		if !ok || !a.store.DeleteSession(target.ID) {
			a.notice = a.locale.T("cmd.no_session", args)
			break
		}
		a.notice = a.locale.T("cmd.deleted", target.Title)

	case commands.Attach:
		a.notice = a.attach(args)

	case commands.Detach:
		a.attachment = nil

	case commands.Present:
		sess, _ := a.store.Active()
		doc, err := commands.ResolveDocument(sess, args)
		if err != nil {
			a.notice = a.documentError(err)
			break
		}
		return a.openForm(sess.ID, doc.ID)

	case commands.View:
		sess, _ := a.store.Active()
		doc, err := commands.ResolveDocument(sess, args)
		if err != nil {
			a.notice = a.documentError(err)
			break
		}
		a.openViewer(sess.ID, doc.ID)

	case commands.Regen:
		sess, _ := a.store.Active()
		doc, ok := latestPresented(sess)
		if !ok {
			a.notice = a.locale.T("cmd.no_presentation")
			break
		}
		return a.openForm(sess.ID, doc.ID)

	default:
		a.notice = a.locale.T("cmd.unknown", "/"+name)
	}

	a.refresh()
	return nil
}

func (a *App) attach(path string) string {
	if path == "" {
		return a.locale.T("cmd.attach_usage")
	}
	att, err := endpoint.LoadAttachment(path, a.maxUploadMB)
	switch {
	case errors.Is(err, endpoint.ErrUnsupportedType):
		return a.locale.T("attach.invalid", filepath.Base(path))
	case errors.Is(err, endpoint.ErrTooLarge):
		return a.locale.T("attach.too_large", filepath.Base(path), a.maxUploadMB)
	case err != nil:
		return err.Error()
	}
	a.attachment = att
	return a.locale.T("attach.pending", att.Name)
}

func (a *App) documentError(err error) string {
	if errors.Is(err, commands.ErrNoDocument) {
		return a.locale.T("deck.no_document")
	}
	return err.Error()
}

func (a *App) sessionList() string {
	var lines []string
	for i, s := range a.store.ListByRecency() {
		lines = append(lines, fmt.Sprintf("%d. %s (%s)", i+1, s.Title, a.locale.T("sidebar.messages", len(s.Messages))))
	}
	return strings.Join(lines, "  ")
}

// latestPresented 最近一条已生成演示文稿的文档消息
// latestPresented is the most recent document message that already has a presentation
func latestPresented(s chat.Session) (chat.Message, bool) {
	docs := commands.Documents(s)
	for i := len(docs) - 1; i >= 0; i-- {
		if docs[i].Presentation != nil {
			return docs[i], true
		}
	}
	return chat.Message{}, false
}

// formFor 返回某文档上次提交的表单（没有则为空表单）
// formFor returns the last form submitted for a document, or an empty one
func (a *App) formFor(documentID string) deck.Form {
	return a.forms[documentID]
}
