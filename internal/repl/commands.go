package repl

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mattn/go-runewidth"

	"deckchat/internal/chat"
	"deckchat/internal/commands"
	"deckchat/internal/endpoint"
	"deckchat/internal/playback"
	"deckchat/internal/slides"
)

// sessionTitleWidth caps titles in /sessions listings (display cells).
const sessionTitleWidth = 40

// handleCommand runs a slash command and reports whether the loop should exit.
func (l *Loop) handleCommand(ctx context.Context, input string) bool {
	name, args, _ := commands.Parse(input)
	switch name {
	case commands.Quit:
		return true

	case "", commands.Help:
		l.printHelp()

	case commands.New:
		l.store.CreateSession()
		l.println(l.locale.T("cmd.created"))
		l.printSession()

	case commands.List:
		l.listSessions()

	case commands.Switch:
		if args == "" {
			l.errorf(l.locale.T("cmd.switch_usage"))
			break
		}
		target, err := commands.ResolveSession(l.store.ListByRecency(), args)
		if err != nil || !l.store.SelectSession(target.ID) {
			l.errorf(l.locale.T("cmd.no_session", args))
			break
		}
		l.printSession()

	case commands.Delete:
		target, ok := l.store.Active()
		if args != "" {
			var err error
			target, err = commands.ResolveSession(l.store.ListByRecency(), args)
			ok = err == nil
		}
		if !ok || !l.store.DeleteSession(target.ID) {
			l.errorf(l.locale.T("cmd.no_session", args))
			break
		}
		l.println(l.locale.T("cmd.deleted", target.Title))
		l.printSession()

	case commands.Attach:
		l.attach(args)

	case commands.Detach:
		l.attachment = nil

	case commands.Present:
		sess, _ := l.store.Active()
		doc, err := commands.ResolveDocument(sess, args)
		if err != nil {
			l.documentError(err)
			break
		}
		l.startGeneration(ctx, sess.ID, doc.ID)

	case commands.View:
		sess, _ := l.store.Active()
		doc, err := commands.ResolveDocument(sess, args)
		if err != nil {
			l.documentError(err)
			break
		}
		l.openViewer(sess.ID, doc.ID)

	case commands.Regen:
		sess, _ := l.store.Active()
		docs := commands.Documents(sess)
		var target *chat.Message
		for i := len(docs) - 1; i >= 0; i-- {
			if docs[i].Presentation != nil {
				target = &docs[i]
				break
			}
		}
		if target == nil {
			l.errorf(l.locale.T("cmd.no_presentation"))
			break
		}
		l.startGeneration(ctx, sess.ID, target.ID)

	default:
		l.errorf(l.locale.T("cmd.unknown", "/"+name))
	}
	return false
}

func (l *Loop) listSessions() {
	active := l.store.ActiveID()
	for i, s := range l.store.ListByRecency() {
		mark := " "
		if s.ID == active {
			mark = "*"
		}
		title := runewidth.Truncate(s.Title, sessionTitleWidth, "…")
		l.println(fmt.Sprintf("%s %2d. %s %s", mark, i+1, runewidth.FillRight(title, sessionTitleWidth),
			l.paint(ansiDim, l.locale.T("sidebar.messages", len(s.Messages)))))
	}
}

func (l *Loop) attach(path string) {
	if path == "" {
		l.errorf(l.locale.T("cmd.attach_usage"))
		return
	}
	att, err := endpoint.LoadAttachment(path, l.maxUploadMB)
	switch {
	case errors.Is(err, endpoint.ErrUnsupportedType):
		l.errorf(l.locale.T("attach.invalid", filepath.Base(path)))
	case errors.Is(err, endpoint.ErrTooLarge):
		l.errorf(l.locale.T("attach.too_large", filepath.Base(path), l.maxUploadMB))
	case err != nil:
		l.errorf(err.Error())
	default:
		l.attachment = att
		l.println(l.locale.T("attach.pending", att.Name))
	}
}

func (l *Loop) documentError(err error) {
	if errors.Is(err, commands.ErrNoDocument) {
		l.errorf(l.locale.T("deck.no_document"))
		return
	}
	l.errorf(err.Error())
}

// --- 放映 / Viewer ---

func (l *Loop) openViewer(sessionID, documentID string) {
	m, err := l.store.Message(sessionID, documentID)
	if err != nil {
		l.errorf(l.locale.T("deck.no_document"))
		return
	}
	if m.Presentation == nil {
		l.errorf(l.locale.T("cmd.no_presentation"))
		return
	}
	l.engine.Dispatch(playback.Event{
		Kind:   playback.EventOpen,
		Slides: slides.Parse(m.Presentation.HTML, m.Presentation.Audio),
	})
	l.viewing = true
	l.viewerSID = sessionID
	l.viewerDoc = documentID
	l.shown = -1
	l.println(l.paint(ansiBold, "── "+m.Title+" ──"))
	if l.engine.Len() == 0 {
		l.println(l.locale.T("viewer.empty"))
	}
	l.println(l.paint(ansiDim, l.locale.T("viewer.help")))
	l.showSlide()
}

func (l *Loop) closeViewer() {
	l.engine.Dispatch(playback.Event{Kind: playback.EventClose})
	l.viewing = false
	l.shown = -1
}

// handleViewerLine maps viewer input to engine events: empty toggles play/pause.
func (l *Loop) handleViewerLine(ctx context.Context, line string) bool {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "", "space", "play", "pause":
		l.engine.Dispatch(playback.Event{Kind: playback.EventToggle})
	case "n", "l", "next", "→":
		l.engine.Dispatch(playback.Event{Kind: playback.EventNext})
	case "p", "h", "prev", "←":
		l.engine.Dispatch(playback.Event{Kind: playback.EventPrev})
	case "r", "/regen":
		sid, doc := l.viewerSID, l.viewerDoc
		l.closeViewer()
		l.startGeneration(ctx, sid, doc)
		return false
	case "q", "esc", "close", "/close":
		l.closeViewer()
		l.printSession()
		return false
	case "/quit", "/exit":
		l.closeViewer()
		return true
	default:
		l.println(l.paint(ansiDim, l.locale.T("viewer.help")))
		return false
	}
	l.showSlide()
	return false
}

// showSlide prints the current slide when it changed, or the play state when only that did.
func (l *Loop) showSlide() {
	if !l.viewing {
		return
	}
	snap := l.engine.Snapshot()
	if snap.Count == 0 {
		return
	}
	state := l.locale.T("viewer.paused")
	if snap.State == playback.Playing {
		state = l.locale.T("viewer.playing")
		if snap.Audible {
			state += " ♪"
		}
	}
	status := l.paint(ansiDim, fmt.Sprintf("%s · %s", l.locale.T("viewer.progress", snap.Index+1, snap.Count), state))
	if snap.Index == l.shown {
		l.println(status)
		return
	}
	l.shown = snap.Index
	l.println(status)
	for _, line := range strings.Split(slides.Text(snap.Slide.HTML), "\n") {
		l.println("  " + line)
	}
}
