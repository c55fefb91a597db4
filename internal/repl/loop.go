package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"golang.org/x/term"

	"deckchat/internal/chat"
	"deckchat/internal/conversation"
	"deckchat/internal/deck"
	"deckchat/internal/endpoint"
	"deckchat/internal/i18n"
	"deckchat/internal/logging"
	"deckchat/internal/playback"
	"deckchat/internal/session"
	"deckchat/internal/slides"
)

// ANSI colors for prompt and transcript
const (
	ansiReset  = "\x1b[0m"
	ansiDim    = "\x1b[90m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiCyan   = "\x1b[36m"
	ansiBold   = "\x1b[1m"
)

// Options configures a Loop.
type Options struct {
	Controller  *conversation.Controller
	Input       LineInput
	Out         io.Writer
	Locale      *i18n.Catalog
	MaxUploadMB int
	Player      playback.Player
	Fallback    time.Duration
	Color       bool
}

type lineResult struct {
	line string
	err  error
}

type replyResult struct {
	pending conversation.Pending
	reply   chat.Message
}

type generationResult struct {
	gen          conversation.Generation
	presentation chat.Presentation
	err          error
}

// Loop is the line-oriented console. Input is read on a helper goroutine one prompt at a
// time; endpoint replies, generations and playback completions arrive on channels and are
// applied on the goroutine running Run, which owns the store mutations and all output.
// Loop 是行式控制台：输入在辅助 goroutine 上按提示逐行读取，其余异步结果经通道回到 Run 所在 goroutine。
type Loop struct {
	ctl         *conversation.Controller
	store       *session.Store
	in          LineInput
	out         io.Writer
	locale      *i18n.Catalog
	maxUploadMB int
	color       bool

	engine    *playback.Engine
	events    chan playback.Event
	replies   chan replyResult
	generated chan generationResult
	requests  chan string
	lines     chan lineResult
	done      chan struct{}

	attachment *endpoint.Attachment
	pending    int
	generating int
	loading    int
	closing    bool
	inputErr   error
	forms      map[string]deck.Form

	viewing   bool
	viewerSID string
	viewerDoc string
	shown     int
}

// New builds a loop. Output defaults to stdout.
func New(opts Options) *Loop {
	locale := opts.Locale
	if locale == nil {
		locale = i18n.Default()
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	l := &Loop{
		ctl:         opts.Controller,
		store:       opts.Controller.Store(),
		in:          opts.Input,
		out:         out,
		locale:      locale,
		maxUploadMB: opts.MaxUploadMB,
		color:       opts.Color,
		events:      make(chan playback.Event, 64),
		replies:     make(chan replyResult, 16),
		generated:   make(chan generationResult, 4),
		requests:    make(chan string),
		lines:       make(chan lineResult),
		done:        make(chan struct{}),
		forms:       map[string]deck.Form{},
		shown:       -1,
	}
	engineOpts := []playback.Option{playback.WithFallback(opts.Fallback)}
	if opts.Player != nil {
		engineOpts = append(engineOpts, playback.WithPlayer(opts.Player))
	}
	l.engine = playback.New(func(ev playback.Event) {
		go func() {
			select {
			case l.events <- ev:
			case <-l.done:
			}
		}()
	}, engineOpts...)
	return l
}

// ColorEnabled reports whether ANSI colors should be used on fd.
func ColorEnabled(fd int) bool {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		return false
	}
	if strings.TrimSpace(os.Getenv("DECKCHAT_NO_COLOR")) != "" {
		return false
	}
	if strings.ToLower(strings.TrimSpace(os.Getenv("TERM"))) == "dumb" {
		return false
	}
	return term.IsTerminal(fd)
}

// Run reads and handles input until EOF, /quit or ctx is cancelled. Work still in flight
// when input ends is waited for before returning.
func (l *Loop) Run(ctx context.Context) error {
	if l.ctl == nil || l.in == nil {
		return errors.New("repl: controller and input are required")
	}
	go l.readLines()
	defer close(l.done)
	defer l.engine.Dispatch(playback.Event{Kind: playback.EventClose})

	l.store.EnsureActive()
	l.println(l.locale.T("app.title"))
	l.printHelp()
	l.printSession()

	l.requests <- l.prompt()
	for {
		select {
		case res := <-l.lines:
			if res.err != nil {
				if errors.Is(res.err, readline.ErrInterrupt) {
					l.interrupt()
					l.requests <- l.prompt()
					continue
				}
				l.drain(ctx)
				if errors.Is(res.err, io.EOF) {
					return nil
				}
				return res.err
			}
			quit := l.handleLine(ctx, res.line)
			if l.inputErr != nil {
				l.drain(ctx)
				if errors.Is(l.inputErr, io.EOF) {
					return nil
				}
				return l.inputErr
			}
			if quit {
				l.drain(ctx)
				return nil
			}
			l.requests <- l.prompt()
		case r := <-l.replies:
			l.complete(r)
		case g := <-l.generated:
			l.finish(g)
		case ev := <-l.events:
			l.engine.Dispatch(ev)
			l.showSlide()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (l *Loop) readLines() {
	for {
		var prompt string
		select {
		case prompt = <-l.requests:
		case <-l.done:
			return
		}
		line, err := l.in.ReadLine(prompt)
		select {
		case l.lines <- lineResult{line: line, err: err}:
		case <-l.done:
			return
		}
		if err != nil && !errors.Is(err, readline.ErrInterrupt) {
			return
		}
	}
}

// ask reads one more line while a command is collecting input.
func (l *Loop) ask(label string) (string, bool) {
	l.requests <- l.paint(ansiCyan, label+": ")
	res := <-l.lines
	if res.err != nil {
		if !errors.Is(res.err, readline.ErrInterrupt) {
			l.inputErr = res.err
		}
		return "", false
	}
	return res.line, true
}

// drain stops playback and waits for in-flight sends and generations.
func (l *Loop) drain(ctx context.Context) {
	l.closing = true
	l.engine.Dispatch(playback.Event{Kind: playback.EventClose})
	for l.pending > 0 || l.generating > 0 {
		select {
		case r := <-l.replies:
			l.complete(r)
		case g := <-l.generated:
			l.finish(g)
		case <-ctx.Done():
			return
		}
	}
}

func (l *Loop) interrupt() {
	if l.viewing {
		l.closeViewer()
		return
	}
	l.println("")
}

func (l *Loop) handleLine(ctx context.Context, line string) bool {
	if l.viewing {
		return l.handleViewerLine(ctx, line)
	}
	input := strings.TrimSpace(line)
	if strings.HasPrefix(input, "/") {
		return l.handleCommand(ctx, input)
	}
	if input == "" && l.attachment == nil {
		return false
	}
	l.send(ctx, line)
	return false
}

func (l *Loop) send(ctx context.Context, text string) {
	p, err := l.ctl.Begin(text, l.attachment)
	if errors.Is(err, conversation.ErrEmptyMessage) {
		return
	}
	if err != nil {
		l.errorf(l.locale.T("error.storage", err.Error()))
		return
	}
	if l.attachment != nil {
		l.println(l.paint(ansiDim, l.locale.T("attach.echo", l.attachment.Name)))
	}
	l.attachment = nil
	l.pending++
	l.println(l.paint(ansiDim, l.locale.T(fmt.Sprintf("loading.%d", l.loading))))
	l.loading = (l.loading + 1) % 6

	ctl := l.ctl
	go func() {
		reply := ctl.Resolve(ctx, p)
		select {
		case l.replies <- replyResult{pending: p, reply: reply}:
		case <-l.done:
		}
	}()
}

func (l *Loop) complete(r replyResult) {
	l.pending--
	if !l.ctl.Complete(r.pending, r.reply) {
		return
	}
	if l.store.ActiveID() != r.pending.SessionID {
		if sess, ok := l.store.Session(r.pending.SessionID); ok {
			l.println(l.paint(ansiDim, fmt.Sprintf("↳ %s", sess.Title)))
		}
		return
	}
	if l.viewing {
		return
	}
	sess, _ := l.store.Active()
	l.printMessage(r.reply, documentIndex(sess, r.reply.ID))
}

// startGeneration collects the presentation form for a document and starts generation.
func (l *Loop) startGeneration(ctx context.Context, sessionID, documentID string) {
	msg, err := l.store.Message(sessionID, documentID)
	if err != nil || !msg.IsDocument() {
		l.errorf(l.locale.T("deck.no_document"))
		return
	}
	l.println(l.paint(ansiBold, l.locale.T("form.title")))
	l.println(l.paint(ansiDim, l.locale.T("form.description", msg.Title)))

	prev := l.forms[documentID]
	form := deck.Form{}
	var ok bool
	if form.FeaturedService, ok = l.askDefault(l.locale.T("form.featured"), prev.FeaturedService); !ok {
		return
	}
	if strings.TrimSpace(form.FeaturedService) == "" {
		l.errorf(l.locale.T("deck.featured_required"))
		return
	}
	if form.AnnouncementTitle, ok = l.askDefault(l.locale.T("form.announcement")+" · "+l.locale.T("form.ann_title"), prev.AnnouncementTitle); !ok {
		return
	}
	if form.HasAnnouncement() {
		if form.AnnouncementContent, ok = l.askDefault(l.locale.T("form.ann_content"), prev.AnnouncementContent); !ok {
			return
		}
		if form.AnnouncementClosing, ok = l.askDefault(l.locale.T("form.ann_closing"), prev.AnnouncementClosing); !ok {
			return
		}
	}
	if form.Visuals, ok = l.askDefault(l.locale.T("form.visuals"), prev.Visuals); !ok {
		return
	}

	g, err := l.ctl.BeginGeneration(sessionID, documentID, form)
	if err != nil {
		if errors.Is(err, deck.ErrFeaturedServiceRequired) {
			l.errorf(l.locale.T("deck.featured_required"))
			return
		}
		l.errorf(l.locale.T("deck.no_document"))
		return
	}
	l.forms[documentID] = form
	l.generating++
	l.println(l.paint(ansiDim, l.locale.T("deck.building")))

	ctl := l.ctl
	go func() {
		p, err := ctl.RunGeneration(ctx, g)
		select {
		case l.generated <- generationResult{gen: g, presentation: p, err: err}:
		case <-l.done:
		}
	}()
}

// askDefault asks for a field; an empty answer keeps the previous value.
func (l *Loop) askDefault(label, prev string) (string, bool) {
	if prev != "" {
		label = fmt.Sprintf("%s [%s]", label, prev)
	}
	v, ok := l.ask(label)
	if ok && v == "" {
		v = prev
	}
	return v, ok
}

func (l *Loop) finish(g generationResult) {
	l.generating--
	err := l.ctl.FinishGeneration(g.gen, g.presentation, g.err)
	switch {
	case g.err != nil:
		l.errorf(l.locale.T("deck.error", g.err.Error()))
	case err != nil:
		l.errorf(l.locale.T("error.storage", err.Error()))
	default:
		count := len(slides.Parse(g.presentation.HTML, g.presentation.Audio))
		l.println(l.paint(ansiGreen, l.locale.T("deck.generated", count)))
		if !l.closing && !l.viewing && l.store.ActiveID() == g.gen.SessionID {
			l.openViewer(g.gen.SessionID, g.gen.DocumentID)
		}
	}
	logging.Debug().Str("document", g.gen.DocumentID).Err(err).Msg("generation finished")
}

// --- 输出 / Output ---

func (l *Loop) prompt() string {
	if l.viewing {
		snap := l.engine.Snapshot()
		mark := "❚❚"
		if snap.State == playback.Playing {
			mark = "▶"
		}
		if snap.Count == 0 {
			return l.paint(ansiGreen, "[slides] > ")
		}
		return l.paint(ansiGreen, fmt.Sprintf("[%d/%d %s] > ", snap.Index+1, snap.Count, mark))
	}
	var parts []string
	if l.pending > 0 {
		parts = append(parts, l.locale.T("status.pending", l.pending))
	}
	if l.generating > 0 {
		parts = append(parts, l.locale.T("status.generating"))
	}
	if l.attachment != nil {
		parts = append(parts, "📎 "+l.attachment.Name)
	}
	if len(parts) == 0 {
		return l.paint(ansiGreen, "> ")
	}
	return l.paint(ansiDim, "["+strings.Join(parts, " · ")+"] ") + l.paint(ansiGreen, "> ")
}

func (l *Loop) paint(color, s string) string {
	if !l.color || s == "" {
		return s
	}
	return color + s + ansiReset
}

func (l *Loop) println(s string) {
	_, _ = fmt.Fprintln(l.out, s)
}

func (l *Loop) errorf(s string) {
	l.println(l.paint(ansiRed, s))
}

func (l *Loop) printHelp() {
	l.println(l.paint(ansiDim, l.locale.T("cmd.help")))
}

// printSession replays the active session's transcript.
func (l *Loop) printSession() {
	sess, ok := l.store.Active()
	if !ok {
		return
	}
	l.println(l.paint(ansiBold, "── "+sess.Title+" ──"))
	if len(sess.Messages) == 0 {
		l.println(l.locale.T("starter.heading"))
		for i := 0; i < 3; i++ {
			l.println(fmt.Sprintf("  %d. %s", i+1, l.locale.T(fmt.Sprintf("starter.%d.title", i))))
		}
		return
	}
	docs := 0
	for _, m := range sess.Messages {
		if m.IsDocument() {
			docs++
		}
		l.printMessage(m, docs)
	}
}

func (l *Loop) printMessage(m chat.Message, docIndex int) {
	if m.Sender == chat.SenderUser {
		l.println(l.paint(ansiCyan, l.locale.T("transcript.you")+":") + " " + m.Text)
		if m.Attachment != "" {
			l.println(l.paint(ansiDim, l.locale.T("attach.echo", m.Attachment)))
		}
		return
	}
	label := l.paint(ansiBold, l.locale.T("transcript.bot")+":")
	if !m.IsDocument() {
		l.println(label + " " + m.Text)
		return
	}
	l.println(label + " " + l.paint(ansiYellow, fmt.Sprintf("[%d] ", docIndex)+l.locale.T("transcript.document", m.Title)))
	for _, line := range strings.Split(slides.Text(m.Text), "\n") {
		l.println("  " + line)
	}
	marker := l.locale.T("transcript.no_deck")
	if m.Presentation != nil {
		marker = l.locale.T("transcript.has_deck")
	}
	l.println(l.paint(ansiDim, "  "+marker))
}

func documentIndex(s chat.Session, messageID string) int {
	n := 0
	for _, m := range s.Messages {
		if m.IsDocument() {
			n++
			if m.ID == messageID {
				return n
			}
		}
	}
	return 0
}
