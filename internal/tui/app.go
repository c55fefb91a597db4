package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

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

// Mode 当前界面模式
// Mode is the screen the app is showing
type Mode int

const (
	ModeChat Mode = iota
	ModeForm
	ModeViewer
)

// starterCount 空会话时提供的示例提问数 / prompt starters offered on an empty session
const starterCount = 3

// loadingCount 发送中轮换的提示语数量 / rotating loading messages
const loadingCount = 6

// --- Tea Messages ---

// replyMsg 端点回复已解析 / an endpoint reply has been resolved
type replyMsg struct {
	pending conversation.Pending
	reply   chat.Message
}

// generatedMsg 演示文稿生成结束 / a presentation generation finished
type generatedMsg struct {
	gen          conversation.Generation
	presentation chat.Presentation
	err          error
}

// playbackMsg 播放引擎的音频或计时器完成事件
// playbackMsg carries an audio or timer completion back to the engine
type playbackMsg playback.Event

// Options 配置 TUI / Options configures the TUI
type Options struct {
	Controller  *conversation.Controller
	Player      playback.Player
	Fallback    time.Duration
	MaxUploadMB int
	Locale      *i18n.Catalog
	Context     context.Context
}

// App Bubble Tea 主 Model
// App is the main Bubble Tea model
type App struct {
	// 布局 / Layout
	width  int
	height int
	mode   Mode

	// 组件 / Components
	chatView viewport.Model
	input    textarea.Model
	spinner  spinner.Model
	form     promptForm
	viewer   viewer

	// 领域对象 / Domain
	ctx    context.Context
	ctl    *conversation.Controller
	store  *session.Store
	engine *playback.Engine
	events chan playback.Event

	// 状态 / State
	attachment  *endpoint.Attachment
	maxUploadMB int
	pending     int
	generating  int
	loading     int
	notice      string
	forms       map[string]deck.Form

	// 配置 / Config
	theme  Theme
	keys   KeyMap
	locale *i18n.Catalog
}

// NewApp 创建 TUI 应用
// NewApp creates a new TUI application
func NewApp(opts Options) App {
	locale := opts.Locale
	if locale == nil {
		locale = i18n.Default()
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	ta := textarea.New()
	ta.Placeholder = locale.T("composer.placeholder")
	ta.CharLimit = 8192
	ta.SetHeight(3)
	ta.ShowLineNumbers = false
	ta.KeyMap.InsertNewline.SetKeys("alt+enter", "ctrl+j")
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	events := make(chan playback.Event, 64)
	post := func(ev playback.Event) {
		go func() { events <- ev }()
	}
	engineOpts := []playback.Option{playback.WithFallback(opts.Fallback)}
	if opts.Player != nil {
		engineOpts = append(engineOpts, playback.WithPlayer(opts.Player))
	}

	a := App{
		mode:        ModeChat,
		input:       ta,
		spinner:     sp,
		ctx:         ctx,
		ctl:         opts.Controller,
		store:       opts.Controller.Store(),
		engine:      playback.New(post, engineOpts...),
		events:      events,
		maxUploadMB: opts.MaxUploadMB,
		forms:       map[string]deck.Form{},
		theme:       DarkTheme(),
		keys:        DefaultKeyMap(),
		locale:      locale,
	}
	a.store.EnsureActive()
	a.refresh()
	return a
}

func (a App) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, a.spinner.Tick, a.waitPlayback())
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.relayout()
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case replyMsg:
		a.pending--
		a.ctl.Complete(msg.pending, msg.reply)
		a.refresh()
		return a, nil

	case generatedMsg:
		return a.finishGeneration(msg)

	case playbackMsg:
		a.engine.Dispatch(playback.Event(msg))
		return a, a.waitPlayback()

	case tea.MouseMsg:
		if a.mode == ModeChat {
			var cmd tea.Cmd
			a.chatView, cmd = a.chatView.Update(msg)
			return a, cmd
		}
		return a, nil

	case tea.KeyMsg:
		if key.Matches(msg, a.keys.Quit) {
			a.Close()
			return a, tea.Quit
		}
		switch a.mode {
		case ModeForm:
			return a.updateForm(msg)
		case ModeViewer:
			return a.updateViewer(msg)
		default:
			return a.updateChat(msg)
		}
	}

	var cmd tea.Cmd
	switch a.mode {
	case ModeForm:
		a.form, cmd = a.form.update(msg)
	case ModeChat:
		a.input, cmd = a.input.Update(msg)
	}
	return a, cmd
}

func (a App) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.NewChat):
		a.store.CreateSession()
		a.notice = a.locale.T("cmd.created")
		a.refresh()
		return a, nil
	case key.Matches(msg, a.keys.PrevSession):
		a.cycleSession(-1)
		return a, nil
	case key.Matches(msg, a.keys.NextSession):
		a.cycleSession(1)
		return a, nil
	case key.Matches(msg, a.keys.Cancel):
		a.attachment = nil
		a.notice = ""
		return a, nil
	case key.Matches(msg, a.keys.PageUp), key.Matches(msg, a.keys.PageDown):
		var cmd tea.Cmd
		a.chatView, cmd = a.chatView.Update(msg)
		return a, cmd
	case key.Matches(msg, a.keys.Submit):
		text := a.input.Value()
		if strings.HasPrefix(strings.TrimSpace(text), "/") {
			return a, a.handleCommand(text)
		}
		return a, a.send(text)
	}

	if n, ok := a.starterKey(msg); ok {
		return a, a.send(a.locale.T(fmt.Sprintf("starter.%d.prompt", n)))
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a App) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Cancel):
		a.mode = ModeChat
		a.notice = ""
		return a, nil
	case key.Matches(msg, a.keys.NextField):
		a.form.move(1)
		return a, nil
	case key.Matches(msg, a.keys.PrevField):
		a.form.move(-1)
		return a, nil
	case key.Matches(msg, a.keys.Submit):
		return a, a.submitForm()
	}
	var cmd tea.Cmd
	a.form, cmd = a.form.update(msg)
	return a, cmd
}

func (a App) updateViewer(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Cancel):
		a.engine.Dispatch(playback.Event{Kind: playback.EventClose})
		a.mode = ModeChat
	case key.Matches(msg, a.keys.NextSlide):
		a.engine.Dispatch(playback.Event{Kind: playback.EventNext})
	case key.Matches(msg, a.keys.PrevSlide):
		a.engine.Dispatch(playback.Event{Kind: playback.EventPrev})
	case key.Matches(msg, a.keys.Toggle):
		a.engine.Dispatch(playback.Event{Kind: playback.EventToggle})
	case key.Matches(msg, a.keys.Regenerate):
		a.engine.Dispatch(playback.Event{Kind: playback.EventClose})
		return a, a.openForm(a.viewer.sessionID, a.viewer.documentID)
	}
	return a, nil
}

// send 写入用户消息并在后台请求端点
// send records the user turn and resolves the endpoint reply off the UI loop
func (a *App) send(text string) tea.Cmd {
	p, err := a.ctl.Begin(text, a.attachment)
	if errors.Is(err, conversation.ErrEmptyMessage) {
		return nil
	}
	if err != nil {
		a.notice = a.locale.T("error.storage", err.Error())
		return nil
	}
	a.input.Reset()
	a.attachment = nil
	a.notice = ""
	a.pending++
	a.loading = (a.loading + 1) % loadingCount
	a.refresh()

	ctx, ctl := a.ctx, a.ctl
	return func() tea.Msg {
		return replyMsg{pending: p, reply: ctl.Resolve(ctx, p)}
	}
}

func (a *App) submitForm() tea.Cmd {
	form := a.form.value()
	g, err := a.ctl.BeginGeneration(a.form.sessionID, a.form.documentID, form)
	if errors.Is(err, deck.ErrFeaturedServiceRequired) {
		a.form.err = a.locale.T("deck.featured_required")
		return nil
	}
	if err != nil {
		a.mode = ModeChat
		a.notice = a.locale.T("deck.no_document")
		logging.Warn().Err(err).Str("document", a.form.documentID).Msg("generation not started")
		return nil
	}
	a.forms[g.DocumentID] = form
	a.mode = ModeChat
	a.generating++
	a.notice = a.locale.T("deck.building")

	ctx, ctl := a.ctx, a.ctl
	return func() tea.Msg {
		p, err := ctl.RunGeneration(ctx, g)
		return generatedMsg{gen: g, presentation: p, err: err}
	}
}

func (a App) finishGeneration(msg generatedMsg) (tea.Model, tea.Cmd) {
	a.generating--
	err := a.ctl.FinishGeneration(msg.gen, msg.presentation, msg.err)
	a.refresh()
	switch {
	case msg.err != nil:
		a.notice = ""
	case err != nil:
		a.notice = a.locale.T("error.storage", err.Error())
	default:
		a.notice = a.locale.T("deck.generated", len(slides.Parse(msg.presentation.HTML, msg.presentation.Audio)))
		if a.mode == ModeChat && a.store.ActiveID() == msg.gen.SessionID {
			a.openViewer(msg.gen.SessionID, msg.gen.DocumentID)
		}
	}
	return a, nil
}

func (a *App) openForm(sessionID, documentID string) tea.Cmd {
	m, err := a.store.Message(sessionID, documentID)
	if err != nil || !m.IsDocument() {
		a.mode = ModeChat
		a.notice = a.locale.T("deck.no_document")
		return nil
	}
	a.form = newPromptForm(a.locale, sessionID, documentID, m.Title, a.formFor(documentID))
	a.form.setWidth(a.mainWidth() - 4)
	a.mode = ModeForm
	return textinput.Blink
}

func (a *App) openViewer(sessionID, documentID string) {
	m, err := a.store.Message(sessionID, documentID)
	if err != nil {
		a.notice = a.locale.T("deck.no_document")
		return
	}
	if m.Presentation == nil {
		a.notice = a.locale.T("cmd.no_presentation")
		return
	}
	a.engine.Dispatch(playback.Event{
		Kind:   playback.EventOpen,
		Slides: slides.Parse(m.Presentation.HTML, m.Presentation.Audio),
	})
	a.viewer = newViewer(sessionID, documentID, m.Title)
	a.mode = ModeViewer
}

func (a *App) cycleSession(delta int) {
	list := a.store.ListByRecency()
	if len(list) == 0 {
		return
	}
	active := a.store.ActiveID()
	idx := 0
	for i, s := range list {
		if s.ID == active {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(list)) % len(list)
	a.store.SelectSession(list[idx].ID)
	a.refresh()
}

// starterKey 空会话且输入框为空时，1-3 发送示例提问
// starterKey maps 1-3 to prompt starters while the active session and composer are empty
func (a *App) starterKey(msg tea.KeyMsg) (int, bool) {
	if msg.Type != tea.KeyRunes || len(msg.Runes) != 1 || a.input.Value() != "" {
		return 0, false
	}
	n := int(msg.Runes[0] - '1')
	if n < 0 || n >= starterCount {
		return 0, false
	}
	if sess, ok := a.store.Active(); !ok || len(sess.Messages) > 0 {
		return 0, false
	}
	return n, true
}

func (a App) waitPlayback() tea.Cmd {
	events := a.events
	return func() tea.Msg {
		return playbackMsg(<-events)
	}
}

// Close 停止播放 / Close stops playback
func (a App) Close() {
	a.engine.Dispatch(playback.Event{Kind: playback.EventClose})
}

// --- 内部方法 / Internal methods ---

func (a *App) sidebarWidth() int {
	w := a.width * 25 / 100
	if w < 20 {
		w = 20
	}
	if w > 36 {
		w = 36
	}
	if a.width < 70 {
		w = 0
	}
	return w
}

func (a *App) mainWidth() int {
	w := a.width - a.sidebarWidth()
	if a.sidebarWidth() > 0 {
		w-- // border
	}
	if w < 20 {
		w = 20
	}
	return w
}

func (a *App) relayout() {
	mainWidth := a.mainWidth()
	panelHeight := a.height - 8
	if panelHeight < 3 {
		panelHeight = 3
	}

	a.chatView = viewport.New(mainWidth, panelHeight)
	a.input.SetWidth(mainWidth - 2)
	a.form.setWidth(mainWidth - 4)
	a.refresh()
}

func (a *App) refresh() {
	sess, ok := a.store.Active()
	if !ok {
		a.chatView.SetContent("")
		return
	}
	width := a.mainWidth() - 2
	if len(sess.Messages) == 0 {
		a.chatView.SetContent(a.renderStarters())
		return
	}
	a.chatView.SetContent(RenderTranscript(sess, a.theme, a.locale, width))
	a.chatView.GotoBottom()
}

// --- 渲染方法 / Render methods ---

func (a App) View() string {
	if a.width == 0 || a.height == 0 {
		return "Initializing..."
	}
	statusBar := a.renderStatusBar(a.width)

	if a.mode == ModeViewer {
		body := a.viewer.view(a.engine.Snapshot(), a.theme, a.locale, a.width, a.height-1)
		body = lipgloss.NewStyle().Width(a.width).Height(a.height-1).Padding(0, 1).Render(body)
		return lipgloss.JoinVertical(lipgloss.Left, body, statusBar)
	}

	mainWidth := a.mainWidth()
	var main string
	if a.mode == ModeForm {
		main = lipgloss.NewStyle().Width(mainWidth).Height(a.height-1).Padding(0, 1).
			Render(a.form.view(a.theme, a.locale))
	} else {
		panel := lipgloss.NewStyle().Width(mainWidth).Height(a.chatView.Height).Render(a.chatView.View())
		main = lipgloss.JoinVertical(lipgloss.Left, panel, a.renderNotice(mainWidth), a.renderInput(mainWidth))
	}

	if w := a.sidebarWidth(); w > 0 {
		main = lipgloss.JoinHorizontal(lipgloss.Top, a.renderSidebar(w, a.height-1), main)
	}
	return lipgloss.JoinVertical(lipgloss.Left, main, statusBar)
}

func (a App) renderStarters() string {
	var b strings.Builder
	b.WriteString(a.theme.TitleStyle.Render(a.locale.T("starter.heading")))
	b.WriteString("\n\n")
	for i := 0; i < starterCount; i++ {
		b.WriteString(fmt.Sprintf("  %d. %s\n", i+1, a.locale.T(fmt.Sprintf("starter.%d.title", i))))
	}
	return b.String()
}

func (a App) renderNotice(width int) string {
	line := a.notice
	if a.attachment != nil && line == "" {
		line = a.locale.T("attach.pending", a.attachment.Name)
	}
	if a.pending > 0 {
		loading := a.spinner.View() + " " + a.locale.T(fmt.Sprintf("loading.%d", a.loading))
		if line == "" {
			line = loading
		}
	}
	return a.theme.MutedStyle.Width(width).MaxHeight(2).Render(line)
}

func (a App) renderInput(width int) string {
	return a.theme.InputStyle.Width(width).Render(a.input.View())
}

func (a App) renderSidebar(width, height int) string {
	var parts []string

	parts = append(parts, a.theme.TitleStyle.Render(" "+a.locale.T("app.title")))
	parts = append(parts, "")
	parts = append(parts, a.theme.TitleStyle.Render(" "+a.locale.T("sidebar.sessions")))

	active := a.store.ActiveID()
	for i, s := range a.store.ListByRecency() {
		title := fmt.Sprintf("%d. %s", i+1, s.Title)
		if lipgloss.Width(title) > width-3 {
			title = string([]rune(title)[:max(width-4, 1)]) + "…"
		}
		style := a.theme.InactiveItemStyle
		if s.ID == active {
			style = a.theme.ActiveItemStyle
		}
		parts = append(parts, " "+style.Render(title))
		parts = append(parts, "   "+a.theme.MutedStyle.Render(a.locale.T("sidebar.messages", len(s.Messages))))
	}
	parts = append(parts, "")
	parts = append(parts, a.theme.MutedStyle.Render(" ctrl+n "+a.locale.T("sidebar.new")))

	return a.theme.SidebarStyle.
		Width(width).
		Height(height).
		Render(strings.Join(parts, "\n"))
}

func (a App) renderStatusBar(width int) string {
	status := a.locale.T("status.ready")
	switch {
	case a.generating > 0:
		status = a.spinner.View() + " " + a.locale.T("status.generating")
	case a.pending > 0:
		status = a.spinner.View() + " " + a.locale.T("status.sending")
	}
	if a.pending > 0 {
		status += " · " + a.locale.T("status.pending", a.pending)
	}

	title := ""
	if sess, ok := a.store.Active(); ok {
		title = sess.Title
	}
	left := fmt.Sprintf(" %s · %s", a.locale.T("app.title"), status)
	right := fmt.Sprintf("%s  ", title)

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	return a.theme.StatusBarStyle.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}

// Run 启动 Bubble Tea TUI
// Run starts the Bubble Tea TUI application
func Run(opts Options) error {
	app := NewApp(opts)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	app.Close()
	return err
}
