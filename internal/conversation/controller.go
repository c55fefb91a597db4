// Package conversation runs user turns against the processing endpoint and turns document
// replies into presentations.
package conversation

import (
	"context"
	"errors"
	"strings"
	"time"

	"deckchat/internal/chat"
	"deckchat/internal/deck"
	"deckchat/internal/docs"
	"deckchat/internal/endpoint"
	"deckchat/internal/i18n"
	"deckchat/internal/logging"
	"deckchat/internal/session"
)

// ErrEmptyMessage is returned for a send with neither text nor attachment.
var ErrEmptyMessage = errors.New("message is empty")

// Dispatcher forwards a turn to the processing endpoint.
type Dispatcher interface {
	Configured() bool
	Dispatch(ctx context.Context, req endpoint.Request) (endpoint.Result, error)
}

// Formatter turns a raw document payload into a titled HTML document.
type Formatter interface {
	Format(ctx context.Context, raw string) (docs.Document, error)
}

// Generator builds a presentation for one document.
type Generator interface {
	Generate(ctx context.Context, docID, source string, form deck.Form) (chat.Presentation, error)
}

// Controller owns the send and generate flows. Every async step carries the session id
// captured when it started, so replies land in the originating session even after the
// user switches away.
type Controller struct {
	store     *session.Store
	endpoint  Dispatcher
	formatter Formatter
	generator Generator
	locale    *i18n.Catalog
}

// Option configures a Controller.
type Option func(*Controller)

// WithLocale sets the catalog used for bot replies.
func WithLocale(l *i18n.Catalog) Option {
	return func(c *Controller) { c.locale = l }
}

func New(store *session.Store, ep Dispatcher, f Formatter, g Generator, opts ...Option) *Controller {
	c := &Controller{store: store, endpoint: ep, formatter: f, generator: g}
	for _, opt := range opts {
		opt(c)
	}
	if c.locale == nil {
		c.locale = i18n.Default()
	}
	return c
}

// Store returns the session store the controller writes to.
func (c *Controller) Store() *session.Store {
	return c.store
}

// Pending is a user turn waiting for its reply. UserMessageID is empty when the turn was
// not recorded because no endpoint is configured.
type Pending struct {
	SessionID     string
	UserMessageID string
	Request       endpoint.Request
	StartedAt     time.Time
}

// Begin records the user turn in the active session (creating one when needed) and
// returns the request to dispatch. Without a configured endpoint no user turn is recorded:
// Resolve answers at once with the "not configured" message and nothing is sent.
func (c *Controller) Begin(text string, att *endpoint.Attachment) (Pending, error) {
	if strings.TrimSpace(text) == "" && att == nil {
		return Pending{}, ErrEmptyMessage
	}
	sessionID := c.store.EnsureActive()
	p := Pending{
		SessionID: sessionID,
		Request:   endpoint.Request{Message: text, SessionID: sessionID, Attachment: att},
		StartedAt: time.Now(),
	}
	if !c.configured() {
		logging.Warn().Str("session", sessionID).Msg("endpoint url not configured, message not sent")
		return p, nil
	}
	msg := chat.Message{
		ID:     newMessageID(),
		Sender: chat.SenderUser,
		Kind:   chat.KindText,
		Text:   text,
	}
	if att != nil {
		msg.Attachment = att.Name
	}
	c.store.AppendMessage(sessionID, msg)
	p.UserMessageID = msg.ID
	return p, nil
}

func (c *Controller) configured() bool {
	return c.endpoint != nil && c.endpoint.Configured()
}

// Resolve performs the network round trip and returns the bot reply. It never fails:
// every error becomes an apology message. It does not touch the store.
func (c *Controller) Resolve(ctx context.Context, p Pending) chat.Message {
	if !c.configured() {
		return c.botText(c.locale.T("reply.not_configured"))
	}
	res, err := c.endpoint.Dispatch(ctx, p.Request)
	if err != nil {
		return c.botText(c.apology(err, p))
	}

	switch res.Kind {
	case endpoint.ResultDocument:
		doc, err := c.formatter.Format(ctx, res.Raw)
		if err != nil {
			logging.Error().Err(err).Str("session", p.SessionID).Msg("document formatting failed")
			return c.botText(c.locale.T("reply.network"))
		}
		return chat.Message{
			ID:      newMessageID(),
			Sender:  chat.SenderBot,
			Kind:    chat.KindDocument,
			Title:   doc.Title,
			Text:    doc.HTML,
			RawData: res.Raw,
		}
	case endpoint.ResultText:
		return c.botText(res.Text)
	default:
		logging.Warn().Str("session", p.SessionID).Msg("endpoint reply had no data_result or message")
		return c.botText(c.locale.T("reply.unrecognized"))
	}
}

// Complete appends the reply to the session captured by Begin. It reports false when that
// session was deleted in the meantime.
func (c *Controller) Complete(p Pending, reply chat.Message) bool {
	ok := c.store.AppendMessage(p.SessionID, reply)
	logging.Info().
		Str("session", p.SessionID).
		Str("kind", string(reply.Kind)).
		Dur("elapsed", time.Since(p.StartedAt)).
		Bool("delivered", ok).
		Msg("turn completed")
	return ok
}

// SendMessage runs a whole turn synchronously.
func (c *Controller) SendMessage(ctx context.Context, text string, att *endpoint.Attachment) (Pending, chat.Message, error) {
	p, err := c.Begin(text, att)
	if err != nil {
		return Pending{}, chat.Message{}, err
	}
	reply := c.Resolve(ctx, p)
	c.Complete(p, reply)
	return p, reply, nil
}

func (c *Controller) apology(err error, p Pending) string {
	var statusErr *endpoint.StatusError
	switch {
	case errors.Is(err, endpoint.ErrNotConfigured):
		return c.locale.T("reply.not_configured")
	case errors.As(err, &statusErr):
		logging.Error().Int("status", statusErr.Code).Str("body", statusErr.Body).Str("session", p.SessionID).Msg("endpoint error status")
		return c.locale.T("reply.status_error", statusErr.Code)
	case errors.Is(err, endpoint.ErrNotJSON):
		return c.locale.T("reply.not_json")
	default:
		logging.Error().Err(err).Str("session", p.SessionID).Msg("endpoint request failed")
		return c.locale.T("reply.network")
	}
}

func (c *Controller) botText(text string) chat.Message {
	return chat.Message{
		ID:     newMessageID(),
		Sender: chat.SenderBot,
		Kind:   chat.KindText,
		Text:   text,
	}
}
