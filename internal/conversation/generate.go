package conversation

import (
	"context"
	"errors"
	"fmt"

	"deckchat/internal/chat"
	"deckchat/internal/deck"
	"deckchat/internal/logging"
	"deckchat/internal/session"
	"deckchat/internal/storage"
)

// Generation is a presentation request for one document message.
type Generation struct {
	SessionID  string
	DocumentID string
	Source     string
	Form       deck.Form
}

// BeginGeneration validates the form and captures the document's source text. It fails
// without any model call when the featured service is blank or the message is not a
// document.
func (c *Controller) BeginGeneration(sessionID, documentID string, form deck.Form) (Generation, error) {
	form, err := form.Validate()
	if err != nil {
		return Generation{}, err
	}
	msg, err := c.store.Message(sessionID, documentID)
	if err != nil {
		return Generation{}, err
	}
	if !msg.IsDocument() {
		return Generation{}, session.ErrNotDocument
	}
	return Generation{SessionID: sessionID, DocumentID: documentID, Source: msg.SourceText(), Form: form}, nil
}

// RunGeneration calls the generation stages. It does not touch the store.
func (c *Controller) RunGeneration(ctx context.Context, g Generation) (chat.Presentation, error) {
	if c.generator == nil {
		return chat.Presentation{}, errors.New("presentation generation is not available")
	}
	return c.generator.Generate(ctx, g.DocumentID, g.Source, g.Form)
}

// FinishGeneration stores the presentation on its document, replacing any earlier one. On
// failure it appends an explanatory bot message to the originating session and leaves the
// document untouched so the user can retry.
func (c *Controller) FinishGeneration(g Generation, p chat.Presentation, genErr error) error {
	if genErr != nil {
		logging.Error().Err(genErr).Str("document", g.DocumentID).Msg("presentation generation failed")
		text := c.locale.T("deck.error", genErr.Error())
		if errors.Is(genErr, deck.ErrEmptyContent) {
			text = c.locale.T("deck.error_empty")
		}
		c.store.AppendMessage(g.SessionID, c.botText(text))
		return genErr
	}
	if err := c.store.AttachPresentation(g.SessionID, g.DocumentID, p); err != nil {
		logging.Warn().Err(err).Str("document", g.DocumentID).Msg("presentation target vanished")
		return fmt.Errorf("attach presentation: %w", err)
	}
	return nil
}

// GeneratePresentation runs a whole generation synchronously. Calling it again for the
// same document regenerates the presentation.
func (c *Controller) GeneratePresentation(ctx context.Context, sessionID, documentID string, form deck.Form) (chat.Presentation, error) {
	g, err := c.BeginGeneration(sessionID, documentID, form)
	if err != nil {
		return chat.Presentation{}, err
	}
	p, err := c.RunGeneration(ctx, g)
	if err := c.FinishGeneration(g, p, err); err != nil {
		return chat.Presentation{}, err
	}
	return p, nil
}

func newMessageID() string {
	return storage.NewMessageID()
}
