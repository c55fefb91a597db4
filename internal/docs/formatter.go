// Package docs turns raw endpoint payloads into titled, sanitized HTML documents.
package docs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"deckchat/internal/config"
	"deckchat/internal/defaults"
	"deckchat/internal/logging"
	"deckchat/internal/provider"
)

// ErrEmptyDocument is returned when formatting produced no usable body.
var ErrEmptyDocument = errors.New("formatted document is empty")

// fallbackTitle is used when the model leaves the title blank.
const fallbackTitle = "Document"

// Document is the formatting result: a short title and a semantic HTML fragment without
// styling directives.
type Document struct {
	Title string `json:"title"`
	HTML  string `json:"html"`
}

// Formatter formats raw payloads through the model and sanitizes what comes back.
type Formatter struct {
	provider    provider.Provider
	temperature float64
	policy      *bluemonday.Policy
}

func NewFormatter(p provider.Provider, cfg config.GenerationConfig) *Formatter {
	return &Formatter{
		provider:    p,
		temperature: cfg.FormatTemperature,
		policy:      Policy(),
	}
}

// Policy allows the semantic subset the formatter prompt asks for and nothing else. Class and
// style attributes never survive.
func Policy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("h1", "h2", "h3", "h4", "p", "br", "strong", "em", "b", "i", "blockquote", "code", "pre", "hr")
	p.AllowLists()
	p.AllowTables()
	p.AllowStandardURLs()
	p.AllowAttrs("href").OnElements("a")
	p.RequireNoFollowOnLinks(false)
	return p
}

// Format asks the model for {title, html} and sanitizes the html.
func (f *Formatter) Format(ctx context.Context, raw string) (Document, error) {
	if strings.TrimSpace(raw) == "" {
		return Document{}, ErrEmptyDocument
	}
	temp := f.temperature
	var doc Document
	err := provider.CompleteJSON(ctx, f.provider, provider.CompletionRequest{
		System:      defaults.FormatDocumentPrompt,
		Messages:    []provider.Message{{Role: "user", Content: raw}},
		Temperature: &temp,
	}, &doc)
	if err != nil {
		return Document{}, fmt.Errorf("format document: %w", err)
	}
	return f.finish(doc)
}

func (f *Formatter) finish(doc Document) (Document, error) {
	doc.HTML = strings.TrimSpace(f.policy.Sanitize(doc.HTML))
	if doc.HTML == "" {
		return Document{}, ErrEmptyDocument
	}
	doc.Title = strings.TrimSpace(doc.Title)
	if doc.Title == "" {
		doc.Title = fallbackTitle
	}
	logging.Debug().Str("title", doc.Title).Int("html_bytes", len(doc.HTML)).Msg("document formatted")
	return doc, nil
}
