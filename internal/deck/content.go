// Package deck builds presentations from document text: structured slide content from the
// model, fixed-layout markup, and optional per-slide narration.
package deck

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"deckchat/internal/config"
	"deckchat/internal/contextmgr"
	"deckchat/internal/defaults"
	"deckchat/internal/logging"
	"deckchat/internal/provider"
)

var (
	// ErrEmptyContent is returned when the model produced no usable slide content.
	ErrEmptyContent = errors.New("slide content is empty")
	// ErrFeaturedServiceRequired is returned when the form has no featured service.
	ErrFeaturedServiceRequired = errors.New("featured service is required")
)

const (
	DefaultPresenter          = "Professional Development Session • Today"
	FeaturedServiceTitle      = "FEATURED SERVICE TONIGHT"
	DefaultAnnouncementHeader = "Team Announcement"
	actionItemCount           = 4
	implementationStepCount   = 5
)

// Form is what the user supplies alongside the source document.
type Form struct {
	FeaturedService     string
	AnnouncementTitle   string
	AnnouncementContent string
	AnnouncementClosing string
	// Visuals is free-text visual preference carried on the rendered markup.
	Visuals string
}

// Validate checks the required field. Values are kept exactly as typed.
func (f Form) Validate() (Form, error) {
	if strings.TrimSpace(f.FeaturedService) == "" {
		return f, ErrFeaturedServiceRequired
	}
	return f, nil
}

// HasAnnouncement reports whether an announcement slide was requested.
func (f Form) HasAnnouncement() bool {
	return strings.TrimSpace(f.AnnouncementTitle) != ""
}

// Content is the flat record every slide template draws from.
type Content struct {
	Title     string `json:"title"`
	Subtitle  string `json:"subtitle"`
	Presenter string `json:"presenter"`

	TipTitle       string   `json:"tipTitle"`
	TipIntro       string   `json:"tipIntro"`
	TipPara1       string   `json:"tipPara1"`
	TipPara2       string   `json:"tipPara2"`
	TipActionItems []string `json:"tipActionItems"`
	TipTakeaway    string   `json:"tipTakeaway"`

	TipContinuationTitle   string   `json:"tipContinuationTitle"`
	TipContinuationPara1   string   `json:"tipContinuationPara1"`
	TipContinuationPara2   string   `json:"tipContinuationPara2"`
	TipContinuationPara3   string   `json:"tipContinuationPara3"`
	TipImplementationSteps []string `json:"tipImplementationSteps"`
	TipNextAction          string   `json:"tipNextAction"`

	Objection    string `json:"objection"`
	Rebuttal     string `json:"rebuttal"`
	RebuttalWhy1 string `json:"rebuttalWhy1"`
	RebuttalWhy2 string `json:"rebuttalWhy2"`
	RebuttalWhy3 string `json:"rebuttalWhy3"`
	RebuttalWhy4 string `json:"rebuttalWhy4"`

	FeaturedServiceTitle string `json:"featuredServiceTitle"`
	FeaturedServiceName  string `json:"featuredServiceName"`
	FAQQuestion          string `json:"faqQuestion"`
	FAQAnswer            string `json:"faqAnswer"`

	AnnouncementHeader  string `json:"announcementHeader,omitempty"`
	AnnouncementTitle   string `json:"announcementTitle,omitempty"`
	AnnouncementContent string `json:"announcementContent,omitempty"`
	AnnouncementClosing string `json:"announcementClosing,omitempty"`

	Quote  string `json:"quote"`
	Author string `json:"author"`
}

// HasAnnouncement reports whether the announcement slide is part of the deck.
func (c Content) HasAnnouncement() bool {
	return c.AnnouncementTitle != ""
}

// IsEmpty reports whether the model left every headline field blank.
func (c Content) IsEmpty() bool {
	return strings.TrimSpace(c.Title) == "" &&
		strings.TrimSpace(c.TipTitle) == "" &&
		strings.TrimSpace(c.Objection) == "" &&
		strings.TrimSpace(c.Quote) == ""
}

// Enforce applies the form to the record: the featured service is the user's text, the
// announcement fields are the user's text or blank, and the list lengths are fixed.
func (c Content) Enforce(form Form) Content {
	c.Presenter = strings.TrimSpace(c.Presenter)
	if c.Presenter == "" {
		c.Presenter = DefaultPresenter
	}
	c.FeaturedServiceTitle = FeaturedServiceTitle
	c.FeaturedServiceName = form.FeaturedService
	c.TipActionItems = fitList(c.TipActionItems, actionItemCount)
	c.TipImplementationSteps = fitList(c.TipImplementationSteps, implementationStepCount)

	if form.HasAnnouncement() {
		c.AnnouncementTitle = form.AnnouncementTitle
		c.AnnouncementContent = form.AnnouncementContent
		c.AnnouncementClosing = form.AnnouncementClosing
		c.AnnouncementHeader = strings.TrimSpace(c.AnnouncementHeader)
		if c.AnnouncementHeader == "" {
			c.AnnouncementHeader = DefaultAnnouncementHeader
		}
	} else {
		c.AnnouncementHeader = ""
		c.AnnouncementTitle = ""
		c.AnnouncementContent = ""
		c.AnnouncementClosing = ""
	}
	return c
}

// fitList trims blank entries and pads or cuts to n items.
func fitList(items []string, n int) []string {
	out := make([]string, 0, n)
	for _, item := range items {
		if s := strings.TrimSpace(item); s != "" && len(out) < n {
			out = append(out, s)
		}
	}
	for len(out) < n {
		out = append(out, "")
	}
	return out
}

// ContentGenerator asks the model for the slide record of a source document.
type ContentGenerator struct {
	provider    provider.Provider
	tokenizer   *contextmgr.Tokenizer
	tokenLimit  int
	temperature float64
}

func NewContentGenerator(p provider.Provider, tok *contextmgr.Tokenizer, cfg config.GenerationConfig) *ContentGenerator {
	if tok == nil {
		tok = contextmgr.DefaultTokenizer()
	}
	return &ContentGenerator{
		provider:    p,
		tokenizer:   tok,
		tokenLimit:  cfg.SourceTokenLimit,
		temperature: cfg.ContentTemperature,
	}
}

// Generate returns the enforced slide record for source and form.
func (g *ContentGenerator) Generate(ctx context.Context, source string, form Form) (Content, error) {
	form, err := form.Validate()
	if err != nil {
		return Content{}, err
	}
	req, _ := g.request(source, form)
	var content Content
	err = provider.CompleteJSON(ctx, g.provider, req, &content)
	if errors.Is(err, provider.ErrEmptyCompletion) {
		return Content{}, ErrEmptyContent
	}
	if err != nil {
		return Content{}, fmt.Errorf("create slide content: %w", err)
	}
	if content.IsEmpty() {
		return Content{}, ErrEmptyContent
	}
	return content.Enforce(form), nil
}

// request builds the completion call with the source capped at the token limit and
// reports the prompt size in tokens.
func (g *ContentGenerator) request(source string, form Form) (provider.CompletionRequest, int) {
	source, truncated := g.tokenizer.Truncate(source, g.tokenLimit)
	temp := g.temperature
	req := provider.CompletionRequest{
		System:      defaults.SlideContentPrompt,
		Messages:    []provider.Message{{Role: "user", Content: userPrompt(source, form)}},
		Temperature: &temp,
	}
	tokens := g.tokenizer.Count(req.System, req.Messages)

	ev := logging.Debug()
	if truncated {
		ev = logging.Warn().Int("limit", g.tokenLimit)
	}
	ev.Int("prompt_tokens", tokens).
		Str("encoding", g.tokenizer.EncodingName()).
		Bool("precise", g.tokenizer.IsPrecise()).
		Bool("truncated", truncated).
		Msg("slide content prompt")
	return req, tokens
}

func userPrompt(source string, form Form) string {
	var b strings.Builder
	b.WriteString("FORM\n")
	fmt.Fprintf(&b, "Featured service: %s\n", form.FeaturedService)
	if form.HasAnnouncement() {
		fmt.Fprintf(&b, "Announcement title: %s\n", form.AnnouncementTitle)
		fmt.Fprintf(&b, "Announcement content: %s\n", form.AnnouncementContent)
		fmt.Fprintf(&b, "Announcement closing: %s\n", form.AnnouncementClosing)
	} else {
		b.WriteString("Announcement title: (none)\n")
	}
	b.WriteString("\nSOURCE DOCUMENT\n")
	b.WriteString(source)
	return b.String()
}
