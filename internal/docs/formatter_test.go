package docs

import (
	"context"
	"errors"
	"strings"
	"testing"

	"deckchat/internal/config"
	"deckchat/internal/defaults"
	"deckchat/internal/provider/providertest"
)

func TestFormatReturnsTitleAndHTML(t *testing.T) {
	fake := &providertest.Fake{Replies: []string{`{"title":"Report","html":"<h1>Report</h1>"}`}}
	f := NewFormatter(fake, config.GenerationConfig{FormatTemperature: 0.2})

	doc, err := f.Format(context.Background(), "# Report")
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if doc != (Document{Title: "Report", HTML: "<h1>Report</h1>"}) {
		t.Fatalf("doc=%+v", doc)
	}

	calls := fake.CompleteCalls()
	if len(calls) != 1 {
		t.Fatalf("calls=%d, want 1", len(calls))
	}
	if !calls[0].JSON {
		t.Fatal("formatter should request JSON mode")
	}
	if calls[0].System != defaults.FormatDocumentPrompt {
		t.Fatalf("unexpected system prompt: %q", calls[0].System)
	}
	if calls[0].Temperature == nil || *calls[0].Temperature != 0.2 {
		t.Fatalf("temperature=%v, want 0.2", calls[0].Temperature)
	}
	if got := calls[0].Messages[0].Content; got != "# Report" {
		t.Fatalf("user content=%q", got)
	}
}

func TestFormatStripsStylingAndScripts(t *testing.T) {
	fake := &providertest.Fake{Replies: []string{"```json\n" +
		`{"title":" Q3 ","html":"<h2 class=\"big\" style=\"color:red\">Sales</h2><script>alert(1)</script><ul><li><strong>Up</strong></li></ul><a href=\"https://example.com\" onclick=\"x()\">link</a>"}` +
		"\n```"}}
	doc, err := NewFormatter(fake, config.GenerationConfig{}).Format(context.Background(), "raw")
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if doc.Title != "Q3" {
		t.Fatalf("title=%q, want Q3", doc.Title)
	}
	for _, want := range []string{"<h2>Sales</h2>", "<ul><li><strong>Up</strong></li></ul>", `href="https://example.com"`} {
		if !strings.Contains(doc.HTML, want) {
			t.Fatalf("html missing %q: %s", want, doc.HTML)
		}
	}
	for _, banned := range []string{"class=", "style=", "script", "onclick"} {
		if strings.Contains(doc.HTML, banned) {
			t.Fatalf("html kept %q: %s", banned, doc.HTML)
		}
	}
}

func TestFormatDefaultsBlankTitle(t *testing.T) {
	fake := &providertest.Fake{Replies: []string{`{"title":"","html":"<p>x</p>"}`}}
	doc, err := NewFormatter(fake, config.GenerationConfig{}).Format(context.Background(), "x")
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	if doc.Title != "Document" {
		t.Fatalf("title=%q, want Document", doc.Title)
	}
}

func TestFormatEmptyBodyIsError(t *testing.T) {
	fake := &providertest.Fake{Replies: []string{`{"title":"T","html":"<script>only()</script>"}`}}
	if _, err := NewFormatter(fake, config.GenerationConfig{}).Format(context.Background(), "x"); !errors.Is(err, ErrEmptyDocument) {
		t.Fatalf("err=%v, want ErrEmptyDocument", err)
	}
	if _, err := NewFormatter(fake, config.GenerationConfig{}).Format(context.Background(), "   "); !errors.Is(err, ErrEmptyDocument) {
		t.Fatalf("blank source err=%v, want ErrEmptyDocument", err)
	}
}

func TestFormatPropagatesProviderError(t *testing.T) {
	boom := errors.New("boom")
	fake := &providertest.Fake{CompleteErr: boom}
	if _, err := NewFormatter(fake, config.GenerationConfig{}).Format(context.Background(), "x"); !errors.Is(err, boom) {
		t.Fatalf("err=%v, want boom", err)
	}
}
