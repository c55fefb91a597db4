package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"deckchat/internal/chat"
	"deckchat/internal/deck"
	"deckchat/internal/provider"
	"deckchat/internal/session"
	"deckchat/internal/slides"
)

func slideContentJSON(t *testing.T, title string) string {
	t.Helper()
	b, err := json.Marshal(deck.Content{
		Title:                  title,
		Subtitle:               "sub",
		TipTitle:               "tip",
		TipActionItems:         []string{"a", "b", "c", "d"},
		TipImplementationSteps: []string{"1", "2", "3", "4", "5"},
		Objection:              "too pricey",
		Rebuttal:               "worth it",
		Quote:                  "q",
		Author:                 "a",
		AnnouncementTitle:      "made up",
	})
	if err != nil {
		t.Fatalf("marshal content: %v", err)
	}
	return string(b)
}

// documentFixture sends one turn that comes back as a document and returns its ids.
func documentFixture(t *testing.T) (*fixture, string, string) {
	t.Helper()
	f := newFixture(t, jsonReply(200, `{"data_result":"# Quarterly numbers"}`))
	f.model.Replies = []string{`{"title":"Quarterly","html":"<h2>Quarterly</h2>"}`}
	p, reply, err := f.ctl.SendMessage(context.Background(), "numbers please", nil)
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if reply.Kind != chat.KindDocument {
		t.Fatalf("reply kind=%q, want %q", reply.Kind, chat.KindDocument)
	}
	return f, p.SessionID, reply.ID
}

func announcementSlide(markup string) (string, bool) {
	for _, s := range slides.Parse(markup, nil) {
		if strings.Contains(s.HTML, `data-slide="announcement"`) {
			return slides.Text(s.HTML), true
		}
	}
	return "", false
}

func TestGeneratePresentationWithoutAnnouncement(t *testing.T) {
	f, sessionID, docID := documentFixture(t)
	f.model.Replies = []string{slideContentJSON(t, "Deck One")}

	p, err := f.ctl.GeneratePresentation(context.Background(), sessionID, docID, deck.Form{FeaturedService: "Premium Wash"})
	if err != nil {
		t.Fatalf("GeneratePresentation: %v", err)
	}

	if _, found := announcementSlide(p.HTML); found {
		t.Fatal("announcement slide rendered without announcement fields")
	}
	if strings.Contains(p.HTML, "Announcement") {
		t.Fatal("agenda mentions Announcement")
	}
	if got, want := len(slides.Parse(p.HTML, p.Audio)), deck.SlideCount(false); got != want {
		t.Fatalf("slides=%d, want %d", got, want)
	}

	calls := f.model.CompleteCalls()
	if !strings.Contains(calls[len(calls)-1].Messages[0].Content, "# Quarterly numbers") {
		t.Fatalf("prompt lacks document source: %q", calls[len(calls)-1].Messages[0].Content)
	}

	msg, err := f.store.Message(sessionID, docID)
	if err != nil {
		t.Fatalf("Message: %v", err)
	}
	if msg.Presentation == nil || msg.Presentation.HTML != p.HTML {
		t.Fatal("presentation not attached to the document")
	}
}

func TestGeneratePresentationWithAnnouncement(t *testing.T) {
	f, sessionID, docID := documentFixture(t)
	f.model.Replies = []string{slideContentJSON(t, "Deck One")}

	p, err := f.ctl.GeneratePresentation(context.Background(), sessionID, docID, deck.Form{
		FeaturedService:     "Premium Wash",
		AnnouncementTitle:   "Holiday Hours",
		AnnouncementContent: "We close at 3pm on Friday.",
		AnnouncementClosing: "Thanks, team",
	})
	if err != nil {
		t.Fatalf("GeneratePresentation: %v", err)
	}

	text, found := announcementSlide(p.HTML)
	if !found {
		t.Fatal("announcement slide missing")
	}
	if want := "Holiday Hours\nWe close at 3pm on Friday.\nThanks, team"; !strings.Contains(text, want) {
		t.Fatalf("announcement text=%q, want it to contain %q", text, want)
	}
	if agenda := slides.Text(slides.Parse(p.HTML, nil)[1].HTML); !strings.Contains(agenda, "Announcement") {
		t.Fatalf("agenda=%q, want an Announcement entry", agenda)
	}
	if got, want := len(slides.Parse(p.HTML, p.Audio)), deck.SlideCount(true); got != want {
		t.Fatalf("slides=%d, want %d", got, want)
	}
}

func TestRegenerationReplacesWholesale(t *testing.T) {
	f, sessionID, docID := documentFixture(t)
	f.model.Replies = []string{slideContentJSON(t, "First Deck")}
	if _, err := f.ctl.GeneratePresentation(context.Background(), sessionID, docID, deck.Form{FeaturedService: "x", AnnouncementTitle: "A"}); err != nil {
		t.Fatalf("first generation: %v", err)
	}

	f.model.Replies = []string{slideContentJSON(t, "Second Deck")}
	if _, err := f.ctl.GeneratePresentation(context.Background(), sessionID, docID, deck.Form{FeaturedService: "x"}); err != nil {
		t.Fatalf("second generation: %v", err)
	}

	msgs := f.messages(t, sessionID)
	if len(msgs) != 2 || msgs[1].ID != docID {
		t.Fatalf("messages=%+v, want the document unmoved at index 1", msgs)
	}
	pres := msgs[1].Presentation
	if pres == nil {
		t.Fatal("presentation missing")
	}
	if !strings.Contains(pres.HTML, "Second Deck") || strings.Contains(pres.HTML, "First Deck") {
		t.Fatal("presentation was not replaced")
	}
	if _, found := announcementSlide(pres.HTML); found {
		t.Fatal("stale announcement slide survived regeneration")
	}
}

func TestGenerationValidation(t *testing.T) {
	f, sessionID, docID := documentFixture(t)
	before := len(f.model.CompleteCalls())

	_, err := f.ctl.GeneratePresentation(context.Background(), sessionID, docID, deck.Form{FeaturedService: "  "})
	if !errors.Is(err, deck.ErrFeaturedServiceRequired) {
		t.Fatalf("err=%v, want %v", err, deck.ErrFeaturedServiceRequired)
	}
	if got := len(f.model.CompleteCalls()); got != before {
		t.Fatalf("model calls=%d, want %d", got, before)
	}
	if n := len(f.messages(t, sessionID)); n != 2 {
		t.Fatalf("messages=%d, want 2", n)
	}

	userMsg := f.messages(t, sessionID)[0]
	cases := []struct {
		messageID string
		want      error
	}{
		{userMsg.ID, session.ErrNotDocument},
		{"nope", session.ErrMessageNotFound},
	}
	for _, tc := range cases {
		_, err := f.ctl.GeneratePresentation(context.Background(), sessionID, tc.messageID, deck.Form{FeaturedService: "x"})
		if !errors.Is(err, tc.want) {
			t.Fatalf("GeneratePresentation(%q) err=%v, want %v", tc.messageID, err, tc.want)
		}
	}
}

func TestGenerationFailureAppendsBotMessage(t *testing.T) {
	f, sessionID, docID := documentFixture(t)
	f.model.CompleteErr = errors.New("quota exceeded")

	if _, err := f.ctl.GeneratePresentation(context.Background(), sessionID, docID, deck.Form{FeaturedService: "x"}); err == nil {
		t.Fatal("expected an error")
	}

	msgs := f.messages(t, sessionID)
	if len(msgs) != 3 {
		t.Fatalf("messages=%d, want 3", len(msgs))
	}
	last := msgs[2]
	if last.Sender != chat.SenderBot {
		t.Fatalf("sender=%q, want bot", last.Sender)
	}
	if !strings.HasPrefix(last.Text, "An error occurred while generating the PowerPoint: ") || !strings.Contains(last.Text, "quota exceeded") {
		t.Fatalf("text=%q", last.Text)
	}
	if msgs[1].Presentation != nil {
		t.Fatal("failed generation attached a presentation")
	}
}

func TestGenerationEmptyOutput(t *testing.T) {
	f, sessionID, docID := documentFixture(t)
	f.model.CompleteFunc = func(provider.CompletionRequest) (string, error) { return "{}", nil }

	_, err := f.ctl.GeneratePresentation(context.Background(), sessionID, docID, deck.Form{FeaturedService: "x"})
	if !errors.Is(err, deck.ErrEmptyContent) {
		t.Fatalf("err=%v, want %v", err, deck.ErrEmptyContent)
	}
	msgs := f.messages(t, sessionID)
	if got, want := msgs[len(msgs)-1].Text, en.T("deck.error_empty"); got != want {
		t.Fatalf("text=%q, want %q", got, want)
	}
}

func TestGenerationTargetDeletedMidFlight(t *testing.T) {
	f, sessionID, docID := documentFixture(t)
	f.model.Replies = []string{slideContentJSON(t, "Deck")}

	g, err := f.ctl.BeginGeneration(sessionID, docID, deck.Form{FeaturedService: "x"})
	if err != nil {
		t.Fatalf("BeginGeneration: %v", err)
	}
	p, err := f.ctl.RunGeneration(context.Background(), g)
	if err != nil {
		t.Fatalf("RunGeneration: %v", err)
	}
	f.store.DeleteSession(sessionID)

	if err := f.ctl.FinishGeneration(g, p, nil); !errors.Is(err, session.ErrSessionNotFound) {
		t.Fatalf("err=%v, want %v", err, session.ErrSessionNotFound)
	}
}
