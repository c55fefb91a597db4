package chat

import (
	"strings"
	"testing"
	"time"
)

func TestTitleFrom(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Hello", "Hello"},
		{strings.Repeat("x", 25), strings.Repeat("x", 25)},
		{strings.Repeat("x", 26), strings.Repeat("x", 25) + "…"},
		{strings.Repeat("日", 30), strings.Repeat("日", 25) + "…"},
	}
	for _, c := range cases {
		if got := TitleFrom(c.in); got != c.want {
			t.Fatalf("TitleFrom(%q)=%q, want %q", c.in, got, c.want)
		}
	}
}

func TestLastActivity(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := Session{CreatedAt: created}
	if !s.LastActivity().Equal(created) {
		t.Fatalf("empty session LastActivity=%v, want %v", s.LastActivity(), created)
	}
	last := created.Add(time.Hour)
	s.Messages = []Message{{Timestamp: created.Add(time.Minute)}, {Timestamp: last}}
	if !s.LastActivity().Equal(last) {
		t.Fatalf("LastActivity=%v, want %v", s.LastActivity(), last)
	}
}

func TestSourceText(t *testing.T) {
	m := Message{Text: "<h1>R</h1>", RawData: "# R"}
	if got := m.SourceText(); got != "# R" {
		t.Fatalf("SourceText=%q, want raw payload", got)
	}
	m.RawData = ""
	if got := m.SourceText(); got != "<h1>R</h1>" {
		t.Fatalf("SourceText=%q, want body", got)
	}
}

func TestCloneIsDeep(t *testing.T) {
	s := Session{Messages: []Message{{Kind: KindDocument, Presentation: &Presentation{HTML: "a", Audio: []string{"x"}}}}}
	c := s.Clone()
	c.Messages[0].Presentation.Audio[0] = "y"
	c.Messages[0].Presentation.HTML = "b"
	if s.Messages[0].Presentation.Audio[0] != "x" || s.Messages[0].Presentation.HTML != "a" {
		t.Fatal("Clone shares presentation state with the original")
	}
}
