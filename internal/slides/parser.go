// Package slides splits presentation markup into ordered slide records.
package slides

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Slide is one top-level <section> block, kept byte for byte, with its narration reference.
type Slide struct {
	Index int
	HTML  string
	// Audio is empty when the slide has no narration.
	Audio string
}

// HasAudio reports whether the slide carries a narration reference.
func (s Slide) HasAudio() bool {
	return strings.TrimSpace(s.Audio) != ""
}

// Parse extracts the top-level <section> blocks of markup in document order. Block i is
// paired with audio[i] when present. Nested sections stay inside their parent block. A block
// left open at the end of input is kept as far as it goes. Unusable input yields no slides.
func Parse(markup string, audio []string) []Slide {
	if strings.TrimSpace(markup) == "" {
		return nil
	}
	z := html.NewTokenizer(strings.NewReader(markup))
	var (
		out   []Slide
		buf   strings.Builder
		depth int
	)
	flush := func() {
		i := len(out)
		s := Slide{Index: i, HTML: buf.String()}
		if i < len(audio) {
			s.Audio = strings.TrimSpace(audio[i])
		}
		out = append(out, s)
		buf.Reset()
	}
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if z.Err() != io.EOF {
				return nil
			}
			break
		}
		// TagName lowercases the token buffer in place, so copy the raw bytes first.
		raw := append([]byte(nil), z.Raw()...)
		isSection := false
		if tt == html.StartTagToken || tt == html.EndTagToken {
			name, _ := z.TagName()
			isSection = atom.Lookup(name) == atom.Section
		}
		switch {
		case tt == html.StartTagToken && isSection:
			depth++
			buf.Write(raw)
		case tt == html.EndTagToken && isSection && depth > 0:
			buf.Write(raw)
			depth--
			if depth == 0 {
				flush()
			}
		case depth > 0:
			buf.Write(raw)
		}
	}
	if depth > 0 {
		flush()
	}
	return out
}
