package slides

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// blockAtoms start a new line in the text projection.
var blockAtoms = map[atom.Atom]bool{
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.P: true, atom.Li: true, atom.Blockquote: true, atom.Br: true, atom.Div: true,
	atom.Section: true, atom.Ul: true, atom.Ol: true, atom.Tr: true,
}

// skipAtoms have content that is never shown.
var skipAtoms = map[atom.Atom]bool{atom.Script: true, atom.Style: true, atom.Template: true}

// Text projects slide markup to plain lines for the terminal and for narration. Block
// elements break lines, runs of whitespace collapse, and empty lines are dropped.
func Text(markup string) string {
	z := html.NewTokenizer(strings.NewReader(markup))
	var (
		lines []string
		cur   strings.Builder
		skip  int
	)
	breakLine := func() {
		line := strings.Join(strings.Fields(cur.String()), " ")
		if line != "" {
			lines = append(lines, line)
		}
		cur.Reset()
	}
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			breakLine()
			return strings.Join(lines, "\n")
		case html.TextToken:
			if skip == 0 {
				cur.Write(z.Text())
			}
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			if skipAtoms[a] {
				if tt == html.StartTagToken {
					skip++
				} else if tt == html.EndTagToken && skip > 0 {
					skip--
				}
				continue
			}
			if blockAtoms[a] {
				breakLine()
			}
		}
	}
}
