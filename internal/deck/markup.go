package deck

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

// Slide kinds in deck order. The announcement slide is only present when requested.
const (
	SlideTitle           = "title"
	SlideOverview        = "overview"
	SlideTip             = "tip"
	SlideTipContinuation = "tip-continuation"
	SlideSelling         = "selling-tip"
	SlideFeatured        = "featured-service"
	SlideFAQ             = "faq"
	SlideAnnouncement    = "announcement"
	SlideQuote           = "quote"
	SlideThanks          = "thank-you"
)

// overviewItem is one line of the static session overview.
type overviewItem struct {
	Number  string
	Heading string
	Blurb   string
}

var baseOverview = []overviewItem{
	{Heading: "Work-Related Tip", Blurb: "Professional workplace strategies"},
	{Heading: "General Selling Tip", Blurb: "Proven rebuttals & sales techniques"},
	{Heading: "Featured Service of the Night", Blurb: "Tonight's special offering"},
	{Heading: "Service FAQ", Blurb: "Common questions & expert answers"},
}

var (
	announcementOverview = overviewItem{Heading: "Announcement", Blurb: "Important updates & reminders"}
	quoteOverview        = overviewItem{Heading: "Motivational Quote", Blurb: "Inspiration for success mindset"}
)

const deckTemplate = `{{define "deck" -}}
<section data-slide="title"{{with .Visuals}} data-visuals="{{.}}"{{end}}>
  <h1>{{.C.Title}}</h1>
  <p>{{.C.Subtitle}}</p>
  <p>{{.C.Presenter}}</p>
</section>
<section data-slide="overview"{{with .Visuals}} data-visuals="{{.}}"{{end}}>
  <h2>SESSION OVERVIEW</h2>
  <p>What we'll cover in today's sales mastery workshop</p>
  <ol>
{{- range .Overview}}
    <li><strong>{{.Number}}</strong> <h3>{{.Heading}}</h3><p>{{.Blurb}}</p></li>
{{- end}}
  </ol>
</section>
<section data-slide="tip"{{with .Visuals}} data-visuals="{{.}}"{{end}}>
  <h2>{{.C.TipTitle}}</h2>
  <h3>{{.C.TipIntro}}</h3>
  <p>{{.C.TipPara1}}</p>
  <p>{{.C.TipPara2}}</p>
  <ul>
{{- range .C.TipActionItems}}
    <li>{{.}}</li>
{{- end}}
  </ul>
  <p><strong>Key takeaway:</strong> {{.C.TipTakeaway}}</p>
</section>
<section data-slide="tip-continuation"{{with .Visuals}} data-visuals="{{.}}"{{end}}>
  <h3>{{.C.TipContinuationTitle}}</h3>
  <p>{{.C.TipContinuationPara1}}</p>
  <p>{{.C.TipContinuationPara2}}</p>
  <p>{{.C.TipContinuationPara3}}</p>
  <ol>
{{- range .C.TipImplementationSteps}}
    <li>{{.}}</li>
{{- end}}
  </ol>
  <p><strong>Next action:</strong> {{.C.TipNextAction}}</p>
</section>
<section data-slide="selling-tip"{{with .Visuals}} data-visuals="{{.}}"{{end}}>
  <h1>"{{.C.Objection}}"</h1>
  <h2>Agent's Rebuttal:</h2>
  <blockquote>"{{.C.Rebuttal}}"</blockquote>
  <h2>Why This Works:</h2>
  <ul>
    <li>{{.C.RebuttalWhy1}}</li>
    <li>{{.C.RebuttalWhy2}}</li>
    <li>{{.C.RebuttalWhy3}}</li>
    <li>{{.C.RebuttalWhy4}}</li>
  </ul>
</section>
<section data-slide="featured-service"{{with .Visuals}} data-visuals="{{.}}"{{end}}>
  <h2>{{.C.FeaturedServiceTitle}}</h2>
  <h1>{{.C.FeaturedServiceName}}</h1>
</section>
<section data-slide="faq"{{with .Visuals}} data-visuals="{{.}}"{{end}}>
  <h1>"{{.C.FAQQuestion}}"</h1>
  <h2>Agent's Answer:</h2>
  <blockquote>"{{.C.FAQAnswer}}"</blockquote>
</section>
{{- if .C.HasAnnouncement}}
<section data-slide="announcement"{{with .Visuals}} data-visuals="{{.}}"{{end}}>
  <p>{{.C.AnnouncementHeader}}</p>
  <h1>{{.C.AnnouncementTitle}}</h1>
  <p>{{.C.AnnouncementContent}}</p>
  <p>{{.C.AnnouncementClosing}}</p>
</section>
{{- end}}
<section data-slide="quote"{{with .Visuals}} data-visuals="{{.}}"{{end}}>
  <blockquote>{{.C.Quote}}</blockquote>
  <p>— {{.C.Author}}</p>
</section>
<section data-slide="thank-you"{{with .Visuals}} data-visuals="{{.}}"{{end}}>
  <h2>THANK YOU</h2>
  <p>Your journey to sales excellence starts today</p>
  <p>Ready to get started? Let's connect!</p>
</section>
{{end}}`

var deckTmpl = template.Must(template.New("slides").Parse(deckTemplate))

type deckData struct {
	C        Content
	Overview []overviewItem
	Visuals  string
}

// Render lays content out as the fixed sequence of <section> blocks. The announcement block
// and its overview line appear only when the content carries an announcement title.
func Render(content Content, visuals string) (string, error) {
	var buf bytes.Buffer
	data := deckData{C: content, Overview: overview(content.HasAnnouncement()), Visuals: strings.TrimSpace(visuals)}
	if err := deckTmpl.ExecuteTemplate(&buf, "deck", data); err != nil {
		return "", fmt.Errorf("render deck: %w", err)
	}
	return buf.String(), nil
}

// SlideCount is the number of blocks Render produces.
func SlideCount(withAnnouncement bool) int {
	if withAnnouncement {
		return 10
	}
	return 9
}

func overview(withAnnouncement bool) []overviewItem {
	items := append([]overviewItem(nil), baseOverview...)
	if withAnnouncement {
		items = append(items, announcementOverview)
	}
	items = append(items, quoteOverview)
	for i := range items {
		items[i].Number = fmt.Sprintf("%02d", i+1)
	}
	return items
}
