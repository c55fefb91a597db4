package chat

import "time"

// DefaultTitle is the title every session starts with until its first user message arrives.
const DefaultTitle = "New Chat"

// titleLimit is the rune count kept when deriving a title from the first user message.
const titleLimit = 25

// Sender identifies who authored a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// Kind distinguishes plain text turns from formatted documents.
type Kind string

const (
	KindText     Kind = "text"
	KindDocument Kind = "document"
)

// Presentation is generated slide markup plus narration references that share the
// ordinal indexing of the slide blocks. An empty reference means no narration.
type Presentation struct {
	HTML  string   `json:"html"`
	Audio []string `json:"audio"`
}

// Message is one turn in a session. Field names follow the browser history export so
// stored histories can be imported unchanged.
type Message struct {
	ID           string        `json:"id"`
	Sender       Sender        `json:"sender"`
	Timestamp    time.Time     `json:"timestamp"`
	Kind         Kind          `json:"type"`
	Text         string        `json:"text"`
	Attachment   string        `json:"attachment,omitempty"`
	Title        string        `json:"title,omitempty"`
	RawData      string        `json:"rawData,omitempty"`
	Presentation *Presentation `json:"presentation,omitempty"`
}

// IsDocument reports whether the message may carry a presentation.
func (m Message) IsDocument() bool {
	return m.Kind == KindDocument
}

// SourceText is the content presentation generation works from: the raw payload when
// it was retained, otherwise the formatted body.
func (m Message) SourceText() string {
	if m.RawData != "" {
		return m.RawData
	}
	return m.Text
}

// Clone copies the message including its presentation.
func (m Message) Clone() Message {
	if m.Presentation != nil {
		p := *m.Presentation
		p.Audio = append([]string(nil), m.Presentation.Audio...)
		m.Presentation = &p
	}
	return m
}

// Session is one persisted conversation thread.
type Session struct {
	ID        string    `json:"-"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
}

// LastActivity is the recency key: the last message timestamp, or the creation time
// for sessions without messages.
func (s Session) LastActivity() time.Time {
	if n := len(s.Messages); n > 0 {
		return s.Messages[n-1].Timestamp
	}
	return s.CreatedAt
}

// IsBlank reports whether the session is an untouched "New Chat".
func (s Session) IsBlank() bool {
	return len(s.Messages) == 0 && s.Title == DefaultTitle
}

// Clone returns a deep copy safe to hand outside the store.
func (s Session) Clone() Session {
	out := s
	out.Messages = make([]Message, len(s.Messages))
	for i, m := range s.Messages {
		out.Messages[i] = m.Clone()
	}
	return out
}

// TitleFrom derives a session title from user text: up to 25 runes as-is, longer text is
// cut to 25 runes followed by an ellipsis.
func TitleFrom(text string) string {
	runes := []rune(text)
	if len(runes) <= titleLimit {
		return text
	}
	return string(runes[:titleLimit]) + "…"
}
