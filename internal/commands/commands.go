// Package commands parses the slash commands shared by the TUI and the REPL.
package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"deckchat/internal/chat"
)

// Command names.
const (
	Help    = "help"
	New     = "new"
	Delete  = "delete"
	Switch  = "switch"
	List    = "sessions"
	Attach  = "attach"
	Detach  = "detach"
	Present = "present"
	View    = "view"
	Regen   = "regen"
	Quit    = "quit"
)

var aliases = map[string]string{
	"exit":       Quit,
	"q":          Quit,
	"ls":         List,
	"use":        Switch,
	"rm":         Delete,
	"regenerate": Regen,
	"slides":     View,
}

var (
	// ErrNoDocument means the session has no document message to work with.
	ErrNoDocument = errors.New("no document message in this chat")
	// ErrOutOfRange is an index argument past the end of the list.
	ErrOutOfRange = errors.New("index out of range")
)

// Parse splits "/name rest" into a lower-case command name and its argument text. ok is
// false when input is not a slash command.
func Parse(input string) (name, args string, ok bool) {
	trimmed := strings.TrimSpace(input)
	if !strings.HasPrefix(trimmed, "/") {
		return "", "", false
	}
	rest := strings.TrimSpace(strings.TrimPrefix(trimmed, "/"))
	if rest == "" {
		return "", "", true
	}
	parts := strings.SplitN(rest, " ", 2)
	name = strings.ToLower(strings.TrimSpace(parts[0]))
	if canonical, found := aliases[name]; found {
		name = canonical
	}
	if len(parts) > 1 {
		args = strings.TrimSpace(parts[1])
	}
	return name, args, true
}

// ResolveSession picks a session from a recency-ordered list by 1-based index, full id,
// or unique id prefix.
func ResolveSession(sessions []chat.Session, arg string) (chat.Session, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return chat.Session{}, errors.New("missing session")
	}
	if n, err := strconv.Atoi(arg); err == nil {
		if n < 1 || n > len(sessions) {
			return chat.Session{}, ErrOutOfRange
		}
		return sessions[n-1], nil
	}
	var match *chat.Session
	for i := range sessions {
		if sessions[i].ID == arg {
			return sessions[i], nil
		}
		if strings.HasPrefix(sessions[i].ID, arg) {
			if match != nil {
				return chat.Session{}, fmt.Errorf("ambiguous session prefix %q", arg)
			}
			match = &sessions[i]
		}
	}
	if match == nil {
		return chat.Session{}, fmt.Errorf("unknown session %q", arg)
	}
	return *match, nil
}

// Documents returns the document messages of a session, oldest first.
func Documents(s chat.Session) []chat.Message {
	var out []chat.Message
	for _, m := range s.Messages {
		if m.IsDocument() {
			out = append(out, m)
		}
	}
	return out
}

// ResolveDocument picks a document message by 1-based index among the session's documents;
// an empty argument selects the most recent one.
func ResolveDocument(s chat.Session, arg string) (chat.Message, error) {
	docs := Documents(s)
	if len(docs) == 0 {
		return chat.Message{}, ErrNoDocument
	}
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return docs[len(docs)-1], nil
	}
	n, err := strconv.Atoi(arg)
	if err != nil {
		return chat.Message{}, fmt.Errorf("invalid document index %q", arg)
	}
	if n < 1 || n > len(docs) {
		return chat.Message{}, ErrOutOfRange
	}
	return docs[n-1], nil
}
