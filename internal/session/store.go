// Package session owns the multi-session chat history: the id→session mapping, the
// active-session pointer, recency ordering and the integrity rule tying them together.
package session

import (
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"deckchat/internal/chat"
	"deckchat/internal/logging"
	"deckchat/internal/storage"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrMessageNotFound = errors.New("message not found")
	ErrNotDocument     = errors.New("message is not a document")
)

// Store holds every session in memory and writes the whole mapping through to the
// durable slot on each change. The active pointer goes to the volatile slot.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*chat.Session
	active   string

	durable  storage.Slot
	volatile storage.Slot

	now   func() time.Time
	newID func() string
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides session id allocation.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// Open loads the mapping from durable and the active pointer from volatile. An unreadable
// or corrupt mapping starts the store empty; Open only fails on programmer error.
func Open(durable, volatile storage.Slot, opts ...Option) (*Store, error) {
	if durable == nil || volatile == nil {
		return nil, errors.New("session: durable and volatile slots are required")
	}
	s := &Store{
		sessions: make(map[string]*chat.Session),
		durable:  durable,
		volatile: volatile,
		now:      time.Now,
		newID:    storage.NewSessionID,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.load()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureIntegrity()
	return s, nil
}

func (s *Store) load() {
	raw, ok, err := s.durable.Get(storage.HistoryKey)
	if err != nil {
		logging.Warn().Err(err).Msg("read chat history failed, starting empty")
		return
	}
	if ok && strings.TrimSpace(raw) != "" {
		decoded := map[string]*chat.Session{}
		if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
			logging.Warn().Err(err).Msg("chat history is corrupt, starting empty")
		} else {
			for id, sess := range decoded {
				if sess == nil || strings.TrimSpace(id) == "" {
					continue
				}
				sess.ID = id
				if sess.Title == "" {
					sess.Title = chat.DefaultTitle
				}
				s.sessions[id] = sess
			}
		}
	}

	if id, ok, err := s.volatile.Get(storage.ActiveSessionKey); err == nil && ok {
		if _, live := s.sessions[id]; live {
			s.active = id
		}
	}
}

// CreateSession makes a fresh session active and returns its id. When the most recent
// session is still an untouched "New Chat" it is reused instead, so repeated "new chat"
// requests never pile up empty sessions.
func (s *Store) CreateSession() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createLocked()
}

func (s *Store) createLocked() string {
	if ordered := s.sortedLocked(); len(ordered) > 0 && ordered[0].IsBlank() {
		s.setActiveLocked(ordered[0].ID)
		return ordered[0].ID
	}

	id := s.newID()
	s.sessions[id] = &chat.Session{
		ID:        id,
		Title:     chat.DefaultTitle,
		Messages:  []chat.Message{},
		CreatedAt: s.now(),
	}
	s.persistLocked()
	s.setActiveLocked(id)
	return id
}

// SelectSession points the active pointer at id. It reports false when id is unknown.
func (s *Store) SelectSession(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return false
	}
	s.setActiveLocked(id)
	return true
}

// DeleteSession removes a session and its messages. Deleting the active session moves
// the pointer to the most recent survivor; deleting the last one opens a new blank chat.
func (s *Store) DeleteSession(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	s.persistLocked()
	s.ensureIntegrity()
	return true
}

// AppendMessage appends msg to the session's transcript. The first message of a session,
// when it is user text, also titles the session. Unknown ids are a silent no-op (false).
func (s *Store) AppendMessage(sessionID string, msg chat.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		logging.Debug().Str("session", sessionID).Msg("append to missing session dropped")
		return false
	}
	if msg.ID == "" {
		msg.ID = storage.NewMessageID()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = s.now()
	}
	if msg.Kind == "" {
		msg.Kind = chat.KindText
	}
	sess.Messages = append(sess.Messages, msg)
	if len(sess.Messages) == 1 && msg.Sender == chat.SenderUser && msg.Kind == chat.KindText && msg.Text != "" {
		sess.Title = chat.TitleFrom(msg.Text)
	}
	s.persistLocked()
	s.ensureIntegrity()
	return true
}

// AttachPresentation replaces the presentation on a document message in place. The
// message keeps its id and position; any previous presentation is discarded.
func (s *Store) AttachPresentation(sessionID, messageID string, p chat.Presentation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	for i := range sess.Messages {
		m := &sess.Messages[i]
		if m.ID != messageID {
			continue
		}
		if !m.IsDocument() {
			return ErrNotDocument
		}
		fresh := chat.Presentation{HTML: p.HTML, Audio: append([]string(nil), p.Audio...)}
		m.Presentation = &fresh
		s.persistLocked()
		return nil
	}
	return ErrMessageNotFound
}

// Message returns a copy of one message.
func (s *Store) Message(sessionID, messageID string) (chat.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return chat.Message{}, ErrSessionNotFound
	}
	for _, m := range sess.Messages {
		if m.ID == messageID {
			return m.Clone(), nil
		}
	}
	return chat.Message{}, ErrMessageNotFound
}

// Session returns a copy of one session.
func (s *Store) Session(id string) (chat.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return chat.Session{}, false
	}
	return sess.Clone(), true
}

// Exists reports whether id names a live session.
func (s *Store) Exists(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[id]
	return ok
}

// ActiveID returns the active session id; empty only for a store with no sessions.
func (s *Store) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Active returns a copy of the active session.
func (s *Store) Active() (chat.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[s.active]
	if !ok {
		return chat.Session{}, false
	}
	return sess.Clone(), true
}

// EnsureActive returns the active session id, creating a session if none exists.
func (s *Store) EnsureActive() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[s.active]; ok {
		return s.active
	}
	s.ensureIntegrity()
	return s.active
}

// Len returns the number of sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// ListByRecency returns copies of all sessions, most recently active first.
func (s *Store) ListByRecency() []chat.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	ordered := s.sortedLocked()
	out := make([]chat.Session, len(ordered))
	for i, sess := range ordered {
		out[i] = sess.Clone()
	}
	return out
}

// sortedLocked orders by last activity descending. Ties fall back to creation time and
// then id so the order is stable across calls.
func (s *Store) sortedLocked() []*chat.Session {
	out := make([]*chat.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].LastActivity(), out[j].LastActivity()
		if !a.Equal(b) {
			return a.After(b)
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// ensureIntegrity re-establishes the active pointer invariant: with sessions present it
// names a live one (the most recent when its target vanished); with none, a new blank
// session is created.
func (s *Store) ensureIntegrity() {
	if len(s.sessions) == 0 {
		s.createLocked()
		return
	}
	if _, ok := s.sessions[s.active]; ok {
		return
	}
	s.setActiveLocked(s.sortedLocked()[0].ID)
}

func (s *Store) setActiveLocked(id string) {
	if s.active == id {
		return
	}
	s.active = id
	if err := s.volatile.Set(storage.ActiveSessionKey, id); err != nil {
		logging.Warn().Err(err).Msg("save active session failed")
	}
}

func (s *Store) persistLocked() {
	if len(s.sessions) == 0 {
		if err := s.durable.Delete(storage.HistoryKey); err != nil {
			logging.Warn().Err(err).Msg("clear chat history failed")
		}
		return
	}
	data, err := json.Marshal(s.sessions)
	if err != nil {
		logging.Error().Err(err).Msg("marshal chat history failed")
		return
	}
	if err := s.durable.Set(storage.HistoryKey, string(data)); err != nil {
		logging.Warn().Err(err).Msg("save chat history failed")
	}
}
