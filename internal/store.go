package internal

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

// DefaultThreadTitle names a thread until its first user message arrives
const DefaultThreadTitle = "New Chat"

// Store owns the ordered collection of chat threads and the current-thread
// pointer. It is the single mutable piece of shared state; all reads hand
// out copies so a render triggered mid-animation always observes a
// consistent snapshot. One default thread is always seeded so the current
// pointer can never dangle.
type Store struct {
	mu        sync.Mutex
	threads   []*ChatThread
	currentID string
}

// NewStore creates a store seeded with one empty default thread
func NewStore() *Store {
	s := &Store{}
	s.CreateThread()
	return s
}

// CreateThread inserts a new empty thread at the front of the list
// (newest-first), makes it current and returns its id.
func (s *Store) CreateThread() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := &ChatThread{
		ID:        newThreadID(),
		Title:     DefaultThreadTitle,
		CreatedAt: time.Now(),
	}
	s.threads = append([]*ChatThread{t}, s.threads...)
	s.currentID = t.ID
	return t.ID
}

// AppendMessage appends to the named thread. Responses are routed by their
// originating thread id, so this must work for non-current threads too.
// Unknown ids are a silent no-op.
func (s *Store) AppendMessage(threadID string, msg Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.find(threadID)
	if t == nil {
		LogWarn("append to unknown thread %s dropped", threadID)
		return
	}
	t.Messages = append(t.Messages, msg)
}

// RenameOnFirstMessage sets the thread title from its first user message.
// Call it before appending that message; it fires only while the thread is
// still empty.
func (s *Store) RenameOnFirstMessage(threadID, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.find(threadID)
	if t == nil || len(t.Messages) > 0 {
		return
	}
	t.Title = TitleFromContent(content)
}

// SetCurrent switches the current-thread pointer. Returns false and leaves
// the pointer untouched when the id is unknown.
func (s *Store) SetCurrent(threadID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.find(threadID) == nil {
		return false
	}
	s.currentID = threadID
	return true
}

// CurrentID returns the id of the current thread
func (s *Store) CurrentID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentID
}

// Current returns a snapshot of the current thread
func (s *Store) Current() *ChatThread {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.find(s.currentID).Clone()
}

// Thread returns a snapshot of the named thread, or nil
func (s *Store) Thread(threadID string) *ChatThread {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.find(threadID).Clone()
}

// Threads returns snapshots of all threads, newest-first
func (s *Store) Threads() []*ChatThread {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*ChatThread, len(s.threads))
	for i, t := range s.threads {
		out[i] = t.Clone()
	}
	return out
}

// CycleCurrent moves the current pointer to the next thread in list order,
// wrapping around. Returns the new current id.
func (s *Store) CycleCurrent() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, t := range s.threads {
		if t.ID == s.currentID {
			s.currentID = s.threads[(i+1)%len(s.threads)].ID
			break
		}
	}
	return s.currentID
}

func (s *Store) find(threadID string) *ChatThread {
	for _, t := range s.threads {
		if t.ID == threadID {
			return t
		}
	}
	return nil
}

func newThreadID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		// time-based fallback keeps ids unique enough within a session
		return hex.EncodeToString([]byte(time.Now().Format("150405.000000")))
	}
	return hex.EncodeToString(buf)
}
