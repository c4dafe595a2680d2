package api

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/segmentio/ksuid"

	"github.com/ssargent/blmreader/pkg/blm"
)

// Session is one open file. blm.File is not safe for concurrent use, so every
// access holds mu.
type Session struct {
	id       string
	path     string
	preview  bool
	openedAt time.Time

	mu     sync.Mutex
	file   *blm.File
	parser *blm.Parser
}

func (s *Session) Summary() SessionSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	count, _ := s.file.RecordCount()
	return SessionSummary{
		ID:       s.id,
		Path:     s.path,
		Preview:  s.preview,
		Records:  count,
		Complete: s.file.Complete(),
		OpenedAt: s.openedAt,
	}
}

// SessionRegistry tracks the files opened through the API
type SessionRegistry struct {
	open     FileOpener
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionRegistry creates a registry that opens files with open
func NewSessionRegistry(open FileOpener) *SessionRegistry {
	return &SessionRegistry{
		open:     open,
		sessions: make(map[string]*Session),
	}
}

// Open opens path, builds its record index and registers it under a new id
func (r *SessionRegistry) Open(ctx context.Context, path string, preview bool) (*Session, error) {
	f, err := r.open(path, preview)
	if err != nil {
		return nil, err
	}
	if err := f.BuildIndex(ctx); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to index %s: %w", path, err)
	}

	s := &Session{
		id:       ksuid.New().String(),
		path:     path,
		preview:  preview,
		openedAt: time.Now().UTC(),
		file:     f,
		parser:   blm.NewParser(f),
	}

	r.mu.Lock()
	r.sessions[s.id] = s
	r.mu.Unlock()
	return s, nil
}

// Get returns the session with the given id
func (r *SessionRegistry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// List returns every session, oldest first. KSUIDs sort by creation time.
func (r *SessionRegistry) List() []*Session {
	r.mu.RLock()
	list := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		list = append(list, s)
	}
	r.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool { return list[i].id < list[j].id })
	return list
}

// Len returns the number of open sessions
func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Close closes and forgets the session with the given id
func (r *SessionRegistry) Close(id string) (bool, error) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return true, s.file.Close()
}

// CloseAll closes every session
func (r *SessionRegistry) CloseAll() error {
	var firstErr error
	for _, s := range r.List() {
		if _, err := r.Close(s.id); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
