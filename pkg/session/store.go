// Package session keeps per-conversation dialogue history in memory. Every
// turn records its input, extracted keywords and detected stage so later
// turns can reason over recent context.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cineforge/muse/pkg/creative"
	"github.com/cineforge/muse/pkg/utils"
)

// contextWindow is how many trailing turns contribute context keywords.
const contextWindow = 3

// Turn is one completed exchange inside a session.
type Turn struct {
	Index            int            `json:"index"`
	Input            string         `json:"input"`
	Keywords         []string       `json:"keywords"`
	Stage            creative.Stage `json:"stage"`
	InspirationCount int            `json:"inspiration_count"`
	Timestamp        time.Time      `json:"timestamp"`
}

type session struct {
	id        string
	turns     []Turn
	keywords  []string // accumulated union, first-seen order
	createdAt time.Time
	updatedAt time.Time
}

// Store is an in-memory session registry, safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*session
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]*session)}
}

// Create registers a fresh session and returns its id.
func (s *Store) Create() string {
	id := uuid.NewString()
	now := time.Now().UTC()

	s.mu.Lock()
	s.sessions[id] = &session{id: id, createdAt: now, updatedAt: now}
	s.mu.Unlock()
	return id
}

// Exists reports whether id names a live session.
func (s *Store) Exists(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sessions[id]
	return ok
}

// AddTurn appends a completed turn. The turn index is assigned here and is
// always gapless. Unknown session ids are ignored.
func (s *Store) AddTurn(id, input string, keywords []string, stage creative.Stage, inspirationCount int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return
	}
	sess.turns = append(sess.turns, Turn{
		Index:            len(sess.turns) + 1,
		Input:            input,
		Keywords:         append([]string(nil), keywords...),
		Stage:            stage,
		InspirationCount: inspirationCount,
		Timestamp:        time.Now().UTC(),
	})
	sess.keywords = utils.Dedupe(append(sess.keywords, keywords...))
	sess.updatedAt = time.Now().UTC()
}

// ContextKeywords returns the deduplicated keywords of the last few turns,
// in first-seen order. Absent or empty sessions yield an empty slice.
func (s *Store) ContextKeywords(id string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok || len(sess.turns) == 0 {
		return []string{}
	}

	start := len(sess.turns) - contextWindow
	if start < 0 {
		start = 0
	}
	var merged []string
	for _, t := range sess.turns[start:] {
		merged = append(merged, t.Keywords...)
	}
	return utils.Dedupe(merged)
}

// AccumulatedKeywords returns every keyword the session has produced, in
// first-seen order.
func (s *Store) AccumulatedKeywords(id string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return []string{}
	}
	return append([]string{}, sess.keywords...)
}

// TurnCount returns how many turns the session has completed, 0 for
// unknown ids.
// IsFirstTurn reports whether the session has recorded no turns yet.
// Unknown ids count as first turns, matching how they start fresh sessions.
func (s *Store) IsFirstTurn(id string) bool {
	return s.TurnCount(id) == 0
}

func (s *Store) TurnCount(id string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return 0
	}
	return len(sess.turns)
}

// Turns returns a copy of the session's turn history.
func (s *Store) Turns(id string) []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil
	}
	return append([]Turn(nil), sess.turns...)
}

// Expire drops sessions idle for longer than maxAge and returns their ids.
func (s *Store) Expire(maxAge time.Duration) []string {
	cutoff := time.Now().UTC().Add(-maxAge)

	s.mu.Lock()
	defer s.mu.Unlock()

	var expired []string
	for id, sess := range s.sessions {
		if sess.updatedAt.Before(cutoff) {
			expired = append(expired, id)
			delete(s.sessions, id)
		}
	}
	return expired
}

// Stats summarizes the store for health reporting.
type Stats struct {
	ActiveSessions int `json:"active_sessions"`
	TotalTurns     int `json:"total_turns"`
}

func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{ActiveSessions: len(s.sessions)}
	for _, sess := range s.sessions {
		st.TotalTurns += len(sess.turns)
	}
	return st
}
