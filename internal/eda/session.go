package eda

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

// Step captures a single planning step submitted by the client.
type Step struct {
	Note           string
	StepNumber     int
	TotalSteps     int
	NextStepNeeded bool

	CompletedTool string
	IsRevision    bool
	RevisesStep   int
}

// RunRecord summarizes one completed report run attached to a session.
type RunRecord struct {
	RunID      string    `json:"run_id"`
	ReportPath string    `json:"report_path"`
	Figures    int       `json:"figures"`
	Duration   string    `json:"duration"`
	FinishedAt time.Time `json:"finished_at"`
}

// Session holds a short history of planning steps, the set of tools the
// client has already run, and completed report runs.
type Session struct {
	ID        string
	Steps     []Step
	Done      map[string]bool
	Runs      []RunRecord
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SessionStore is an in-memory store for planning sessions. It is not
// persisted and is intended for short-lived use. Safe for concurrent access.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	maxKeep  int // max steps to keep per session
}

func NewSessionStore(maxKeep int) *SessionStore {
	if maxKeep <= 0 {
		maxKeep = 20
	}
	return &SessionStore{
		sessions: make(map[string]*Session),
		maxKeep:  maxKeep,
	}
}

func (s *SessionStore) NewSession() *Session {
	id := randomID()
	sess := &Session{ID: id, Done: map[string]bool{}, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()
	return sess
}

func (s *SessionStore) Get(id string) (*Session, bool) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	return sess, ok
}

func (s *SessionStore) Reset(id string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := &Session{ID: id, Done: map[string]bool{}, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	s.sessions[id] = sess
	return sess
}

func (s *SessionStore) AppendStep(sess *Session, step Step) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess.UpdatedAt = time.Now()
	sess.Steps = append(sess.Steps, step)
	if len(sess.Steps) > s.maxKeep {
		// keep only the last maxKeep steps
		sess.Steps = sess.Steps[len(sess.Steps)-s.maxKeep:]
	}
	if step.CompletedTool != "" {
		sess.Done[step.CompletedTool] = true
	}
}

// RecordRun attaches a finished report run to the session.
func (s *SessionStore) RecordRun(sess *Session, run RunRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess.UpdatedAt = time.Now()
	sess.Runs = append(sess.Runs, run)
	sess.Done["render_report"] = true
}

func randomID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
