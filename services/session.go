package services

import (
	"log/slog"
	"sync"
	"time"
)

const maxHistoryMessages = 50

// HistoryMessage is one turn of the rolling conversation history.
type HistoryMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// SessionMemory holds everything the orchestrator remembers about one
// conversation between turns. turnMu serializes whole turns for the
// session; mu guards the history and flags for the accessor methods, so
// they stay safe for callers that are not inside a turn.
type SessionMemory struct {
	turnMu sync.Mutex
	mu     sync.Mutex

	SessionID string
	History   []HistoryMessage

	// SQL path state
	LastResults []map[string]interface{}
	LastSQL     string
	LastEval    map[string]interface{}
	LastUnitID  string

	// RAG path state
	LastRAGResults string
	LastRAGEval    map[string]interface{}

	// Language state
	DetectedLanguage   string
	LanguageConfidence float64

	// Per-turn flags, reset at the start of each turn
	NewResultsFetched bool
	AlternativeSearch bool
	PaymentPlanUsed   bool
	SQLAgentUsed      bool
	RAGAgentUsed      bool
	ChatAgentUsed     bool
	FuzzyField        string
	OriginalValue     string

	CreatedAt    time.Time
	LastActivity time.Time
}

// SessionStore is an in-memory session registry keyed by session id.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*SessionMemory
}

var sessionStore = &SessionStore{
	sessions: make(map[string]*SessionMemory),
}

// GetSessionStore returns the global session store
func GetSessionStore() *SessionStore {
	return sessionStore
}

// Get returns the session for id, creating it when missing.
func (s *SessionStore) Get(id string) *SessionMemory {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[id]; ok {
		sess.LastActivity = time.Now()
		return sess
	}

	sess := &SessionMemory{
		SessionID:        id,
		DetectedLanguage: "en",
		CreatedAt:        time.Now(),
		LastActivity:     time.Now(),
	}
	s.sessions[id] = sess
	slog.Debug("Created new session", "sessionID", id)
	return sess
}

// Clear removes a session entirely.
func (s *SessionStore) Clear(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	slog.Info("Cleared session", "sessionID", id)
	return true
}

// Count returns the number of live sessions.
func (s *SessionStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// CleanupStale drops sessions idle longer than maxAge and returns how many
// were removed.
func (s *SessionStore) CleanupStale(maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for id, sess := range s.sessions {
		if sess.LastActivity.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		slog.Info("Cleaned up stale sessions", "removed", removed, "remaining", len(s.sessions))
	}
	return removed
}

// BeginTurn blocks until the session is free, so concurrent requests for
// the same session id run one turn at a time. EndTurn releases it.
func (m *SessionMemory) BeginTurn() {
	m.turnMu.Lock()
}

// EndTurn releases the session after a turn.
func (m *SessionMemory) EndTurn() {
	m.turnMu.Unlock()
}

// ResetTurnFlags clears the per-turn flags before routing a new message.
func (m *SessionMemory) ResetTurnFlags() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.NewResultsFetched = false
	m.AlternativeSearch = false
	m.PaymentPlanUsed = false
	m.SQLAgentUsed = false
	m.RAGAgentUsed = false
	m.ChatAgentUsed = false
	m.FuzzyField = ""
	m.OriginalValue = ""
}

// AppendHistory records a turn and trims the history window.
func (m *SessionMemory) AppendHistory(role, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.History = append(m.History, HistoryMessage{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})
	if len(m.History) > maxHistoryMessages {
		m.History = m.History[len(m.History)-maxHistoryMessages:]
	}
}

// RecentHistory returns a copy of up to n of the latest messages, oldest
// first.
func (m *SessionMemory) RecentHistory(n int) []HistoryMessage {
	m.mu.Lock()
	defer m.mu.Unlock()

	start := 0
	if len(m.History) > n {
		start = len(m.History) - n
	}
	out := make([]HistoryMessage, len(m.History)-start)
	copy(out, m.History[start:])
	return out
}
