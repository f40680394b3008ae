// Package session owns the in-memory editor sessions: one ingested render
// document plus the site-plan and diagram state being edited against it.
// All mutations go through Apply, which serializes them per manager.
package session

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/cadream/backend/internal/docstore"
	"github.com/cadream/backend/internal/models"
	"github.com/cadream/backend/internal/siteplan"
	"github.com/cadream/backend/internal/sld"
	"github.com/google/uuid"
)

// MaxSessions limits concurrent sessions to prevent memory exhaustion
const MaxSessions = 10

// SessionMaxAge is how long idle sessions survive before cleanup
const SessionMaxAge = 30 * time.Minute

// SessionKeepAliveWindow is how long to keep sessions that are actively being used
const SessionKeepAliveWindow = 5 * time.Minute

// LargeDocThreshold is the entity count above which ingestion builds a
// DuckDB bbox index for the session's document.
const LargeDocThreshold = 50000

// EditorSession is one live editing context. CableDraft is transient and
// never persisted.
type EditorSession struct {
	ID                string
	SourceDXFFilename string
	CreatedAt         time.Time
	LastAccessed      time.Time

	Doc        *docstore.Document
	SitePlan   models.SitePlanState
	SLD        sld.EditorState
	CableDraft *siteplan.CableDraft
}

// Info builds the API view of the session.
func (s *EditorSession) Info() models.SessionInfo {
	info := models.SessionInfo{
		ID:                s.ID,
		SourceDXFFilename: s.SourceDXFFilename,
		NodeCount:         len(s.SLD.Diagram.Nodes),
		EdgeCount:         len(s.SLD.Diagram.Edges),
		CableCount:        len(s.SitePlan.CablePaths),
		CreatedAt:         s.CreatedAt.UnixMilli(),
	}
	if s.Doc != nil {
		info.EntityCount = s.Doc.EntityCount()
		info.LayerCount = len(s.Doc.Doc.Layers)
		info.BlockCount = len(s.Doc.Doc.Blocks)
	}
	return info
}

// Manager handles the active editor sessions.
type Manager struct {
	sessions          map[string]*EditorSession
	mu                sync.RWMutex
	tempDir           string
	largeDocThreshold int
}

// NewManager creates a session manager.
// Uses environment variable DUCKDB_TEMP_DIR for temp directory, defaults to ./data/temp
func NewManager() *Manager {
	tempDir := os.Getenv("DUCKDB_TEMP_DIR")
	if tempDir == "" {
		tempDir = "./data/temp"
	}
	os.MkdirAll(tempDir, 0755)
	return NewManagerWithTempDir(tempDir)
}

// NewManagerWithTempDir creates a session manager with a specific temp directory.
func NewManagerWithTempDir(tempDir string) *Manager {
	return &Manager{
		sessions:          make(map[string]*EditorSession),
		tempDir:           tempDir,
		largeDocThreshold: LargeDocThreshold,
	}
}

// SetLargeDocThreshold overrides the indexing threshold (used by config and
// tests).
func (m *Manager) SetLargeDocThreshold(n int) {
	m.largeDocThreshold = n
}

// Create starts a session around an ingested document. doc may be nil for a
// diagram-only session. Documents above the size threshold get a DuckDB bbox
// index so viewport queries stay fast.
func (m *Manager) Create(doc *docstore.Document, sourceDXF string) (*EditorSession, error) {
	m.cleanupOldSessionsIfNeeded()

	sessionID := uuid.New().String()
	now := time.Now()

	sess := &EditorSession{
		ID:                sessionID,
		SourceDXFFilename: sourceDXF,
		CreatedAt:         now,
		LastAccessed:      now,
		Doc:               doc,
		SitePlan: models.SitePlanState{
			Bess:           []models.BessPlacement{},
			CablePaths:     []models.CablePath{},
			ToolMode:       "select",
			BessSizeFactor: 1.0,
			Viewport:       models.Viewport{Scale: 1},
		},
		SLD: sld.NewEditorState(),
	}

	if doc != nil && doc.EntityCount() > m.largeDocThreshold {
		fmt.Printf("[Session %s] Large document (%d entities), building bbox index in %s...\n",
			sessionID[:8], doc.EntityCount(), m.tempDir)
		store, err := docstore.NewDuckStore(m.tempDir, sessionID)
		if err != nil {
			return nil, fmt.Errorf("failed to create bbox index: %w", err)
		}
		if err := store.IndexDocument(doc); err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to index document: %w", err)
		}
		doc.AttachIndex(store)
		fmt.Printf("[Session %s] Indexed %d entities\n", sessionID[:8], store.Len())
	}

	m.mu.Lock()
	m.sessions[sessionID] = sess
	m.mu.Unlock()

	return sess, nil
}

// Get returns a session by ID.
func (m *Manager) Get(id string) (*EditorSession, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sess, ok := m.sessions[id]
	return sess, ok
}

// Touch updates the LastAccessed timestamp for a session so active sessions
// are not cleaned up.
func (m *Manager) Touch(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[id]
	if !ok {
		return false
	}
	sess.LastAccessed = time.Now()
	return true
}

// Apply runs a mutation against a session under the manager lock. Concurrent
// edits to one session are serialized here; fn must not block on I/O.
func (m *Manager) Apply(id string, fn func(*EditorSession) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[id]
	if !ok {
		return fmt.Errorf("session %s not found", id)
	}
	sess.LastAccessed = time.Now()
	return fn(sess)
}

// Delete closes and removes a session.
func (m *Manager) Delete(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[id]
	if !ok {
		return false
	}
	if sess.Doc != nil {
		sess.Doc.Close()
	}
	delete(m.sessions, id)
	return true
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// cleanupOldSessionsIfNeeded evicts the least recently used sessions when at
// capacity.
func (m *Manager) cleanupOldSessionsIfNeeded() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sessions) < MaxSessions {
		return
	}

	toFree := len(m.sessions) - MaxSessions + 1
	for deleted := 0; deleted < toFree; deleted++ {
		var oldestID string
		var oldest time.Time
		for id, sess := range m.sessions {
			if oldestID == "" || sess.LastAccessed.Before(oldest) {
				oldestID = id
				oldest = sess.LastAccessed
			}
		}
		if oldestID == "" {
			return
		}
		if sess := m.sessions[oldestID]; sess.Doc != nil {
			sess.Doc.Close()
		}
		delete(m.sessions, oldestID)
		fmt.Printf("[Manager] Evicted session %s to free memory\n", oldestID[:8])
	}
}

// CleanupOldSessions removes sessions older than maxAge,
// but keeps sessions that have been accessed within SessionKeepAliveWindow.
func (m *Manager) CleanupOldSessions(maxAge time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	keepAliveCutoff := time.Now().Add(-SessionKeepAliveWindow)

	for id, sess := range m.sessions {
		if sess.LastAccessed.After(keepAliveCutoff) {
			continue
		}
		if sess.LastAccessed.Before(cutoff) {
			if sess.Doc != nil {
				sess.Doc.Close()
			}
			delete(m.sessions, id)
			fmt.Printf("[Manager] Cleaned up aged session %s (last accessed: %s ago)\n",
				id[:8], time.Since(sess.LastAccessed).Round(time.Second))
		}
	}
}
