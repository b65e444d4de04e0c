package state

import (
	"context"
	"sync"

	"github.com/vladimiradmaev/nutriscan/internal/app"
	"github.com/vladimiradmaev/nutriscan/internal/capture"
)

// Session is one chat's controller together with the frame device that
// receives the photos the user sends.
type Session struct {
	*app.Session
	Frames *capture.FrameDevice
}

// Factory creates the session for a chat.
type Factory func(ctx context.Context, chatID int64) *Session

// GaugeSetter is notified of the number of live sessions.
type GaugeSetter interface {
	SetActiveSessions(n int)
}

// Manager keeps one session per chat, created on first use.
type Manager struct {
	factory  Factory
	gauge    GaugeSetter
	sessions map[int64]*Session
	mu       sync.RWMutex
}

// NewManager creates a session manager. gauge may be nil.
func NewManager(factory Factory, gauge GaugeSetter) *Manager {
	return &Manager{
		factory:  factory,
		gauge:    gauge,
		sessions: make(map[int64]*Session),
	}
}

// Get returns the chat's session, creating it when needed.
func (m *Manager) Get(ctx context.Context, chatID int64) *Session {
	m.mu.RLock()
	s, ok := m.sessions[chatID]
	m.mu.RUnlock()
	if ok {
		return s
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[chatID]; ok {
		return s
	}
	s = m.factory(ctx, chatID)
	m.sessions[chatID] = s
	m.reportLocked()
	return s
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Drop closes and forgets the chat's session.
func (m *Manager) Drop(chatID int64) {
	m.mu.Lock()
	s, ok := m.sessions[chatID]
	delete(m.sessions, chatID)
	m.reportLocked()
	m.mu.Unlock()

	if ok {
		s.Controller.Close()
	}
}

// CloseAll closes every session.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[int64]*Session)
	m.reportLocked()
	m.mu.Unlock()

	for _, s := range sessions {
		s.Controller.Close()
	}
}

func (m *Manager) reportLocked() {
	if m.gauge != nil {
		m.gauge.SetActiveSessions(len(m.sessions))
	}
}
