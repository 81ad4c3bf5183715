package server

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/vango-dev/enginepoll/pkg/packet"
)

// Manager owns all live sessions.
type Manager struct {
	// Sessions map protected by RWMutex
	sessions map[string]*Session
	mu       sync.RWMutex

	config  *Config
	metrics *Metrics
	logger  *slog.Logger

	totalCreated atomic.Uint64
	totalClosed  atomic.Uint64
}

// ManagerStats is a point-in-time view of the session registry.
type ManagerStats struct {
	Active       int
	TotalCreated uint64
	TotalClosed  uint64
}

// NewManager creates a Manager. metrics may be nil.
func NewManager(config *Config, metrics *Metrics, logger *slog.Logger) *Manager {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		sessions: make(map[string]*Session),
		config:   config,
		metrics:  metrics,
		logger:   logger.With("component", "session_manager"),
	}
}

// Open creates a session for the given protocol version, queues its
// handshake packet and starts its heartbeat.
func (m *Manager) Open(protocol int) (*Session, error) {
	if protocol != ProtocolV3 && protocol != ProtocolV4 {
		return nil, ErrUnsupportedProtocol
	}

	id := generateSessionID()
	s := newSession(id, protocol, m.config, m.logger)

	open, err := packet.NewOpen(packet.NewHandshake(
		id,
		m.config.Upgrades,
		m.config.PingInterval,
		m.config.PingTimeout,
		m.config.MaxPayload,
	))
	if err != nil {
		return nil, NewSessionError(id, "open", err)
	}
	if err := s.Send(open); err != nil {
		return nil, err
	}

	s.onClose = m.remove

	m.mu.Lock()
	if m.config.MaxSessions > 0 && len(m.sessions) >= m.config.MaxSessions {
		m.mu.Unlock()
		return nil, ErrMaxSessionsReached
	}
	m.sessions[id] = s
	m.mu.Unlock()

	m.totalCreated.Add(1)
	m.metrics.SessionOpened()
	m.logger.Info("session opened", "session_id", id, "protocol", protocol)

	go s.heartbeat()
	return s, nil
}

// remove drops a closed session from the registry.
func (m *Manager) remove(s *Session) {
	m.mu.Lock()
	_, ok := m.sessions[s.ID]
	delete(m.sessions, s.ID)
	m.mu.Unlock()

	if ok {
		m.totalClosed.Add(1)
		m.metrics.SessionClosed()
	}
}

// Get returns the session with the given ID.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Close closes the session with the given ID.
func (m *Manager) Close(id string) error {
	s, ok := m.Get(id)
	if !ok {
		return NewSessionError(id, "close", ErrSessionNotFound)
	}
	s.Close()
	return nil
}

// CloseAll closes every session.
func (m *Manager) CloseAll() {
	m.mu.RLock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	for _, s := range sessions {
		s.Close()
	}
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Stats returns registry statistics.
func (m *Manager) Stats() ManagerStats {
	return ManagerStats{
		Active:       m.Count(),
		TotalCreated: m.totalCreated.Load(),
		TotalClosed:  m.totalClosed.Load(),
	}
}
