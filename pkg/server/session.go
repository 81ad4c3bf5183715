package server

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vango-dev/enginepoll/pkg/outbox"
	"github.com/vango-dev/enginepoll/pkg/packet"
	"github.com/vango-dev/enginepoll/pkg/payload"
)

// Protocol versions understood by the server.
const (
	ProtocolV3 = 3
	ProtocolV4 = 4
)

// Session is one client connection. Packets sent on a session are queued
// until a poll or a websocket drains them.
type Session struct {
	// Identity
	ID        string
	Protocol  int
	CreatedAt time.Time

	queue  *outbox.Queue[packet.Packet]
	config *Config
	logger *slog.Logger

	lastActive atomic.Int64 // Unix nanos
	closeOnce  sync.Once
	done       chan struct{}
	onClose    func(*Session)
}

// generateSessionID generates a cryptographically random session ID.
func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		// SECURITY: Fatal on entropy failure - weak IDs are dangerous
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return hex.EncodeToString(b)
}

// newSession creates a session with an empty queue.
func newSession(id string, protocol int, config *Config, logger *slog.Logger) *Session {
	now := time.Now()
	s := &Session{
		ID:        id,
		Protocol:  protocol,
		CreatedAt: now,
		queue:     outbox.New[packet.Packet](),
		config:    config,
		logger:    logger.With("session_id", id, "protocol", protocol),
		done:      make(chan struct{}),
	}
	s.lastActive.Store(now.UnixNano())
	return s
}

// Send queues a packet for the client.
func (s *Session) Send(p packet.Packet) error {
	if err := s.queue.Push(p); err != nil {
		if errors.Is(err, outbox.ErrClosed) {
			return NewSessionError(s.ID, "send", ErrSessionClosed)
		}
		return NewSessionError(s.ID, "send", err)
	}
	s.logger.Debug("packet queued", "packet", p.String())
	return nil
}

// SendMessage queues a text message.
func (s *Session) SendMessage(text string) error {
	return s.Send(packet.Message(text))
}

// SendBinary queues a binary message using the convention of the
// session's protocol version.
func (s *Session) SendBinary(b []byte) error {
	if s.Protocol == ProtocolV3 {
		return s.Send(packet.BinaryV3(b))
	}
	return s.Send(packet.Binary(b))
}

// Mode returns the payload format for a poll on this session.
// b64 is set by v3 clients that cannot receive binary payloads.
func (s *Session) Mode(b64 bool) payload.Mode {
	switch {
	case s.Protocol == ProtocolV4:
		return payload.ModeV4
	case b64:
		return payload.ModeV3String
	default:
		return payload.ModeV3Binary
	}
}

// Close ends the session. A poll waiting for packets is aborted; packets
// already queued can still be drained. Safe to call multiple times.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.queue.Close()
		close(s.done)
		s.logger.Info("session closed")
		if s.onClose != nil {
			s.onClose(s)
		}
	})
}

// IsClosed returns true if the session has been closed.
func (s *Session) IsClosed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Done returns a channel that is closed when the session closes.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Queue returns the session's outgoing packet queue.
func (s *Session) Queue() *outbox.Queue[packet.Packet] {
	return s.queue
}

// Logger returns the session logger.
func (s *Session) Logger() *slog.Logger {
	return s.logger
}

// UpdateLastActive records client activity.
func (s *Session) UpdateLastActive() {
	s.lastActive.Store(time.Now().UnixNano())
}

// LastActive returns the time of the last client activity.
func (s *Session) LastActive() time.Time {
	return time.Unix(0, s.lastActive.Load())
}

// heartbeat queues a ping every PingInterval until the session closes.
// In v4 the server pings; v3 clients ping on their own.
func (s *Session) heartbeat() {
	if s.Protocol != ProtocolV4 || s.config.PingInterval <= 0 {
		return
	}

	ticker := time.NewTicker(s.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.Send(packet.Ping("")); err != nil {
				return
			}
		case <-s.done:
			return
		}
	}
}
