package syncview

import (
	"context"
	"crypto/tls"
	"errors"
	"sync"
	"time"

	"go_client/logging"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// SessionState describes the lifecycle of a push-channel session.
type SessionState string

const (
	// SessionConnecting is the state while the dial is in flight.
	SessionConnecting SessionState = "connecting"

	// SessionOpen is the state after a successful handshake.
	SessionOpen SessionState = "open"

	// SessionClosed is the terminal state; see CloseReason for why.
	SessionClosed SessionState = "closed"
)

// CloseReason records why a session reached SessionClosed.
type CloseReason string

const (
	// CloseClientClosed means the owning view closed the session.
	CloseClientClosed CloseReason = "client_closed"

	// CloseServerClosed means the server ended the session cleanly.
	CloseServerClosed CloseReason = "server_closed"

	// CloseError means the session died from a transport error.
	CloseError CloseReason = "error"
)

// Status is the connectivity indicator a view exposes to its consumer.
type Status string

const (
	StatusConnected    Status = "connected"
	StatusDisconnected Status = "disconnected"
)

// ErrSessionNotOpen is returned by Send when the session is not open.
// Unguarded pushes after close are a correctness bug, so deliverability
// failures are always reported to the caller.
var ErrSessionNotOpen = errors.New("push channel session is not open")

// MessageHandler receives each inbound message in arrival order.
type MessageHandler func(raw []byte)

// CloseHandler is invoked exactly once when a session closes, with the
// reason and the underlying error for CloseError.
type CloseHandler func(reason CloseReason, err error)

// Manager establishes and tears down push-channel sessions. It owns the
// websocket dialer configuration; each call to Open yields exactly one
// logical channel for one caller. The manager never reconnects on its own:
// a caller whose session dies must open a fresh one.
type Manager struct {
	dialer    *websocket.Dialer
	logger    *logging.Logger
	writeWait time.Duration
}

// ManagerConfig holds tuning knobs for the connection manager.
type ManagerConfig struct {
	// HandshakeTimeout bounds the websocket dial (default: 10s)
	HandshakeTimeout time.Duration

	// WriteWait bounds each outbound write (default: 10s)
	WriteWait time.Duration

	// AllowSelfSignedCerts disables TLS verification for wss endpoints
	AllowSelfSignedCerts bool
}

// DefaultManagerConfig returns the default manager configuration.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		HandshakeTimeout: 10 * time.Second,
		WriteWait:        10 * time.Second,
	}
}

// NewManager creates a connection manager with default configuration.
func NewManager(logger *logging.Logger) *Manager {
	return NewManagerWithConfig(logger, DefaultManagerConfig())
}

// NewManagerWithConfig creates a connection manager with custom configuration.
func NewManagerWithConfig(logger *logging.Logger, config ManagerConfig) *Manager {
	if logger == nil {
		logger = logging.Nop()
	}
	if config.HandshakeTimeout == 0 {
		config.HandshakeTimeout = 10 * time.Second
	}
	if config.WriteWait == 0 {
		config.WriteWait = 10 * time.Second
	}

	dialer := &websocket.Dialer{
		HandshakeTimeout: config.HandshakeTimeout,
	}
	if config.AllowSelfSignedCerts {
		dialer.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &Manager{
		dialer:    dialer,
		logger:    logger,
		writeWait: config.WriteWait,
	}
}

// Open dials the endpoint and returns an open session. onMessage is invoked
// for every inbound message, in arrival order, from a single reader
// goroutine; onClose is invoked exactly once when the session ends for any
// reason. Returns an error if the handshake fails.
func (m *Manager) Open(ctx context.Context, endpoint string, onMessage MessageHandler, onClose CloseHandler) (*Session, error) {
	s := &Session{
		endpoint:  endpoint,
		state:     SessionConnecting,
		onMessage: onMessage,
		onClose:   onClose,
		logger:    m.logger,
		writeWait: m.writeWait,
	}

	conn, _, err := m.dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		s.mu.Lock()
		s.state = SessionClosed
		s.reason = CloseError
		s.mu.Unlock()
		m.logger.Error("Failed to open push channel",
			zap.String("endpoint", endpoint),
			zap.Error(err))
		return nil, err
	}

	s.mu.Lock()
	s.conn = conn
	s.state = SessionOpen
	s.mu.Unlock()

	m.logger.Debug("Push channel open", zap.String("endpoint", endpoint))

	go s.readLoop()

	return s, nil
}

// Session is one logical push channel, owned exclusively by the view that
// opened it for the whole of its lifetime.
type Session struct {
	conn     *websocket.Conn
	endpoint string

	// mu guards state, reason, and outbound writes
	mu     sync.Mutex
	state  SessionState
	reason CloseReason

	onMessage MessageHandler
	onClose   CloseHandler

	logger    *logging.Logger
	writeWait time.Duration
}

// State returns the current session state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Reason returns why the session closed. Only meaningful once State
// reports SessionClosed.
func (s *Session) Reason() CloseReason {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reason
}

// Endpoint returns the endpoint this session was opened against.
func (s *Session) Endpoint() string {
	return s.endpoint
}

// Send writes a JSON message to the server. Returns ErrSessionNotOpen if
// the session has closed, so callers never push silently into the void.
func (s *Session) Send(v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != SessionOpen {
		return ErrSessionNotOpen
	}

	s.conn.SetWriteDeadline(time.Now().Add(s.writeWait))
	return s.conn.WriteJSON(v)
}

// Close ends the session from the client side. Safe to call more than once.
// The read loop observes the closed connection and fires onClose with
// CloseClientClosed.
func (s *Session) Close() {
	s.mu.Lock()
	if s.state == SessionClosed {
		s.mu.Unlock()
		return
	}
	s.state = SessionClosed
	s.reason = CloseClientClosed
	conn := s.conn
	s.mu.Unlock()

	// Best-effort close handshake; the server also tolerates abrupt closes.
	conn.SetWriteDeadline(time.Now().Add(s.writeWait))
	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	conn.Close()
}

// readLoop delivers inbound messages in arrival order until the connection
// ends, then reports the close reason exactly once.
func (s *Session) readLoop() {
	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			reason := s.closeFromRead(err)
			if s.onClose != nil {
				if reason == CloseClientClosed {
					s.onClose(reason, nil)
				} else {
					s.onClose(reason, err)
				}
			}
			return
		}

		if s.onMessage != nil {
			s.onMessage(raw)
		}
	}
}

// closeFromRead transitions the session to closed after a read failure and
// returns the reason. A session already closed by Close keeps its
// CloseClientClosed reason.
func (s *Session) closeFromRead(err error) CloseReason {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == SessionClosed {
		return s.reason
	}

	s.state = SessionClosed
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		s.reason = CloseServerClosed
	} else {
		s.reason = CloseError
	}
	s.conn.Close()

	s.logger.Warn("Push channel closed unexpectedly",
		zap.String("endpoint", s.endpoint),
		zap.String("reason", string(s.reason)),
		zap.Error(err))

	return s.reason
}
