package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Default tracer name for poll and websocket spans.
const defaultTracerName = "enginepoll"

// Transport names accepted in the transport query parameter.
const (
	TransportPolling   = "polling"
	TransportWebSocket = "websocket"
)

// Server answers engine polling and websocket requests for the sessions
// held by its Manager.
type Server struct {
	config   *Config
	manager  *Manager
	metrics  *Metrics
	tracer   trace.Tracer
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics enables Prometheus metrics.
func WithMetrics(m *Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithTracer sets the tracer used for poll spans.
// Default: the global OpenTelemetry provider's "enginepoll" tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Server) {
		s.tracer = tracer
	}
}

// New creates a Server. A nil config uses DefaultConfig.
func New(config *Config, opts ...Option) *Server {
	if config == nil {
		config = DefaultConfig()
	}
	s := &Server{
		config: config,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(defaultTracerName)
	}
	s.logger = s.logger.With("component", "enginepoll")
	s.manager = NewManager(config, s.metrics, s.logger)

	checkOrigin := config.CheckOrigin
	if checkOrigin == nil {
		checkOrigin = SameOriginCheck
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  config.ReadBufferSize,
		WriteBufferSize: config.WriteBufferSize,
		CheckOrigin:     checkOrigin,
	}
	return s
}

// Manager returns the session manager.
func (s *Server) Manager() *Manager {
	return s.manager
}

// Config returns the server configuration.
func (s *Server) Config() *Config {
	return s.config
}

// Routes returns a router that serves the engine endpoint at path.
func (s *Server) Routes(path string) chi.Router {
	r := chi.NewRouter()
	s.Mount(r, path)
	return r
}

// Mount registers the engine endpoint at path on r.
func (s *Server) Mount(r chi.Router, path string) {
	r.Get(path, s.ServeHTTP)
}

// Shutdown closes every session. Polls waiting on them finish without a body.
func (s *Server) Shutdown() {
	s.manager.CloseAll()
}

// ServeHTTP dispatches a GET request to the polling or websocket transport.
// A polling request without a sid opens a new session.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, codeBadHandshakeMethod, "Bad handshake method")
		return
	}

	q := r.URL.Query()
	protocol, err := strconv.Atoi(q.Get("EIO"))
	if err != nil || (protocol != ProtocolV3 && protocol != ProtocolV4) {
		writeError(w, http.StatusBadRequest, codeUnsupportedProtocolVersion, "Unsupported protocol version")
		return
	}

	transport := q.Get("transport")
	if transport != TransportPolling && transport != TransportWebSocket {
		writeError(w, http.StatusBadRequest, codeUnknownTransport, "Transport unknown")
		return
	}

	sid := q.Get("sid")
	if sid == "" {
		if transport != TransportPolling {
			writeError(w, http.StatusBadRequest, codeBadRequest, ErrMissingSessionID.Error())
			return
		}
		sess, err := s.manager.Open(protocol)
		if err != nil {
			s.logger.Warn("open session failed", "error", err)
			writeError(w, http.StatusServiceUnavailable, codeBadRequest, err.Error())
			return
		}
		s.servePoll(w, r, sess, sess.Mode(isTrue(q.Get("b64"))))
		return
	}

	sess, ok := s.manager.Get(sid)
	if !ok {
		writeError(w, http.StatusBadRequest, codeUnknownSessionID, "Session ID unknown")
		return
	}
	if sess.Protocol != protocol {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Protocol version mismatch")
		return
	}
	sess.UpdateLastActive()

	if transport == TransportWebSocket {
		s.serveWebSocket(w, r, sess)
		return
	}
	s.servePoll(w, r, sess, sess.Mode(isTrue(q.Get("b64"))))
}

// Engine error codes returned in JSON error bodies.
const (
	codeUnknownTransport           = 0
	codeUnknownSessionID           = 1
	codeBadHandshakeMethod         = 2
	codeBadRequest                 = 3
	codeUnsupportedProtocolVersion = 5
)

// writeError writes an engine error body: {"code":1,"message":"..."}.
func writeError(w http.ResponseWriter, status, code int, message string) {
	writeJSON(w, status, struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}{code, message})
}

// writeServerError writes a failure that has no engine error code:
// {"message":"..."}.
func writeServerError(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusInternalServerError, struct {
		Message string `json:"message"`
	}{message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func isTrue(v string) bool {
	return v == "1" || v == "true"
}
