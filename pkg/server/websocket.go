package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vango-dev/enginepoll/pkg/outbox"
	"github.com/vango-dev/enginepoll/pkg/packet"
	"github.com/vango-dev/enginepoll/pkg/payload"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// serveWebSocket upgrades the request and drains the session queue onto
// the websocket, one packet per message, until either side goes away.
// The session is closed when the websocket ends.
func (s *Server) serveWebSocket(w http.ResponseWriter, r *http.Request, sess *Session) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote an HTTP error response
		s.metrics.RecordWebSocketError("upgrade")
		sess.Logger().Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	defer sess.Close()

	ctx, span := s.tracer.Start(r.Context(), "enginepoll.websocket",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("enginepoll.session_id", sess.ID),
			attribute.String("enginepoll.transport", TransportWebSocket),
		),
	)
	defer span.End()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go s.readLoop(conn, sess, cancel)

	sent, err := s.writeLoop(ctx, conn, sess)
	span.SetAttributes(attribute.Int("enginepoll.packets_sent", sent))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return
	}
	span.SetStatus(codes.Ok, "")
}

// readLoop consumes inbound frames until the connection fails, then
// cancels the write loop. Inbound packets are not decoded here.
func (s *Server) readLoop(conn *websocket.Conn, sess *Session, cancel context.CancelFunc) {
	defer cancel()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.metrics.RecordWebSocketError("read")
				sess.Logger().Error("websocket read error", "error", err)
			}
			return
		}
		sess.UpdateLastActive()
	}
}

// writeLoop holds the session queue for the lifetime of the connection and
// writes each packet as it arrives. It returns the number of packets sent.
func (s *Server) writeLoop(ctx context.Context, conn *websocket.Conn, sess *Session) (int, error) {
	rx, err := sess.Queue().Acquire(ctx)
	if err != nil {
		return 0, nil
	}
	defer rx.Release()

	sent := 0
	for {
		p, err := rx.Recv(ctx)
		if err != nil {
			if errors.Is(err, outbox.ErrClosed) {
				deadline := time.Now().Add(s.config.WriteTimeout)
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
			}
			return sent, nil
		}

		messageType, data, err := websocketMessage(sess.Protocol, p)
		if err != nil {
			sess.Logger().Error("packet conversion failed", "error", err, "packet", p.String())
			return sent, err
		}

		if s.config.WriteTimeout > 0 {
			conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
		}
		if err := conn.WriteMessage(messageType, data); err != nil {
			s.metrics.RecordWebSocketError("write")
			sess.Logger().Error("websocket write error", "error", err)
			return sent, err
		}
		sent++
		s.metrics.RecordPackets(TransportWebSocket, 1)
	}
}

// websocketMessage returns the message type and data for one packet.
// Binary packets travel as binary messages; v3 prefixes them with the
// message packet type byte.
func websocketMessage(protocol int, p packet.Packet) (int, []byte, error) {
	if p.IsBinary() {
		raw := p.Raw()
		if protocol == ProtocolV3 {
			data := make([]byte, 0, len(raw)+1)
			data = append(data, payload.MessageMarker)
			return websocket.BinaryMessage, append(data, raw...), nil
		}
		return websocket.BinaryMessage, raw, nil
	}

	text, err := p.Text()
	if err != nil {
		return 0, nil, err
	}
	return websocket.TextMessage, []byte(text), nil
}
