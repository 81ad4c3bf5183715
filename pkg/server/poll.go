package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/vango-dev/enginepoll/pkg/packet"
	"github.com/vango-dev/enginepoll/pkg/payload"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// servePoll answers one long-polling request with everything queued on the
// session, waiting up to PollTimeout for the first packet.
func (s *Server) servePoll(w http.ResponseWriter, r *http.Request, sess *Session, mode payload.Mode) {
	start := time.Now()

	ctx, span := s.tracer.Start(r.Context(), "enginepoll.poll",
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("enginepoll.session_id", sess.ID),
			attribute.String("enginepoll.mode", mode.String()),
			attribute.String("enginepoll.transport", TransportPolling),
		),
	)
	defer span.End()

	body, status, err := s.encodePoll(ctx, sess, mode)
	s.metrics.RecordPoll(mode.String(), status, time.Since(start), len(body))
	span.SetAttributes(
		attribute.String("enginepoll.status", status),
		attribute.Int("enginepoll.payload_bytes", len(body)),
	)

	switch status {
	case PollOK, PollNoop:
		span.SetStatus(codes.Ok, "")
		w.Header().Set("Content-Type", payload.ContentType(mode, body))
		w.Header().Set("Content-Length", strconv.Itoa(len(body)))
		w.Header().Set("Cache-Control", "no-store")
		if _, err := w.Write(body); err != nil {
			sess.Logger().Warn("poll write failed", "error", err)
		}

	case PollAborted:
		// Session closed while the poll waited; end without a body.
		sess.Logger().Warn("poll aborted", "error", err)

	case PollCancelled:
		sess.Logger().Debug("poll cancelled by client", "error", err)

	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		sess.Logger().Error("poll encode failed", "error", err, "mode", mode.String())
		writeServerError(w, "Payload encoding failed")
	}
}

// encodePoll acquires the session queue and encodes one payload. It
// returns the body and the poll status label.
func (s *Server) encodePoll(parent context.Context, sess *Session, mode payload.Mode) ([]byte, string, error) {
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if s.config.PollTimeout > 0 {
		ctx, cancel = context.WithTimeout(parent, s.config.PollTimeout)
	} else {
		ctx, cancel = context.WithCancel(parent)
	}
	defer cancel()

	rx, err := sess.Queue().Acquire(ctx)
	if err == nil {
		var body []byte
		body, err = payload.Encode(ctx, mode, rx)
		rx.Release()
		if err == nil {
			return body, PollOK, nil
		}
	}

	switch {
	case errors.Is(err, payload.ErrAborted):
		return nil, PollAborted, err
	case parent.Err() != nil:
		return nil, PollCancelled, err
	case errors.Is(err, context.DeadlineExceeded):
		// Nothing to send before the timeout; keep the client polling.
		body, err := payload.EncodePackets(mode, []packet.Packet{packet.Noop()})
		if err != nil {
			return nil, PollError, err
		}
		return body, PollNoop, nil
	default:
		return nil, PollError, err
	}
}
