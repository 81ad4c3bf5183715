// Package server serves engine sessions over HTTP long-polling and
// websocket.
//
// # Architecture
//
//   - Session: one client connection and its outgoing packet queue
//   - Manager: registry of live sessions with open/close bookkeeping
//   - Server: HTTP handler that answers polls and websocket upgrades
//   - Metrics: optional Prometheus collectors
//
// # Session Lifecycle
//
// A polling GET without a sid opens a session. The session's first packet
// is its handshake (Open), so the response to that GET carries it. After
// that, each GET with the sid drains the queue into one payload:
//
//	GET /engine.io/?EIO=4&transport=polling          → 0{"sid":"...",...}
//	GET /engine.io/?EIO=4&transport=polling&sid=...  → 4hello\x1e4world
//
// Only one poll drains a session at a time; a second concurrent poll waits
// for the first to finish. A poll with nothing to send is held for up to
// PollTimeout and then answered with a noop packet. If the session closes
// while a poll waits, that poll ends without a body.
//
// A GET with transport=websocket upgrades the connection and takes over the
// queue for the lifetime of the socket, writing one message per packet.
//
// # Usage
//
//	srv := server.New(server.DefaultConfig(),
//	    server.WithMetrics(server.NewMetrics()),
//	)
//	http.ListenAndServe(":8080", srv.Routes("/engine.io/"))
//
//	// Elsewhere, push to a session:
//	if sess, ok := srv.Manager().Get(sid); ok {
//	    sess.SendMessage("hello")
//	}
package server
