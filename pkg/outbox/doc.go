// Package outbox implements the per-session queue of outgoing packets.
//
// Producers push from any goroutine. Consumption is exclusive: a consumer
// first acquires a Receiver, which serializes concurrent polls against the
// same session so that no packet is observed twice:
//
//	rx, err := q.Acquire(ctx)
//	if err != nil {
//	    return err
//	}
//	defer rx.Release()
//
//	batch := rx.Drain()
//	if len(batch) == 0 {
//	    p, err := rx.Recv(ctx) // blocks until a push or Close
//	    ...
//	}
//
// Cancelling a blocked Recv never loses an item; it stays queued for the
// next Receiver.
package outbox
