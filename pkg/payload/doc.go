// Package payload encodes a session's queued packets into the body of one
// HTTP long-polling response.
//
// Every encoder takes an exclusive outbox.Receiver, drains every packet
// that is queued, and waits for the next one if there are none, so a
// payload always carries at least one packet. If the queue is closed during
// that wait the encoder returns ErrAborted.
//
// # Formats
//
// v4 (EncodeV4): packet texts joined by the record separator 0x1E.
//
//	4hello 0x1E 4world
//
// v3 string payload (AppendStringFrame): each packet is its length in
// Unicode characters, a ':' and its text.
//
//	6:4hello6:4world
//
// v3 binary payload (AppendBinaryFrame): each packet is a type byte, a
// big-endian length with leading zero bytes stripped, 0xFF, then the data.
//
//	┌──────────┬─────────────────┬──────┬─────────────────────────────┐
//	│ 0x00     │ len(text)       │ 0xFF │ text                        │
//	├──────────┼─────────────────┼──────┼─────────────────────────────┤
//	│ 0x01     │ len(raw)+1      │ 0xFF │ 0x04 raw                    │
//	└──────────┴─────────────────┴──────┴─────────────────────────────┘
//
// EncodeV3 uses binary frames for the whole payload as soon as one packet in
// the batch is binary, and string frames otherwise. EncodeV3String always
// uses string frames.
package payload
