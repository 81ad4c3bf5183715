// Package packet defines the engine packets a session sends to its client.
//
// A Packet is a tagged union over the engine packet types. Every packet has
// a textual wire form, returned by Text:
//
//	Open     "0" + handshake JSON
//	Close    "1"
//	Ping     "2" + probe
//	Pong     "3" + probe
//	Message  "4" + text
//	Upgrade  "5"
//	Noop     "6"
//	Binary   "b"  + base64(bytes)   (v4 clients)
//	BinaryV3 "b4" + base64(bytes)   (v3 clients)
//
// Binary packets also expose their raw bytes through Raw, for transports and
// payload formats that can carry binary data directly.
package packet
