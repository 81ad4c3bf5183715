package packet

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"
)

// Type identifies the kind of packet.
type Type uint8

const (
	TypeOpen     Type = 0x00 // Session handshake
	TypeClose    Type = 0x01 // Transport close
	TypePing     Type = 0x02 // Heartbeat request
	TypePong     Type = 0x03 // Heartbeat reply
	TypeMessage  Type = 0x04 // Application text message
	TypeUpgrade  Type = 0x05 // Transport upgrade
	TypeNoop     Type = 0x06 // Empty poll filler
	TypeBinary   Type = 0x10 // Raw binary message
	TypeBinaryV3 Type = 0x11 // Raw binary message, v3 text convention
)

// String returns the string representation of the packet type.
func (t Type) String() string {
	switch t {
	case TypeOpen:
		return "Open"
	case TypeClose:
		return "Close"
	case TypePing:
		return "Ping"
	case TypePong:
		return "Pong"
	case TypeMessage:
		return "Message"
	case TypeUpgrade:
		return "Upgrade"
	case TypeNoop:
		return "Noop"
	case TypeBinary:
		return "Binary"
	case TypeBinaryV3:
		return "BinaryV3"
	default:
		return "Unknown"
	}
}

// Text form prefixes for binary packets sent over text-only payloads.
const (
	BinaryPrefix   = "b"
	BinaryV3Prefix = "b4"
)

// Packet is a single engine message waiting to be sent to a client.
//
// Textual variants carry Data; binary variants carry Bytes. Use the
// constructors rather than struct literals.
type Packet struct {
	Type  Type
	Data  string
	Bytes []byte
}

// Open creates a handshake packet carrying pre-encoded handshake data.
func Open(data string) Packet { return Packet{Type: TypeOpen, Data: data} }

// Close creates a close packet.
func Close() Packet { return Packet{Type: TypeClose} }

// Ping creates a ping packet with optional probe data.
func Ping(data string) Packet { return Packet{Type: TypePing, Data: data} }

// Pong creates a pong packet with optional probe data.
func Pong(data string) Packet { return Packet{Type: TypePong, Data: data} }

// Message creates a text message packet.
func Message(text string) Packet { return Packet{Type: TypeMessage, Data: text} }

// Upgrade creates an upgrade packet.
func Upgrade() Packet { return Packet{Type: TypeUpgrade} }

// Noop creates a noop packet.
func Noop() Packet { return Packet{Type: TypeNoop} }

// Binary creates a binary message packet.
func Binary(b []byte) Packet { return Packet{Type: TypeBinary, Bytes: b} }

// BinaryV3 creates a binary message packet for v3 clients.
func BinaryV3(b []byte) Packet { return Packet{Type: TypeBinaryV3, Bytes: b} }

// Text renders the packet in its textual wire form: the type digit followed
// by the data. Binary packets are rendered as a "b" (v4) or "b4" (v3) prefix
// followed by the standard padded base64 encoding of the bytes.
//
// Returns a *ConversionError if the packet type is unknown or its textual
// data is not valid UTF-8.
func (p Packet) Text() (string, error) {
	switch p.Type {
	case TypeBinary:
		return BinaryPrefix + base64.StdEncoding.EncodeToString(p.Bytes), nil
	case TypeBinaryV3:
		return BinaryV3Prefix + base64.StdEncoding.EncodeToString(p.Bytes), nil
	case TypeOpen, TypeClose, TypePing, TypePong, TypeMessage, TypeUpgrade, TypeNoop:
		if !utf8.ValidString(p.Data) {
			return "", &ConversionError{Type: p.Type, Err: ErrInvalidUTF8}
		}
		return string('0'+byte(p.Type)) + p.Data, nil
	default:
		return "", &ConversionError{Type: p.Type, Err: ErrUnknownType}
	}
}

// IsBinary reports whether the packet carries a raw binary payload.
func (p Packet) IsBinary() bool {
	return p.Type == TypeBinary || p.Type == TypeBinaryV3
}

// Raw returns the binary payload, or nil for textual packets.
func (p Packet) Raw() []byte {
	if !p.IsBinary() {
		return nil
	}
	return p.Bytes
}

// String returns a short description for logging.
func (p Packet) String() string {
	if p.IsBinary() {
		return fmt.Sprintf("%s(%d bytes)", p.Type, len(p.Bytes))
	}
	if len(p.Data) > 32 {
		return fmt.Sprintf("%s(%q...)", p.Type, p.Data[:32])
	}
	return fmt.Sprintf("%s(%q)", p.Type, p.Data)
}

// Handshake is the data sent in the Open packet.
type Handshake struct {
	SID          string   `json:"sid"`
	Upgrades     []string `json:"upgrades"`
	PingInterval int64    `json:"pingInterval"`
	PingTimeout  int64    `json:"pingTimeout"`
	MaxPayload   int64    `json:"maxPayload,omitempty"`
}

// NewHandshake builds handshake data with intervals expressed in milliseconds.
func NewHandshake(sid string, upgrades []string, pingInterval, pingTimeout time.Duration, maxPayload int64) Handshake {
	if upgrades == nil {
		upgrades = []string{}
	}
	return Handshake{
		SID:          sid,
		Upgrades:     upgrades,
		PingInterval: pingInterval.Milliseconds(),
		PingTimeout:  pingTimeout.Milliseconds(),
		MaxPayload:   maxPayload,
	}
}

// NewOpen encodes the handshake and wraps it in an Open packet.
func NewOpen(h Handshake) (Packet, error) {
	data, err := json.Marshal(h)
	if err != nil {
		return Packet{}, &ConversionError{Type: TypeOpen, Err: err}
	}
	return Open(string(data)), nil
}
