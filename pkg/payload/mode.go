package payload

import (
	"context"

	"github.com/vango-dev/enginepoll/pkg/outbox"
)

// Mode selects the payload format. The caller picks it from the protocol
// version the client negotiated.
type Mode uint8

const (
	ModeV4       Mode = iota // v4: text joined by 0x1E
	ModeV3Binary             // v3, client accepts binary payloads
	ModeV3String             // v3, client requires text (b64=1)
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeV4:
		return "v4"
	case ModeV3Binary:
		return "v3"
	case ModeV3String:
		return "v3-string"
	default:
		return "unknown"
	}
}

// ParseMode parses the value returned by Mode.String.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "v4":
		return ModeV4, true
	case "v3":
		return ModeV3Binary, true
	case "v3-string":
		return ModeV3String, true
	default:
		return 0, false
	}
}

// Content types of encoded payloads.
const (
	ContentTypeText   = "text/plain; charset=UTF-8"
	ContentTypeBinary = "application/octet-stream"
)

// Encode drains the queue with the encoder for mode.
func Encode[P Packet](ctx context.Context, mode Mode, rx *outbox.Receiver[P]) ([]byte, error) {
	switch mode {
	case ModeV4:
		return EncodeV4(ctx, rx)
	case ModeV3Binary:
		return EncodeV3(ctx, rx)
	case ModeV3String:
		return EncodeV3String(ctx, rx)
	default:
		return nil, ErrUnknownMode
	}
}

// EncodePackets encodes an already collected batch in the format for mode.
func EncodePackets[P Packet](mode Mode, batch []P) ([]byte, error) {
	switch mode {
	case ModeV4:
		return encodeV4(batch)
	case ModeV3Binary:
		return encodeV3(batch)
	case ModeV3String:
		return encodeV3String(batch)
	default:
		return nil, ErrUnknownMode
	}
}

// ContentType returns the HTTP content type for a payload produced in mode.
// A v3 payload is binary when it starts with a frame type byte; string
// frames start with an ASCII digit.
func ContentType(mode Mode, body []byte) string {
	if mode == ModeV3Binary && len(body) > 0 && body[0] <= FrameBinary {
		return ContentTypeBinary
	}
	return ContentTypeText
}
