package payload

import (
	"context"
	"errors"
	"strconv"
	"unicode/utf8"

	"github.com/vango-dev/enginepoll/pkg/outbox"
)

// Wire constants.
const (
	// SeparatorV4 separates packets in a v4 payload.
	SeparatorV4 = 0x1E

	// SeparatorV3 ends the decimal length of a v3 string frame.
	SeparatorV3 = ':'

	// FrameString marks a v3 binary-payload frame holding packet text.
	FrameString = 0x00

	// FrameBinary marks a v3 binary-payload frame holding raw bytes.
	FrameBinary = 0x01

	// FrameLengthEnd ends the length field of a v3 binary-payload frame.
	FrameLengthEnd = 0xFF

	// MessageMarker is the message packet type written before raw bytes.
	MessageMarker = 0x04
)

// Packet is what the encoders need from an outgoing packet.
type Packet interface {
	// Text renders the packet in its textual wire form.
	Text() (string, error)

	// IsBinary reports whether the packet carries raw binary data.
	IsBinary() bool

	// Raw returns the binary data of a binary packet.
	Raw() []byte
}

// drain takes every packet currently queued. If there are none it waits
// for the next one, so a successful drain never returns an empty batch.
func drain[P Packet](ctx context.Context, rx *outbox.Receiver[P]) ([]P, error) {
	if batch := rx.Drain(); len(batch) > 0 {
		return batch, nil
	}

	p, err := rx.Recv(ctx)
	if err != nil {
		if errors.Is(err, outbox.ErrClosed) {
			return nil, ErrAborted
		}
		return nil, err
	}
	return []P{p}, nil
}

// EncodeV4 drains the queue into a v4 payload: the text of every packet,
// joined by SeparatorV4.
func EncodeV4[P Packet](ctx context.Context, rx *outbox.Receiver[P]) ([]byte, error) {
	batch, err := drain(ctx, rx)
	if err != nil {
		return nil, err
	}
	return encodeV4(batch)
}

func encodeV4[P Packet](batch []P) ([]byte, error) {
	var buf []byte
	for i, p := range batch {
		text, err := p.Text()
		if err != nil {
			return nil, &EncodeError{Index: i, Err: err}
		}
		if i > 0 {
			buf = append(buf, SeparatorV4)
		}
		buf = append(buf, text...)
	}
	return buf, nil
}

// EncodeV3 drains the queue into a v3 payload. If any packet in the batch
// is binary, every packet is written as a binary-payload frame; otherwise
// every packet is written as a string frame. Frame styles never mix.
func EncodeV3[P Packet](ctx context.Context, rx *outbox.Receiver[P]) ([]byte, error) {
	batch, err := drain(ctx, rx)
	if err != nil {
		return nil, err
	}
	return encodeV3(batch)
}

func encodeV3[P Packet](batch []P) ([]byte, error) {
	hasBinary := false
	for _, p := range batch {
		if p.IsBinary() {
			hasBinary = true
			break
		}
	}

	appendFrame := AppendStringFrame
	if hasBinary {
		appendFrame = AppendBinaryFrame
	}

	var buf []byte
	for i, p := range batch {
		var err error
		if buf, err = appendFrame(buf, p); err != nil {
			return nil, &EncodeError{Index: i, Err: err}
		}
	}
	return buf, nil
}

// EncodeV3String drains the queue into a v3 payload made of string frames
// only, for clients that cannot receive binary data. Binary packets are
// sent in their base64 text form.
func EncodeV3String[P Packet](ctx context.Context, rx *outbox.Receiver[P]) ([]byte, error) {
	batch, err := drain(ctx, rx)
	if err != nil {
		return nil, err
	}
	return encodeV3String(batch)
}

func encodeV3String[P Packet](batch []P) ([]byte, error) {
	var buf []byte
	for i, p := range batch {
		var err error
		if buf, err = AppendStringFrame(buf, p); err != nil {
			return nil, &EncodeError{Index: i, Err: err}
		}
	}
	return buf, nil
}

// AppendBinaryFrame appends one v3 binary-payload frame for p.
//
// Binary packet:
//
//	0x01 <len(raw)+1> 0xFF 0x04 <raw>
//
// Any other packet:
//
//	0x00 <len(text)> 0xFF <text>
//
// Lengths are byte counts written with AppendMinimalUint. On error dst is
// returned unchanged.
func AppendBinaryFrame(dst []byte, p Packet) ([]byte, error) {
	if p.IsBinary() {
		raw := p.Raw()
		dst = append(dst, FrameBinary)
		dst = AppendMinimalUint(dst, uint64(len(raw))+1)
		dst = append(dst, FrameLengthEnd, MessageMarker)
		return append(dst, raw...), nil
	}

	text, err := p.Text()
	if err != nil {
		return dst, err
	}
	dst = append(dst, FrameString)
	dst = AppendMinimalUint(dst, uint64(len(text)))
	dst = append(dst, FrameLengthEnd)
	return append(dst, text...), nil
}

// AppendStringFrame appends one v3 string frame for p:
//
//	<decimal length> ':' <text>
//
// The length counts Unicode characters, not bytes. On error dst is
// returned unchanged.
func AppendStringFrame(dst []byte, p Packet) ([]byte, error) {
	text, err := p.Text()
	if err != nil {
		return dst, err
	}
	dst = strconv.AppendInt(dst, int64(utf8.RuneCountInString(text)), 10)
	dst = append(dst, SeparatorV3)
	return append(dst, text...), nil
}
