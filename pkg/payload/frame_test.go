package payload

import (
	"bytes"
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/vango-dev/enginepoll/pkg/packet"
)

// rawPacket is a packet whose text form is exactly its payload, with no
// type prefix.
type rawPacket struct {
	text   string
	bin    []byte
	binary bool
	err    error
}

func textPacket(s string) rawPacket  { return rawPacket{text: s} }
func binPacket(b []byte) rawPacket   { return rawPacket{bin: b, binary: true} }
func failPacket(err error) rawPacket { return rawPacket{err: err} }

func (p rawPacket) IsBinary() bool { return p.binary }
func (p rawPacket) Raw() []byte    { return p.bin }

func (p rawPacket) Text() (string, error) {
	if p.err != nil {
		return "", p.err
	}
	if p.binary {
		return "b" + base64.StdEncoding.EncodeToString(p.bin), nil
	}
	return p.text, nil
}

type binaryFrame struct {
	kind byte
	data []byte
}

// decodeBinaryFrames splits a v3 binary payload back into frames.
func decodeBinaryFrames(t *testing.T, body []byte) []binaryFrame {
	t.Helper()
	var frames []binaryFrame
	for len(body) > 0 {
		kind := body[0]
		if kind != FrameString && kind != FrameBinary {
			t.Fatalf("bad frame type byte 0x%02x", kind)
		}
		body = body[1:]

		end := bytes.IndexByte(body, FrameLengthEnd)
		if end < 1 {
			t.Fatalf("missing length field")
		}
		var n uint64
		for _, b := range body[:end] {
			n = n<<8 | uint64(b)
		}
		body = body[end+1:]
		if uint64(len(body)) < n {
			t.Fatalf("frame length %d exceeds remaining %d bytes", n, len(body))
		}
		frames = append(frames, binaryFrame{kind: kind, data: body[:n]})
		body = body[n:]
	}
	return frames
}

// decodeStringFrames splits a v3 string payload back into packet texts.
func decodeStringFrames(t *testing.T, body []byte) []string {
	t.Helper()
	var texts []string
	s := string(body)
	for len(s) > 0 {
		colon := strings.IndexByte(s, SeparatorV3)
		if colon < 1 {
			t.Fatalf("missing length prefix in %q", s)
		}
		n, err := strconv.Atoi(s[:colon])
		if err != nil {
			t.Fatalf("bad length prefix %q: %v", s[:colon], err)
		}
		s = s[colon+1:]

		end := 0
		for i := 0; i < n; i++ {
			if end >= len(s) {
				t.Fatalf("frame of %d characters truncated", n)
			}
			_, size := utf8.DecodeRuneInString(s[end:])
			end += size
		}
		texts = append(texts, s[:end])
		s = s[end:]
	}
	return texts
}

func TestAppendBinaryFrame(t *testing.T) {
	tests := []struct {
		name   string
		packet Packet
		want   []byte
	}{
		{"raw_text", textPacket("hi"), []byte{0x00, 0x02, 0xff, 'h', 'i'}},
		{"raw_binary", binPacket([]byte{0x01, 0x02}), []byte{0x01, 0x03, 0xff, 0x04, 0x01, 0x02}},
		{"raw_binary_empty", binPacket(nil), []byte{0x01, 0x01, 0xff, 0x04}},
		{"raw_text_empty_keeps_length_byte", textPacket(""), []byte{0x00, 0x00, 0xff}},
		{"message", packet.Message("hi"), []byte{0x00, 0x03, 0xff, '4', 'h', 'i'}},
		{"ping", packet.Ping(""), []byte{0x00, 0x01, 0xff, '2'}},
		{"binary", packet.Binary([]byte{0xde, 0xad}), []byte{0x01, 0x03, 0xff, 0x04, 0xde, 0xad}},
		{"binary_v3", packet.BinaryV3([]byte{0xbe, 0xef}), []byte{0x01, 0x03, 0xff, 0x04, 0xbe, 0xef}},
		{"unicode_counts_bytes", packet.Message("é"), []byte{0x00, 0x03, 0xff, '4', 0xc3, 0xa9}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := AppendBinaryFrame(nil, tc.packet)
			if err != nil {
				t.Fatalf("AppendBinaryFrame() error = %v", err)
			}
			if !bytes.Equal(got, tc.want) {
				t.Errorf("AppendBinaryFrame() = % x, want % x", got, tc.want)
			}
		})
	}
}

func TestAppendBinaryFrameLongLength(t *testing.T) {
	raw := bytes.Repeat([]byte{0xab}, 300)
	got, err := AppendBinaryFrame(nil, binPacket(raw))
	if err != nil {
		t.Fatal(err)
	}
	// 301 = 0x01 0x2d
	wantHeader := []byte{0x01, 0x01, 0x2d, 0xff, 0x04}
	if !bytes.Equal(got[:len(wantHeader)], wantHeader) {
		t.Errorf("header = % x, want % x", got[:len(wantHeader)], wantHeader)
	}
	if len(got) != len(wantHeader)+300 {
		t.Errorf("frame length = %d, want %d", len(got), len(wantHeader)+300)
	}

	frames := decodeBinaryFrames(t, got)
	if len(frames) != 1 || frames[0].kind != FrameBinary {
		t.Fatalf("decoded %d frames", len(frames))
	}
	if frames[0].data[0] != MessageMarker || !bytes.Equal(frames[0].data[1:], raw) {
		t.Error("round trip lost binary data")
	}
}

func TestAppendBinaryFrameError(t *testing.T) {
	boom := errors.New("boom")
	prefix := []byte{0x01, 0x02}
	got, err := AppendBinaryFrame(prefix, failPacket(boom))
	if !errors.Is(err, boom) {
		t.Fatalf("error = %v, want boom", err)
	}
	if !bytes.Equal(got, prefix) {
		t.Errorf("dst modified on error: % x", got)
	}
}

func TestAppendStringFrame(t *testing.T) {
	tests := []struct {
		name   string
		packet Packet
		want   string
	}{
		{"raw_text", textPacket("hi"), "2:hi"},
		{"empty", textPacket(""), "0:"},
		{"message", packet.Message("hello"), "6:4hello"},
		{"unicode_counts_chars", packet.Message("héllo"), "6:4héllo"},
		{"emoji", textPacket("😀😀"), "2:😀😀"},
		{"binary_v3_base64", packet.BinaryV3([]byte{0x01, 0x02, 0x03, 0x04}), "10:b4AQIDBA=="},
		{"long", textPacket(strings.Repeat("x", 1234)), "1234:" + strings.Repeat("x", 1234)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := AppendStringFrame(nil, tc.packet)
			if err != nil {
				t.Fatalf("AppendStringFrame() error = %v", err)
			}
			if string(got) != tc.want {
				t.Errorf("AppendStringFrame() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestAppendStringFrameError(t *testing.T) {
	_, err := AppendStringFrame(nil, packet.Message(string([]byte{0xff})))
	var ce *packet.ConversionError
	if !errors.As(err, &ce) {
		t.Fatalf("error = %v, want *packet.ConversionError", err)
	}
}

func TestBinaryFrameRoundTrip(t *testing.T) {
	packets := []Packet{
		packet.Message("hello"),
		packet.Binary([]byte{0x00, 0xff, 0x10}),
		packet.Message("wörld"),
		packet.BinaryV3(bytes.Repeat([]byte{0x7f}, 200)),
	}

	var buf []byte
	for _, p := range packets {
		var err error
		if buf, err = AppendBinaryFrame(buf, p); err != nil {
			t.Fatal(err)
		}
	}

	frames := decodeBinaryFrames(t, buf)
	if len(frames) != len(packets) {
		t.Fatalf("decoded %d frames, want %d", len(frames), len(packets))
	}
	for i, p := range packets {
		f := frames[i]
		if p.IsBinary() {
			if f.kind != FrameBinary {
				t.Errorf("frame %d kind = %d, want binary", i, f.kind)
			}
			if f.data[0] != MessageMarker || !bytes.Equal(f.data[1:], p.Raw()) {
				t.Errorf("frame %d raw data mismatch", i)
			}
			continue
		}
		text, _ := p.Text()
		if f.kind != FrameString || string(f.data) != text {
			t.Errorf("frame %d = %d/%q, want string/%q", i, f.kind, f.data, text)
		}
	}
}
