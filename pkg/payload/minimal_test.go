package payload

import (
	"bytes"
	"math"
	"testing"
)

func TestAppendMinimalUint(t *testing.T) {
	tests := []struct {
		name  string
		value uint64
		want  []byte
	}{
		{"zero", 0, []byte{0x00}},
		{"five", 5, []byte{0x05}},
		{"max_1byte", 255, []byte{0xff}},
		{"min_2byte", 256, []byte{0x01, 0x00}},
		{"medium", 1000, []byte{0x03, 0xe8}},
		{"max_2byte", 65535, []byte{0xff, 0xff}},
		{"min_3byte", 65536, []byte{0x01, 0x00, 0x00}},
		{"max_uint32", math.MaxUint32, []byte{0xff, 0xff, 0xff, 0xff}},
		{"min_8byte", 1 << 56, []byte{0x01, 0, 0, 0, 0, 0, 0, 0}},
		{"max_uint64", math.MaxUint64, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := AppendMinimalUint(nil, tc.value)
			if !bytes.Equal(got, tc.want) {
				t.Errorf("AppendMinimalUint(%d) = % x, want % x", tc.value, got, tc.want)
			}
			if n := MinimalUintLen(tc.value); n != len(tc.want) {
				t.Errorf("MinimalUintLen(%d) = %d, want %d", tc.value, n, len(tc.want))
			}
			if len(got) > MaxMinimalUintLen {
				t.Errorf("encoded %d bytes, more than MaxMinimalUintLen", len(got))
			}
		})
	}
}

func TestAppendMinimalUintAppends(t *testing.T) {
	got := AppendMinimalUint([]byte{0xaa}, 0x0102)
	want := []byte{0xaa, 0x01, 0x02}
	if !bytes.Equal(got, want) {
		t.Errorf("got % x, want % x", got, want)
	}
}
