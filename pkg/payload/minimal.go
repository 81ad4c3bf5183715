package payload

// MaxMinimalUintLen is the maximum number of bytes AppendMinimalUint writes.
const MaxMinimalUintLen = 8

// AppendMinimalUint appends v in big-endian byte order using the fewest
// bytes that hold it: leading zero bytes are stripped, so 5 encodes as
// 0x05 and 256 as 0x01 0x00.
//
// Zero encodes as a single 0x00 byte. Stripping every leading zero byte
// would write no length bytes at all, leaving a frame whose length field
// is empty; engineioxide's encoder does that. Only an empty-text frame
// has length zero, and no engine packet has empty text.
//
// This is the length field of v3 binary frames. It is not a varint: there
// is no continuation bit, and decoders find the end of the field by the
// 0xFF byte that follows it.
func AppendMinimalUint(dst []byte, v uint64) []byte {
	n := MinimalUintLen(v)
	for shift := (n - 1) * 8; shift >= 0; shift -= 8 {
		dst = append(dst, byte(v>>uint(shift)))
	}
	return dst
}

// MinimalUintLen returns the number of bytes AppendMinimalUint uses for v.
func MinimalUintLen(v uint64) int {
	n := 1
	for v > 0xFF {
		n++
		v >>= 8
	}
	return n
}
