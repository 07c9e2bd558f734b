package protocol

// Length-indicator rule shared by strings, binaries and alphanumerics: a
// single byte L, then:
//
//	L <= 245   -> payload is L bytes
//	L == 246   -> next 2 bytes (LE) give the length, then that many bytes
//	L == 247   -> next 4 bytes (LE) give the length, then that many bytes
//	L == 255   -> NULL (only valid if the target is nullable)
const (
	lengthIndicator1ByteMax = 245
	lengthIndicator2Byte    = 246
	lengthIndicator4Byte    = 247
	lengthIndicatorNull     = 255
)

// readLength parses a length indicator and returns (-1, false) for NULL,
// otherwise the decoded length and true.
func readLength(d *decoder) (int, bool) {
	b := d.byte()
	switch {
	case b <= lengthIndicator1ByteMax:
		return int(b), true
	case b == lengthIndicator2Byte:
		return int(d.uint16()), true
	case b == lengthIndicator4Byte:
		return int(d.uint32()), true
	case b == lengthIndicatorNull:
		return -1, false
	default:
		return -1, false
	}
}

// writeLength emits the length indicator (and, for wide lengths, the
// length itself) needed to precede a payload of n bytes.
func writeLength(e *encoder, n int) {
	switch {
	case n <= lengthIndicator1ByteMax:
		e.byte(byte(n))
	case n <= 0xFFFF:
		e.byte(lengthIndicator2Byte)
		e.int16(int16(uint16(n)))
	default:
		e.byte(lengthIndicator4Byte)
		e.int32(int32(n))
	}
}

// writeLengthNull emits the NULL length-indicator sentinel.
func writeLengthNull(e *encoder) { e.byte(lengthIndicatorNull) }

// lengthIndicatorSize returns the number of bytes the length indicator
// itself occupies (not counting the payload) for a payload of n bytes.
func lengthIndicatorSize(n int) int {
	switch {
	case n <= lengthIndicator1ByteMax:
		return 1
	case n <= 0xFFFF:
		return 3
	default:
		return 5
	}
}
