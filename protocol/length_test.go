package protocol

import (
	"bytes"
	"testing"
)

var lengthTests = []int{0, 1, 245, 246, 247, 300, 0xFFFF, 0xFFFF + 1, 1 << 20}

func TestLengthRoundtrip(t *testing.T) {
	for _, n := range lengthTests {
		var buf bytes.Buffer
		e := newEncoder(&buf)
		writeLength(e, n)
		if buf.Len() != lengthIndicatorSize(n) {
			t.Fatalf("writeLength(%d): wrote %d bytes, lengthIndicatorSize says %d", n, buf.Len(), lengthIndicatorSize(n))
		}
		d := newDecoder(&buf)
		got, ok := readLength(d)
		if !ok {
			t.Fatalf("readLength(%d): got NULL", n)
		}
		if got != n {
			t.Fatalf("readLength(%d): got %d", n, got)
		}
	}
}

func TestLengthIndicatorSizeBoundaries(t *testing.T) {
	tests := []struct {
		n    int
		size int
	}{
		{0, 1},
		{lengthIndicator1ByteMax, 1},
		{lengthIndicator1ByteMax + 1, 3},
		{0xFFFF, 3},
		{0xFFFF + 1, 5},
	}
	for _, test := range tests {
		if got := lengthIndicatorSize(test.n); got != test.size {
			t.Fatalf("lengthIndicatorSize(%d): got %d want %d", test.n, got, test.size)
		}
	}
}

func TestLengthNull(t *testing.T) {
	var buf bytes.Buffer
	e := newEncoder(&buf)
	writeLengthNull(e)
	if buf.Len() != 1 || buf.Bytes()[0] != lengthIndicatorNull {
		t.Fatalf("writeLengthNull: got %v", buf.Bytes())
	}
	d := newDecoder(&buf)
	n, ok := readLength(d)
	if ok || n != -1 {
		t.Fatalf("readLength after writeLengthNull: got (%d,%v) want (-1,false)", n, ok)
	}
}

func Test2ByteIndicatorIsLittleEndian(t *testing.T) {
	var buf bytes.Buffer
	e := newEncoder(&buf)
	writeLength(e, 300)
	b := buf.Bytes()
	if len(b) != 3 || b[0] != lengthIndicator2Byte {
		t.Fatalf("writeLength(300): got %v", b)
	}
	if got := int(b[1]) | int(b[2])<<8; got != 300 {
		t.Fatalf("writeLength(300): little-endian payload got %d want 300", got)
	}
}
