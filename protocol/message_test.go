package protocol

import (
	"bytes"
	"testing"
)

func TestMessageHeaderRoundtrip(t *testing.T) {
	want := messageHeader{sessionID: 123456789, packetSeq: 7, varPartLength: 512, varPartSize: 1024, noOfSegm: 1, packetOptions: packetOptionsCompressed}
	var buf bytes.Buffer
	e := newEncoder(&buf)
	want.encode(e)
	if buf.Len() != messageHeaderSize {
		t.Fatalf("messageHeader.encode: wrote %d bytes, want %d", buf.Len(), messageHeaderSize)
	}
	var got messageHeader
	d := newDecoder(&buf)
	got.decode(d)
	if got != want {
		t.Fatalf("messageHeader round trip: got %+v want %+v", got, want)
	}
}

func TestPartHeaderRoundtripSmallArgCount(t *testing.T) {
	want := partHeader{kind: pkResultSet, attributes: paLastPacket, argCount: 3, length: 128, remainingBufferSize: 0}
	var buf bytes.Buffer
	e := newEncoder(&buf)
	want.encode(e)
	if buf.Len() != partHeaderSize {
		t.Fatalf("partHeader.encode: wrote %d bytes, want %d", buf.Len(), partHeaderSize)
	}
	var got partHeader
	d := newDecoder(&buf)
	got.decode(d)
	if got != want {
		t.Fatalf("partHeader round trip: got %+v want %+v", got, want)
	}
}

// TestPartHeaderRoundtripLargeArgCount exercises the int16 overflow escape:
// argCount beyond maxPartArgsInt16 is carried in the following int32 field
// instead, signaled by -1 in the int16 slot.
func TestPartHeaderRoundtripLargeArgCount(t *testing.T) {
	want := partHeader{kind: pkResultSet, argCount: maxPartArgsInt16 + 500, length: 4096}
	var buf bytes.Buffer
	e := newEncoder(&buf)
	want.encode(e)
	var got partHeader
	d := newDecoder(&buf)
	got.decode(d)
	if got != want {
		t.Fatalf("partHeader large argCount round trip: got %+v want %+v", got, want)
	}
}

func TestPadBytesBoundaries(t *testing.T) {
	tests := []struct {
		size int
		pad  int
	}{
		{0, 0},
		{1, 7},
		{7, 1},
		{8, 0},
		{9, 7},
		{16, 0},
	}
	for _, test := range tests {
		if got := padBytes(test.size); got != test.pad {
			t.Fatalf("padBytes(%d): got %d want %d", test.size, got, test.pad)
		}
	}
}

func TestSegmentHeaderRequestReplyFieldsDiverge(t *testing.T) {
	req := segmentHeader{segmentLength: 40, noOfParts: 1, segmentNo: 1, messageType: mtExecute, commit: true}
	var buf bytes.Buffer
	e := newEncoder(&buf)
	req.encodeRequest(e)

	var got segmentHeader
	d := newDecoder(&buf)
	got.decode(d)
	if got.segmentKind != segmentKindRequest {
		t.Fatalf("segmentKind: got %d want %d", got.segmentKind, segmentKindRequest)
	}
	if got.messageType != mtExecute || !got.commit {
		t.Fatalf("request fields: got messageType=%v commit=%v", got.messageType, got.commit)
	}
}
