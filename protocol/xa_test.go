package protocol

import (
	"bytes"
	"testing"
)

func TestXidRoundtrip(t *testing.T) {
	want := Xid{FormatID: 1, Gtrid: []byte("global-tx-id"), Bqual: []byte("branch-qual")}
	var buf bytes.Buffer
	e := newEncoder(&buf)
	want.encode(e)
	if buf.Len() != want.size() {
		t.Fatalf("Xid.size(): got %d, encode wrote %d", want.size(), buf.Len())
	}
	d := newDecoder(&buf)
	got := decodeXid(d)
	if got.FormatID != want.FormatID || !bytes.Equal(got.Gtrid, want.Gtrid) || !bytes.Equal(got.Bqual, want.Bqual) {
		t.Fatalf("Xid round trip: got %+v want %+v", got, want)
	}
}

func TestXidRoundtripEmptyQualifiers(t *testing.T) {
	want := Xid{FormatID: 0, Gtrid: nil, Bqual: nil}
	var buf bytes.Buffer
	e := newEncoder(&buf)
	want.encode(e)
	d := newDecoder(&buf)
	got := decodeXid(d)
	if got.FormatID != 0 || len(got.Gtrid) != 0 || len(got.Bqual) != 0 {
		t.Fatalf("Xid round trip with empty qualifiers: got %+v", got)
	}
}

// TestNewXAJoinRequestUsesJoinFlag confirms Join rides the dedicated XAJoin
// wire command with the XATMJoin flag set, distinct from Start.
func TestNewXAJoinRequestUsesJoinFlag(t *testing.T) {
	req := NewXAJoinRequest(Xid{FormatID: 1})
	if req.messageType != mtXAJoin {
		t.Fatalf("messageType: got %v want %v", req.messageType, mtXAJoin)
	}
	if len(req.parts) != 1 {
		t.Fatalf("parts: got %d want 1", len(req.parts))
	}
	xo, ok := req.parts[0].(*partXatOptions)
	if !ok {
		t.Fatalf("part type: got %T want *partXatOptions", req.parts[0])
	}
	if xo.flags != XATMJoin {
		t.Fatalf("flags: got %#x want %#x", xo.flags, XATMJoin)
	}
}

func TestNewXACommitRequestOnePhaseFlag(t *testing.T) {
	req := NewXACommitRequest(Xid{FormatID: 1}, true)
	xo := req.parts[0].(*partXatOptions)
	if xo.flags != XATMOnePhase {
		t.Fatalf("flags: got %#x want %#x", xo.flags, XATMOnePhase)
	}

	req2 := NewXACommitRequest(Xid{FormatID: 1}, false)
	xo2 := req2.parts[0].(*partXatOptions)
	if xo2.flags != XATMNoFlags {
		t.Fatalf("flags: got %#x want %#x", xo2.flags, XATMNoFlags)
	}
}
