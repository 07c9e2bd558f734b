package hdb

import (
	"bytes"
	"context"
	"crypto/sha256"
	"io"
	"testing"

	"github.com/hdbgo/hdb/protocol"
)

func TestSplitCESU8BoundaryASCII(t *testing.T) {
	chunk := []byte("hello world")
	safe, tail := splitCESU8Boundary(chunk)
	if !bytes.Equal(safe, chunk) || len(tail) != 0 {
		t.Fatalf("ASCII chunk: got safe=%q tail=%q, want whole chunk held back none", safe, tail)
	}
}

func TestSplitCESU8BoundaryHoldsBackIncompleteSequence(t *testing.T) {
	full := []byte("ab\xe4\xb8\xad") // "ab" + U+4E2D encoded as 3 bytes
	chunk := full[:len(full)-1]      // truncate mid code point
	safe, tail := splitCESU8Boundary(chunk)
	if !bytes.Equal(safe, []byte("ab")) {
		t.Fatalf("safe prefix: got %q want %q", safe, "ab")
	}
	if !bytes.Equal(tail, full[2:len(full)-1]) {
		t.Fatalf("held-back tail: got %x want %x", tail, full[2:len(full)-1])
	}
	// Re-assembling the safe prefix, the held-back tail, and the byte that
	// was truncated off must reproduce the original code point intact.
	reassembled := append(append([]byte{}, safe...), append(tail, full[len(full)-1])...)
	if !bytes.Equal(reassembled, full) {
		t.Fatalf("reassembled: got %x want %x", reassembled, full)
	}
}

func TestSplitCESU8BoundaryEmpty(t *testing.T) {
	safe, tail := splitCESU8Boundary(nil)
	if len(safe) != 0 || tail != nil {
		t.Fatalf("empty chunk: got safe=%v tail=%v", safe, tail)
	}
}

// TestLobReadAllChecksum drains a Lob whose entire content arrived inline
// with the row (IsLast already true, as a short LOB's locator carries it),
// reading it back in small, non-aligned chunks the way a caller streaming
// through io.Copy would, and checks the reassembled content's SHA-256
// against the original. No READ_LOB roundtrip and no CESU-8 boundary
// splitting is involved.
func TestLobReadAllChecksum(t *testing.T) {
	want := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog; "), 500)
	wantSum := sha256.Sum256(want)

	loc := &protocol.LobLocator{ID: 1, IsLast: true, ByteLength: int64(len(want)), Prefix: want}
	l := newLob(context.Background(), nil, LobBinary, loc)

	var out bytes.Buffer
	buf := make([]byte, 17) // deliberately not aligned to any natural boundary
	for {
		n, err := l.Read(buf)
		out.Write(buf[:n])
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
	}
	got := out.Bytes()
	gotSum := sha256.Sum256(got)
	if gotSum != wantSum {
		t.Fatalf("checksum mismatch: got %x want %x", gotSum, wantSum)
	}
	if l.Len() != int64(len(want)) {
		t.Fatalf("Len(): got %d want %d", l.Len(), len(want))
	}
}

func TestLobKindForColumn(t *testing.T) {
	tests := []struct {
		tc   int8
		kind LobKind
		ok   bool
	}{
		{protocol.TypeBLob, LobBinary, true},
		{protocol.TypeCLob, LobASCII, true},
		{protocol.TypeNCLob, LobUnicode, true},
		{protocol.TypeInteger, 0, false},
	}
	for _, test := range tests {
		kind, ok := lobKindForColumn(test.tc)
		if ok != test.ok {
			t.Fatalf("lobKindForColumn(%d): got ok=%v want %v", test.tc, ok, test.ok)
		}
		if ok && kind != test.kind {
			t.Fatalf("lobKindForColumn(%d): got kind=%v want %v", test.tc, kind, test.kind)
		}
	}
}

func TestWrapLobRowsReplacesLocators(t *testing.T) {
	cols := []Column{
		{Name: "ID", TypeCode: protocol.TypeInteger},
		{Name: "DOC", TypeCode: protocol.TypeBLob},
	}
	loc := &protocol.LobLocator{ID: 42, IsLast: true, Prefix: []byte("payload")}
	rows := []Row{{int32(1), loc}}

	out := wrapLobRows(context.Background(), nil, cols, rows)
	lob, ok := out[0][1].(*Lob)
	if !ok {
		t.Fatalf("wrapLobRows: column 1 got %T, want *Lob", out[0][1])
	}
	content, err := lob.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if !bytes.Equal(content, []byte("payload")) {
		t.Fatalf("ReadAll: got %q want %q", content, "payload")
	}
}
