package hdb

import (
	"context"
	"testing"

	"github.com/hdbgo/hdb/protocol"
)

func newTestResultSet(rows []Row, complete bool) *ResultSet {
	conn := &Connection{cfg: &Config{}}
	meta := &ResultSetMetadata{Columns: []Column{{Name: "C1", TypeCode: protocol.TypeInteger, Nullable: true}}}
	return newResultSet(conn, meta, nil, 1, 1, rows, complete)
}

// TestResultSetPagingFetchSizeOne exercises NextRow draining a single
// already-complete batch one row at a time, the shape a fetch_size=1
// result set takes once its last FETCH_NEXT has arrived.
func TestResultSetPagingFetchSizeOne(t *testing.T) {
	rows := []Row{{int32(1)}, {int32(2)}, {int32(3)}}
	rs := newTestResultSet(rows, true)
	ctx := context.Background()

	for i, want := range rows {
		row, ok, err := rs.NextRow(ctx)
		if err != nil {
			t.Fatalf("NextRow(%d): %v", i, err)
		}
		if !ok {
			t.Fatalf("NextRow(%d): got ok=false, want true", i)
		}
		if row[0] != want[0] {
			t.Fatalf("NextRow(%d): got %v want %v", i, row[0], want[0])
		}
	}
	if _, ok, err := rs.NextRow(ctx); err != nil || ok {
		t.Fatalf("NextRow after drain: got (ok=%v,err=%v), want (false,nil)", ok, err)
	}
}

func TestResultSetFetchAll(t *testing.T) {
	rows := []Row{{int32(10)}, {int32(20)}}
	rs := newTestResultSet(rows, true)
	got, err := rs.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(got) != 2 || got[0][0] != int32(10) || got[1][0] != int32(20) {
		t.Fatalf("FetchAll: got %v", got)
	}
}

func TestResultSetSingleRow(t *testing.T) {
	rs := newTestResultSet([]Row{{int32(7)}}, true)
	row, err := rs.SingleRow(context.Background())
	if err != nil {
		t.Fatalf("SingleRow: %v", err)
	}
	if row[0] != int32(7) {
		t.Fatalf("SingleRow: got %v want 7", row[0])
	}
}

func TestResultSetSingleRowNoRows(t *testing.T) {
	rs := newTestResultSet(nil, true)
	if _, err := rs.SingleRow(context.Background()); err == nil {
		t.Fatalf("SingleRow on empty result set: expected error, got nil")
	}
}

func TestResultSetSingleRowTooManyRows(t *testing.T) {
	rs := newTestResultSet([]Row{{int32(1)}, {int32(2)}}, true)
	if _, err := rs.SingleRow(context.Background()); err == nil {
		t.Fatalf("SingleRow on multi-row result set: expected error, got nil")
	}
}

func TestResultSetSingleValueWrongColumnCount(t *testing.T) {
	conn := &Connection{cfg: &Config{}}
	meta := &ResultSetMetadata{Columns: []Column{
		{Name: "A", TypeCode: protocol.TypeInteger},
		{Name: "B", TypeCode: protocol.TypeInteger},
	}}
	rs := newResultSet(conn, meta, nil, 1, 1, []Row{{int32(1), int32(2)}}, true)
	if _, err := rs.SingleValue(context.Background()); err == nil {
		t.Fatalf("SingleValue on 2-column result set: expected error, got nil")
	}
}

func TestResultSetInvalidate(t *testing.T) {
	rs := newTestResultSet([]Row{{int32(1)}}, false)
	if _, ok, err := rs.NextRow(context.Background()); err != nil || !ok {
		t.Fatalf("NextRow before invalidate: got (ok=%v,err=%v), want (true,nil)", ok, err)
	}
	rs.invalidate()
	if !rs.closed || !rs.complete {
		t.Fatalf("invalidate: got closed=%v complete=%v, want both true", rs.closed, rs.complete)
	}
	// With the cursor invalidated and the in-memory batch already drained,
	// NextRow must report exhaustion rather than attempt a FETCH_NEXT
	// roundtrip against a cursor the server has already discarded.
	if _, ok, err := rs.NextRow(context.Background()); err != nil || ok {
		t.Fatalf("NextRow after invalidate: got (ok=%v,err=%v), want (false,nil)", ok, err)
	}
}

func TestResultSetCloseIdempotent(t *testing.T) {
	rs := newTestResultSet([]Row{{int32(1)}}, true)
	if err := rs.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := rs.Close(context.Background()); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
