package hdb

import (
	"testing"

	"github.com/hdbgo/hdb/protocol"
)

func newTestStatement(params []Parameter) *Statement {
	return &Statement{conn: &Connection{cfg: &Config{}}, params: params}
}

func TestAddBatchAccumulates(t *testing.T) {
	s := newTestStatement([]Parameter{{Name: "P1", TypeCode: protocol.TypeInteger, Nullable: true}})
	if err := s.AddBatch(int32(1)); err != nil {
		t.Fatalf("AddBatch: %v", err)
	}
	if err := s.AddBatch(int32(2)); err != nil {
		t.Fatalf("AddBatch: %v", err)
	}
	if len(s.batch) != 2 {
		t.Fatalf("batch length: got %d want 2", len(s.batch))
	}
	if s.batch[0][0] != int64(1) || s.batch[1][0] != int64(2) {
		t.Fatalf("batch contents: got %v", s.batch)
	}
}

func TestAddBatchWrongArity(t *testing.T) {
	s := newTestStatement([]Parameter{{Name: "P1", TypeCode: protocol.TypeInteger}})
	if err := s.AddBatch(int32(1), int32(2)); err == nil {
		t.Fatalf("AddBatch with too many args: expected error, got nil")
	}
}

func TestAddBatchNullRejectedWhenNotNullable(t *testing.T) {
	s := newTestStatement([]Parameter{{Name: "P1", TypeCode: protocol.TypeInteger, Nullable: false}})
	if err := s.AddBatch(nil); err == nil {
		t.Fatalf("AddBatch(nil) on non-nullable parameter: expected error, got nil")
	}
}

func TestAddBatchNullAcceptedWhenNullable(t *testing.T) {
	s := newTestStatement([]Parameter{{Name: "P1", TypeCode: protocol.TypeInteger, Nullable: true}})
	if err := s.AddBatch(nil); err != nil {
		t.Fatalf("AddBatch(nil): %v", err)
	}
	if s.batch[0][0] != nil {
		t.Fatalf("batch contents: got %v, want nil", s.batch[0][0])
	}
}

// TestAddBatchNumericRangeRejection exercises the out-of-range parameter
// rejection spec.md calls out: a batch row whose value falls outside its
// declared column's wire range must fail locally, before any server
// roundtrip, rather than produce a batch the server would reject mid-flight.
func TestAddBatchNumericRangeRejection(t *testing.T) {
	tests := []struct {
		name string
		p    Parameter
		v    any
	}{
		{"tinyint overflow", Parameter{TypeCode: protocol.TypeTinyint}, 300},
		{"smallint overflow", Parameter{TypeCode: protocol.TypeSmallint}, 40000},
		{"integer overflow", Parameter{TypeCode: protocol.TypeInteger}, int64(1) << 40},
	}
	for _, test := range tests {
		s := newTestStatement([]Parameter{test.p})
		if err := s.AddBatch(test.v); err == nil {
			t.Fatalf("%s: AddBatch(%v) expected range error, got nil", test.name, test.v)
		}
	}
}

// TestAddBatchClearedByExecuteBatchBookkeeping does not call ExecuteBatch
// (it needs a server); it repeats by hand the hand-off of s.batch to a
// local slice and the reset of s.batch to nil.
func TestAddBatchClearedByExecuteBatchBookkeeping(t *testing.T) {
	s := newTestStatement([]Parameter{{Name: "P1", TypeCode: protocol.TypeInteger, Nullable: true}})
	if err := s.AddBatch(int32(1)); err != nil {
		t.Fatalf("AddBatch: %v", err)
	}
	rows := s.batch
	s.batch = nil
	if len(rows) != 1 || s.batch != nil {
		t.Fatalf("batch swap: got rows=%v batch=%v", rows, s.batch)
	}
}
