package hdb

import (
	"testing"
	"time"
)

// settle gives the metrics actor's collect goroutine a chance to drain
// every message already queued on its channels before a stats() request
// races it through the same select loop.
func settle() { time.Sleep(20 * time.Millisecond) }

// TestMetricsGauges exercises the gaugeConn/gaugeTx/gaugeStmt wiring
// Connect/Close, mergeReplyState and Prepare/Statement.Close feed through
// chGauges: increments and decrements on the same index must net out.
func TestMetricsGauges(t *testing.T) {
	m := newMetrics(nil, defaultTimeBuckets())
	m.chGauges <- gaugeMsg{v: 1, idx: gaugeConn}
	m.chGauges <- gaugeMsg{v: 1, idx: gaugeStmt}
	m.chGauges <- gaugeMsg{v: 1, idx: gaugeStmt}
	m.chGauges <- gaugeMsg{v: -1, idx: gaugeStmt}
	m.chGauges <- gaugeMsg{v: 1, idx: gaugeTx}
	settle()

	s := m.stats()
	if s.OpenConnections != 1 {
		t.Fatalf("OpenConnections: got %d want 1", s.OpenConnections)
	}
	if s.OpenStatements != 1 {
		t.Fatalf("OpenStatements: got %d want 1", s.OpenStatements)
	}
	if s.OpenTransactions != 1 {
		t.Fatalf("OpenTransactions: got %d want 1", s.OpenTransactions)
	}
}

// TestMetricsBufferShrinksCounter exercises the counterBufferShrinks
// counter reportBufferShrinks feeds via chCounters, the same path every
// other counter in metrics.go uses.
func TestMetricsBufferShrinksCounter(t *testing.T) {
	m := newMetrics(nil, defaultTimeBuckets())
	m.chCounters <- counterMsg{v: 1, idx: counterBufferShrinks}
	m.chCounters <- counterMsg{v: 2, idx: counterBufferShrinks}
	settle()

	s := m.stats()
	if s.BufferShrinks != 3 {
		t.Fatalf("BufferShrinks: got %d want 3", s.BufferShrinks)
	}
}

// TestMetricsParentForwarding confirms a child metrics forwards every
// message kind to its parent, the aggregation path a pooled set of
// connections sharing one driver-level metrics instance relies on.
func TestMetricsParentForwarding(t *testing.T) {
	parent := newMetrics(nil, defaultTimeBuckets())
	child := newMetrics(parent, defaultTimeBuckets())

	child.chGauges <- gaugeMsg{v: 1, idx: gaugeConn}
	child.chCounters <- counterMsg{v: 5, idx: counterBufferShrinks}
	child.chHistograms <- gaugeMsg{v: int64(1e6), idx: StatsTimeExec}
	settle()

	cs := child.stats()
	if cs.OpenConnections != 1 {
		t.Fatalf("child OpenConnections: got %d want 1", cs.OpenConnections)
	}

	ps := parent.stats()
	if ps.OpenConnections != 1 {
		t.Fatalf("parent OpenConnections: got %d want 1", ps.OpenConnections)
	}
	if ps.BufferShrinks != 5 {
		t.Fatalf("parent BufferShrinks: got %d want 5", ps.BufferShrinks)
	}
	if ps.Times[StatsTimeExec].Count != 1 {
		t.Fatalf("parent Times[StatsTimeExec].Count: got %d want 1", ps.Times[StatsTimeExec].Count)
	}
}
