// SPDX-FileCopyrightText: 2014-2022 SAP SE
//
// SPDX-License-Identifier: Apache-2.0

package hdb

import (
	"context"
	"time"

	"github.com/hdbgo/hdb/protocol"
)

// Column describes one result-set column's wire metadata: its HANA type
// id, scale/length, and whether NULL is a valid value.
type Column struct {
	Name     string
	TypeCode int8
	Nullable bool
	Length   int16
	Fraction int16
}

// ResultSetMetadata is the immutable, shared column list of a result set.
// Multiple ResultSets spawned from the same Prepared Statement share one
// instance by reference.
type ResultSetMetadata struct {
	Columns []Column
}

func newResultSetMetadata(cols []protocol.ColumnDescriptor) *ResultSetMetadata {
	out := make([]Column, len(cols))
	for i, c := range cols {
		out[i] = Column{Name: c.Name, TypeCode: c.TypeCode, Nullable: c.Nullable, Length: c.Length, Fraction: c.Fraction}
	}
	return &ResultSetMetadata{Columns: out}
}

// Row is one result-set row: values positionally aligned with the owning
// ResultSet's metadata.
type Row []any

// ResultSet is a lazy row sequence bound to a server-side cursor. It is not
// safe for concurrent use, and must not outlive the Connection it was
// created from.
type ResultSet struct {
	conn     *Connection
	meta     *ResultSetMetadata
	stmt     *Statement // nil for a one-shot ExecuteDirect result set; keeps stmt alive otherwise
	rsID     uint64
	fetchSz  int32
	complete bool // server signaled last packet / cursor already closed

	batch []Row
	pos   int

	closed bool
}

func newResultSet(conn *Connection, meta *ResultSetMetadata, stmt *Statement, rsID uint64, fetchSize int32, firstBatch []Row, complete bool) *ResultSet {
	rs := &ResultSet{
		conn: conn, meta: meta, stmt: stmt, rsID: rsID, fetchSz: fetchSize,
		batch: firstBatch, complete: complete,
	}
	if !complete {
		conn.trackResultSet(rs)
	}
	return rs
}

// invalidate marks the cursor as already discarded server-side, without a
// CloseResultSet roundtrip, per cursor_holdability's effect when a
// Commit/Rollback implicitly ends cursors this connection isn't configured
// to hold over that event.
func (rs *ResultSet) invalidate() {
	rs.closed = true
	rs.complete = true
}

// Metadata returns the result set's immutable column list.
func (rs *ResultSet) Metadata() *ResultSetMetadata { return rs.meta }

// NextRow returns the next row, transparently issuing FETCH_NEXT against
// the server when the in-memory batch is exhausted and more rows remain.
// It returns (nil, false, nil) once the result set is exhausted.
func (rs *ResultSet) NextRow(ctx context.Context) (Row, bool, error) {
	if rs.pos >= len(rs.batch) {
		if rs.complete {
			return nil, false, nil
		}
		if err := rs.fetchNext(ctx); err != nil {
			return nil, false, err
		}
		if len(rs.batch) == 0 {
			return nil, false, nil
		}
	}
	row := rs.batch[rs.pos]
	rs.pos++
	return row, true, nil
}

func (rs *ResultSet) fetchNext(ctx context.Context) error {
	start := time.Now()
	req := protocol.NewFetchNextRequest(rs.rsID, rs.fetchSz)
	rep, err := rs.conn.roundtrip(ctx, req)
	rs.conn.recordTime(StatsTimeFetch, time.Since(start))
	if err != nil {
		return err
	}
	cols := make([]protocol.ColumnDescriptor, len(rs.meta.Columns))
	for i, c := range rs.meta.Columns {
		cols[i] = protocol.ColumnDescriptor{TypeCode: c.TypeCode, Nullable: c.Nullable, Length: c.Length, Fraction: c.Fraction, Name: c.Name}
	}
	rawRows, ok, err := rep.ResultSetRows(cols)
	if err != nil {
		return newError(ClassProtocol, err)
	}
	rs.batch = rs.batch[:0]
	rs.pos = 0
	if ok {
		for _, r := range rawRows {
			rs.batch = append(rs.batch, Row(r))
		}
		rs.batch = wrapLobRows(ctx, rs.conn, rs.meta.Columns, rs.batch)
	}
	rs.complete = rep.ResultSetComplete()
	if rs.complete {
		rs.conn.untrackResultSet(rs)
	}
	return nil
}

// FetchAll drains every remaining row into a slice.
func (rs *ResultSet) FetchAll(ctx context.Context) ([]Row, error) {
	var rows []Row
	for {
		row, ok, err := rs.NextRow(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return rows, nil
		}
		rows = append(rows, row)
	}
}

// TotalRows fetches every remaining row and returns the count.
func (rs *ResultSet) TotalRows(ctx context.Context) (int, error) {
	rows, err := rs.FetchAll(ctx)
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// SingleRow succeeds only if exactly one row remains in the result set.
func (rs *ResultSet) SingleRow(ctx context.Context) (Row, error) {
	row, ok, err := rs.NextRow(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, newError(ClassUsage, errNoRows)
	}
	if _, more, err := rs.NextRow(ctx); err != nil {
		return nil, err
	} else if more {
		return nil, newError(ClassUsage, errMoreThanOneRow)
	}
	return row, nil
}

// SingleValue succeeds only if the result set has exactly one row with
// exactly one column.
func (rs *ResultSet) SingleValue(ctx context.Context) (any, error) {
	if len(rs.meta.Columns) != 1 {
		return nil, newError(ClassUsage, errNotSingleColumn)
	}
	row, err := rs.SingleRow(ctx)
	if err != nil {
		return nil, err
	}
	return row[0], nil
}

// Close releases the server-side cursor if it is still open. Safe to call
// more than once and on a fully-drained (already-complete) result set.
func (rs *ResultSet) Close(ctx context.Context) error {
	if rs.closed {
		return nil
	}
	rs.closed = true
	rs.conn.untrackResultSet(rs)
	if rs.complete {
		return nil
	}
	req := protocol.NewCloseResultSetRequest(rs.rsID)
	_, err := rs.conn.roundtrip(ctx, req)
	return err
}
