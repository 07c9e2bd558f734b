// SPDX-FileCopyrightText: 2014-2022 SAP SE
//
// SPDX-License-Identifier: Apache-2.0

package hdb

import (
	"context"
	"fmt"
	"time"

	"github.com/hdbgo/hdb/protocol"
	"github.com/hdbgo/hdb/sqltrace"
)

// CommandInfo is optional debugger-facing source location (source file and
// line) a caller can attach to Execute/ExecuteDirect, surfaced by tools
// stepping through the caller's source.
type CommandInfo struct {
	Module string
	Line   int32
}

func (ci *CommandInfo) toProtocol() *protocol.CommandInfo {
	if ci == nil {
		return nil
	}
	return &protocol.CommandInfo{Line: ci.Line, Module: ci.Module}
}

func firstCommandInfo(info []CommandInfo) *CommandInfo {
	if len(info) == 0 {
		return nil
	}
	return &info[0]
}

// Parameter describes one bindable IN/INOUT/OUT slot of a Prepared
// Statement, as reported by the server's ParameterMetadata part.
type Parameter struct {
	Name     string
	TypeCode int8
	Mode     int8 // 1=IN, 2=INOUT, 4=OUT
	Nullable bool
	Length   int16
	Fraction int16
}

// Statement is a server-side prepared statement: a parsed SQL text bound
// to a statement id, a parameter descriptor list, and (if the statement
// produces rows) result-set metadata. It accumulates a batch of parameter
// rows between Execute/ExecuteBatch calls.
type Statement struct {
	conn        *Connection
	id          uint64
	sql         string
	params      []Parameter
	resultMeta  *ResultSetMetadata
	hasResult   bool
	batch       [][]any
	closed      bool
}

// Prepare parses sql on the server without executing it, returning a
// reusable Statement.
func (c *Connection) Prepare(ctx context.Context, sql string) (*Statement, error) {
	if sqltrace.On() {
		sqltrace.Traceln(sql)
	}
	start := time.Now()
	req := protocol.NewPrepareRequest(sql)
	rep, err := c.roundtrip(ctx, req)
	c.recordTime(StatsTimePrepare, time.Since(start))
	if err != nil {
		return nil, err
	}
	stmtID, ok := rep.StatementID()
	if !ok {
		return nil, newError(ClassProtocol, fmt.Errorf("hdb: prepare reply missing StatementId part"))
	}
	stmt := &Statement{conn: c, id: stmtID, sql: sql}
	if pds, ok, err := rep.ParameterMetadata(); err != nil {
		return nil, newError(ClassProtocol, err)
	} else if ok {
		stmt.params = toParameters(pds)
	}
	if cols, ok, err := rep.ResultSetMetadata(); err != nil {
		return nil, newError(ClassProtocol, err)
	} else if ok {
		stmt.hasResult = true
		stmt.resultMeta = newResultSetMetadata(cols)
	}
	c.metrics.chGauges <- gaugeMsg{v: 1, idx: gaugeStmt}
	return stmt, nil
}

func toParameters(pds []protocol.ParameterDescriptor) []Parameter {
	out := make([]Parameter, len(pds))
	for i, pd := range pds {
		out[i] = Parameter{Name: pd.Name, TypeCode: pd.TypeCode, Mode: pd.Mode, Nullable: pd.Nullable, Length: pd.Length, Fraction: pd.Fraction}
	}
	return out
}

// Parameters returns the statement's cached parameter descriptors.
func (s *Statement) Parameters() []Parameter { return s.params }

// ResultSetMetadata returns the statement's result-set metadata, if the
// statement produces rows.
func (s *Statement) ResultSetMetadata() (*ResultSetMetadata, bool) { return s.resultMeta, s.hasResult }

// AddBatch validates args against the cached parameter descriptors and
// appends a row to the pending batch, without a server roundtrip.
func (s *Statement) AddBatch(args ...any) error {
	if len(args) != len(s.params) {
		return newError(ClassUsage, fmt.Errorf("hdb: statement takes %d parameters, got %d", len(s.params), len(args)))
	}
	row := make([]any, len(args))
	for i, p := range s.params {
		v, err := coerceParameter(p, args[i])
		if err != nil {
			return newError(ClassConversion, fmt.Errorf("hdb: parameter %d (%s): %w", i, p.Name, err))
		}
		row[i] = v
	}
	s.batch = append(s.batch, row)
	return nil
}

// Execute runs the statement once with args, equivalent to AddBatch
// followed by ExecuteBatch for a single row. info optionally attaches a
// debugger-facing source location to the request.
func (s *Statement) Execute(ctx context.Context, args []any, info ...CommandInfo) ([]int32, *ResultSet, error) {
	if err := s.AddBatch(args...); err != nil {
		return nil, nil, err
	}
	return s.ExecuteBatch(ctx, info...)
}

// ExecuteBatch ships the accumulated parameter rows (if any) and clears
// the batch. For statements that return rows, a *ResultSet is returned in
// addition to any affected-row counts. If the connection's AutoCommit is
// set, a successful execute is followed by an implicit Commit. info
// optionally attaches a debugger-facing source location to the request.
func (s *Statement) ExecuteBatch(ctx context.Context, info ...CommandInfo) ([]int32, *ResultSet, error) {
	rows := s.batch
	s.batch = nil

	if sqltrace.On() {
		sqltrace.Tracef("%s %v", s.sql, rows)
	}

	paramDescs := toProtocolParamDescs(s.params)
	req, err := protocol.NewExecuteRequest(s.id, paramDescs, rows, firstCommandInfo(info).toProtocol())
	if err != nil {
		return nil, nil, newError(ClassConversion, err)
	}

	statsCat := StatsTimeExec
	if s.hasResult {
		statsCat = StatsTimeQuery
	}
	start := time.Now()
	rep, err := s.conn.roundtrip(ctx, req)
	s.conn.recordTime(statsCat, time.Since(start))
	if err != nil {
		return nil, nil, err
	}

	var counts []int32
	if c, ok := rep.RowsAffected(); ok {
		counts = c
	}

	if s.conn.cfg.AutoCommit {
		if err := s.conn.Commit(ctx); err != nil {
			return counts, nil, err
		}
	}

	if !s.hasResult {
		return counts, nil, nil
	}
	rsID, ok := rep.ResultSetID()
	if !ok {
		return counts, nil, nil
	}
	cols := make([]protocol.ColumnDescriptor, len(s.resultMeta.Columns))
	for i, c := range s.resultMeta.Columns {
		cols[i] = protocol.ColumnDescriptor{TypeCode: c.TypeCode, Nullable: c.Nullable, Length: c.Length, Fraction: c.Fraction, Name: c.Name}
	}
	rawRows, _, err := rep.ResultSetRows(cols)
	if err != nil {
		return counts, nil, newError(ClassProtocol, err)
	}
	batch := make([]Row, len(rawRows))
	for i, r := range rawRows {
		batch[i] = Row(r)
	}
	batch = wrapLobRows(ctx, s.conn, s.resultMeta.Columns, batch)
	rs := newResultSet(s.conn, s.resultMeta, s, rsID, int32(s.conn.cfg.FetchSize), batch, rep.ResultSetComplete())
	return counts, rs, nil
}

func toProtocolParamDescs(params []Parameter) []protocol.ParameterDescriptor {
	out := make([]protocol.ParameterDescriptor, len(params))
	for i, p := range params {
		out[i] = protocol.ParameterDescriptor{TypeCode: p.TypeCode, Mode: p.Mode, Nullable: p.Nullable, Length: p.Length, Fraction: p.Fraction, Name: p.Name}
	}
	return out
}

// Close releases the statement's server-side resources. Errors are logged
// and swallowed, per the Prepared Statement's best-effort drop contract.
func (s *Statement) Close(ctx context.Context) error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.conn.metrics.chGauges <- gaugeMsg{v: -1, idx: gaugeStmt}
	req := protocol.NewDropStatementIDRequest(s.id)
	_, err := s.conn.roundtrip(ctx, req)
	if err != nil {
		s.conn.logger().Warn("dropping prepared statement", "statementID", s.id, "error", err)
	}
	return nil
}

// ExecuteDirect runs sql immediately without preparing it, for statements
// that take no parameters. info optionally attaches a debugger-facing
// source location to the request.
func (c *Connection) ExecuteDirect(ctx context.Context, sql string, info ...CommandInfo) ([]int32, *ResultSet, error) {
	if sqltrace.On() {
		sqltrace.Traceln(sql)
	}
	start := time.Now()
	req := protocol.NewExecuteDirectRequest(sql, firstCommandInfo(info).toProtocol())
	rep, err := c.roundtrip(ctx, req)
	c.recordTime(StatsTimeExec, time.Since(start))
	if err != nil {
		return nil, nil, err
	}

	var counts []int32
	if cs, ok := rep.RowsAffected(); ok {
		counts = cs
	}

	if c.cfg.AutoCommit {
		if err := c.Commit(ctx); err != nil {
			return counts, nil, err
		}
	}

	cols, hasResult, err := rep.ResultSetMetadata()
	if err != nil {
		return counts, nil, newError(ClassProtocol, err)
	}
	if !hasResult {
		return counts, nil, nil
	}
	meta := newResultSetMetadata(cols)
	rsID, _ := rep.ResultSetID()
	rawRows, _, err := rep.ResultSetRows(cols)
	if err != nil {
		return counts, nil, newError(ClassProtocol, err)
	}
	batch := make([]Row, len(rawRows))
	for i, r := range rawRows {
		batch[i] = Row(r)
	}
	batch = wrapLobRows(ctx, c, meta.Columns, batch)
	rs := newResultSet(c, meta, nil, rsID, int32(c.cfg.FetchSize), batch, rep.ResultSetComplete())
	return counts, rs, nil
}

// Commit commits the session's current transaction.
func (c *Connection) Commit(ctx context.Context) error {
	start := time.Now()
	_, err := c.roundtrip(ctx, protocol.NewCommitRequest())
	c.recordTime(StatsTimeCommit, time.Since(start))
	return err
}

// Rollback rolls back the session's current transaction. Per
// cfg.CursorHoldability, open ResultSet cursors are locally invalidated
// unless the connection is configured to hold them over a rollback.
func (c *Connection) Rollback(ctx context.Context) error {
	start := time.Now()
	_, err := c.roundtrip(ctx, protocol.NewRollbackRequest())
	c.recordTime(StatsTimeRollback, time.Since(start))
	if err == nil && c.cfg.CursorHoldability != CursorHoldOverRollback {
		c.invalidateResultSets()
	}
	return err
}
