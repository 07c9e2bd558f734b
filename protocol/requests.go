package protocol

// partCommand carries a SQL command's CESU-8 text, used by both
// ExecuteDirect and Prepare requests.
type partCommand struct{ text string }

func (*partCommand) kind() partKind        { return pkCommand }
func (p *partCommand) encode(e *encoder)   { e.cesu8String(p.text) }
func (p *partCommand) size() int           { return cesu8Size(p.text) }

// NewDisconnectRequest builds the Disconnect message: no parts, just the
// message type, telling the server this session is going away.
func NewDisconnectRequest() *Request { return newRequest(mtDisconnect) }

// CommandInfo is the optional debugger-facing source location a caller can
// attach to an Execute/ExecuteDirect request.
type CommandInfo struct {
	Line   int32
	Module string
}

// NewExecuteDirectRequest builds an ExecuteDirect message for a SQL
// statement that takes no parameters and returns at most one result set.
// info, if non-nil, is sent as a CommandInfo part.
func NewExecuteDirectRequest(sql string, info *CommandInfo) *Request {
	req := newRequest(mtExecuteDirect)
	req.addPart(&partCommand{text: sql})
	if info != nil {
		req.addPart(newPartCommandInfo(info.Line, info.Module))
	}
	return req
}

// NewPrepareRequest builds a Prepare message for sql, which the server
// parses and returns ParameterMetadata/ResultSetMetadata for without
// executing.
func NewPrepareRequest(sql string) *Request {
	req := newRequest(mtPrepare)
	req.addPart(&partCommand{text: sql})
	return req
}

// NewExecuteRequest builds an Execute message against a previously
// Prepare'd statement, binding one or more rows of parameters described by
// paramMeta (nil/empty rows for a no-parameter statement). info, if
// non-nil, is sent as a CommandInfo part.
func NewExecuteRequest(statementID uint64, paramMeta []ParameterDescriptor, rows [][]any, info *CommandInfo) (*Request, error) {
	req := newRequest(mtExecute)
	req.addPart(&partStatementID{id: statementID})
	if info != nil {
		req.addPart(newPartCommandInfo(info.Line, info.Module))
	}
	if len(rows) > 0 {
		descs := toParameterDescriptors(paramMeta)
		body := &encodedPart{k: pkParameters}
		e := newEncoder(&body.buf)
		if err := encodePartParameters(e, descs, rows); err != nil {
			return nil, err
		}
		if err := e.error(); err != nil {
			return nil, err
		}
		req.addPart(body)
	}
	return req, nil
}

// NewFetchNextRequest builds a FetchNext message asking the server for the
// next chunk of rows (up to fetchSize) from an open result set.
func NewFetchNextRequest(resultSetID uint64, fetchSize int32) *Request {
	req := newRequest(mtFetchNext)
	req.addPart(&partResultSetID{id: resultSetID})
	req.addPart(&partFetchSize{size: fetchSize})
	return req
}

// NewCloseResultSetRequest builds a CloseResultSet message releasing the
// server-side cursor behind resultSetID.
func NewCloseResultSetRequest(resultSetID uint64) *Request {
	req := newRequest(mtCloseResultSet)
	req.addPart(&partResultSetID{id: resultSetID})
	return req
}

// NewDropStatementIDRequest builds a DropStatementId message releasing a
// Prepare'd statement's server-side resources.
func NewDropStatementIDRequest(statementID uint64) *Request {
	req := newRequest(mtDropStatementID)
	req.addPart(&partStatementID{id: statementID})
	return req
}

// NewCommitRequest builds a Commit message for the session's current
// transaction.
func NewCommitRequest() *Request { return newRequest(mtCommit) }

// NewRollbackRequest builds a Rollback message for the session's current
// transaction.
func NewRollbackRequest() *Request { return newRequest(mtRollback) }

// NewReadLobRequest builds a ReadLob message asking for up to length more
// bytes (or, for NCLOB, code units) of locatorID's content starting at
// offset (1-based).
func NewReadLobRequest(locatorID uint64, offset int64, length int32) *Request {
	req := newRequest(mtReadLob)
	req.addPart(&partReadLobRequest{locatorID: locatorID, offset: offset, length: length})
	return req
}

// ReadLobReply extracts a reply's ReadLobReply part, if present.
func (r *Reply) ReadLobReply() (data []byte, isLast bool, ok bool) {
	p, found := r.findPart(pkReadLobReply)
	if !found {
		return nil, false, false
	}
	rl := decodePartReadLobReply(p.decoder())
	return rl.data, rl.isLast, true
}

// NewWriteLobRequest builds a WriteLob message appending data to
// locatorID's content (offset is always -1/append, per the wire's
// append-only write contract). isLast marks the final chunk.
func NewWriteLobRequest(locatorID uint64, data []byte, isLast bool) *Request {
	opts := uint8(loDataIncluded)
	if isLast {
		opts |= loLastData
	}
	req := newRequest(mtWriteLob)
	req.addPart(&partWriteLobRequest{descs: []writeLobDescriptor{{locatorID: locatorID, options: opts, data: data}}})
	return req
}

// WriteLobReply extracts a reply's WriteLobReply part, if present.
func (r *Reply) WriteLobReply() ([]uint64, bool) {
	p, ok := r.findPart(pkWriteLobReply)
	if !ok {
		return nil, false
	}
	return decodePartWriteLobReply(p.decoder(), p.header.argCount).locatorIDs, true
}

// encodedPart wraps an already-assembled body buffer so it can be queued
// as a requestPart without exposing partParameters' internal row slice
// shape to message.go.
type encodedPart struct {
	k   partKind
	buf growBuffer
}

func (p *encodedPart) kind() partKind      { return p.k }
func (p *encodedPart) encode(e *encoder)   { e.bytes(p.buf.Bytes()) }
func (p *encodedPart) size() int           { return len(p.buf.Bytes()) }

// growBuffer is a minimal io.Writer-backed byte accumulator, used where a
// part's body must be assembled before its final size is known.
type growBuffer struct{ b []byte }

func (g *growBuffer) Write(p []byte) (int, error) {
	g.b = append(g.b, p...)
	return len(p), nil
}

func (g *growBuffer) Bytes() []byte { return g.b }

// ParameterDescriptor is the exported view of a Prepare reply's per-
// parameter metadata, used by callers outside this package to validate and
// encode bound arguments.
type ParameterDescriptor struct {
	TypeCode int8
	Mode     int8
	Nullable bool
	Length   int16
	Fraction int16
	Name     string
}

func toParameterDescriptors(pds []ParameterDescriptor) []parameterDescriptor {
	out := make([]parameterDescriptor, len(pds))
	for i, pd := range pds {
		out[i] = parameterDescriptor{
			TypeCode: typeCode(pd.TypeCode),
			Mode:     pd.Mode,
			Nullable: pd.Nullable,
			Length:   pd.Length,
			Fraction: pd.Fraction,
			Name:     pd.Name,
		}
	}
	return out
}

// ColumnDescriptor is the exported view of a result set's per-column
// metadata.
type ColumnDescriptor struct {
	TypeCode int8
	Nullable bool
	Length   int16
	Fraction int16
	Name     string
}

// ParameterMetadata extracts and decodes a reply's ParameterMetadata part,
// if present.
func (r *Reply) ParameterMetadata() ([]ParameterDescriptor, bool, error) {
	p, ok := r.findPart(pkParameterMetadata)
	if !ok {
		return nil, false, nil
	}
	d := p.decoder()
	pm := decodePartParameterMetadata(d, p.header.argCount)
	if err := d.error(); err != nil {
		return nil, true, err
	}
	out := make([]ParameterDescriptor, len(pm.descs))
	for i, d := range pm.descs {
		out[i] = ParameterDescriptor{
			TypeCode: int8(d.TypeCode), Mode: d.Mode, Nullable: d.Nullable,
			Length: d.Length, Fraction: d.Fraction, Name: d.Name,
		}
	}
	return out, true, nil
}

// ResultSetMetadata extracts and decodes a reply's ResultSetMetadata part,
// if present.
func (r *Reply) ResultSetMetadata() ([]ColumnDescriptor, bool, error) {
	p, ok := r.findPart(pkResultSetMetadata)
	if !ok {
		return nil, false, nil
	}
	d := p.decoder()
	rm := decodePartResultSetMetadata(d, p.header.argCount)
	if err := d.error(); err != nil {
		return nil, true, err
	}
	out := make([]ColumnDescriptor, len(rm.cols))
	for i, c := range rm.cols {
		out[i] = ColumnDescriptor{
			TypeCode: int8(c.TypeCode), Nullable: c.Nullable,
			Length: c.Length, Fraction: c.Fraction, Name: c.Name,
		}
	}
	return out, true, nil
}

// ResultSetRows decodes a reply's ResultSet part against cols, returning
// the rows and whether a ResultSet part was present (ResultSetComplete
// reports whether this was the final chunk).
func (r *Reply) ResultSetRows(cols []ColumnDescriptor) ([][]any, bool, error) {
	p, ok := r.findPart(pkResultSet)
	if !ok {
		return nil, false, nil
	}
	descs := make([]columnDescriptor, len(cols))
	for i, c := range cols {
		descs[i] = columnDescriptor{TypeCode: typeCode(c.TypeCode), Nullable: c.Nullable, Length: c.Length, Fraction: c.Fraction, Name: c.Name}
	}
	rs, err := decodePartResultSet(p.decoder(), descs, p.header.argCount)
	if err != nil {
		return nil, true, err
	}
	return rs.rows, true, nil
}

// StatementID extracts a reply's StatementId part, if present.
func (r *Reply) StatementID() (uint64, bool) {
	p, ok := r.findPart(pkStatementID)
	if !ok {
		return 0, false
	}
	return decodePartStatementID(p.decoder()).id, true
}

// ResultSetID extracts a reply's ResultSetId part, if present.
func (r *Reply) ResultSetID() (uint64, bool) {
	p, ok := r.findPart(pkResultSetID)
	if !ok {
		return 0, false
	}
	return decodePartResultSetID(p.decoder()).id, true
}

// RowsAffected extracts a reply's RowsAffected part, if present.
func (r *Reply) RowsAffected() ([]int32, bool) {
	p, ok := r.findPart(pkRowsAffected)
	if !ok {
		return nil, false
	}
	return decodePartRowsAffected(p.decoder(), p.header.argCount).counts, true
}

// StatementSequenceInfo extracts the echo token the server sent in a
// reply's StatementContext part, if any. A caller that receives one must
// pass it to AttachStatementSequence on its next request within the same
// logical sequence, per the Connection Core's statement-sequence contract.
func (r *Reply) StatementSequenceInfo() ([]byte, bool) {
	p, ok := r.findPart(pkStatementContext)
	if !ok {
		return nil, false
	}
	opts := decodePartStatementContext(p.decoder(), p.header.argCount).opts
	return opts.getBytes(int8(scStatementSequenceInfo))
}

// TransactionFlags reports whether a reply's TransactionFlags part marks
// the transaction as rolled back or committed, and whether the server
// closed the session outright due to a transaction error. Either of the
// first two may be false without the other being true (an in-progress
// transaction reports neither).
func (r *Reply) TransactionFlags() (rolledBack, committed, sessionClosing, ok bool) {
	p, ok := r.findPart(pkTransactionFlags)
	if !ok {
		return false, false, false, false
	}
	opts := decodePartTransactionFlags(p.decoder(), p.header.argCount).opts
	rolledBack, _ = opts.getBool(int8(tfRolledback))
	committed, _ = opts.getBool(int8(tfCommitted))
	sessionClosing, _ = opts.getBool(int8(tfSessionClosingTransactionError))
	return rolledBack, committed, sessionClosing, true
}

// AttachStatementSequence adds req's StatementContext part carrying the
// echo token the server most recently sent, per the Connection Core's
// "echo the latest statement_sequence_info until a new one arrives" rule.
// A nil/empty info is a no-op: the very first request in a session has
// nothing to echo yet.
func AttachStatementSequence(req *Request, info []byte) {
	if len(info) == 0 {
		return
	}
	req.addPart(&partStatementContext{opts: options{
		int8(scStatementSequenceInfo): optBytes(info),
	}})
}

// ResultSetComplete reports whether the reply's ResultSet part is marked as
// the last packet (paLastPacket) or the cursor has been closed server-side
// (paResultSetClosed), meaning no further FetchNext is needed.
func (r *Reply) ResultSetComplete() bool {
	p, ok := r.findPart(pkResultSet)
	if !ok {
		return true
	}
	return p.header.attributes.lastPacket() || p.header.attributes.resultsetClosed()
}
